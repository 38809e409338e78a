package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDoc struct {
	ID   int64
	Name string
}

func TestBus_EmitDataChanged(t *testing.T) {
	bus := NewBus()
	got := make(chan DataChangeEvent, 1)
	bus.OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		got <- e
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.EmitDataChanged(ctx, DataChangeEvent{CollectionName: "crm_deals", Operation: OpInsert, Document: &sampleDoc{ID: 9}})

	select {
	case e := <-got:
		assert.Equal(t, int64(9), e.DocumentID)
		assert.Equal(t, OpInsert, e.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("handler không được gọi")
	}
}

func TestBus_PanicIsRecovered(t *testing.T) {
	bus := NewBus()
	panics := make(chan interface{}, 1)
	done := make(chan struct{}, 1)
	bus.OnPanic(func(e DataChangeEvent, r interface{}) { panics <- r })
	bus.OnDataChanged(func(ctx context.Context, e DataChangeEvent) { panic("boom") })
	bus.OnDataChanged(func(ctx context.Context, e DataChangeEvent) { done <- struct{}{} })

	bus.EmitDataChanged(context.Background(), DataChangeEvent{Operation: OpDelete, DocumentID: 1})

	select {
	case r := <-panics:
		assert.Equal(t, "boom", r)
	case <-time.After(2 * time.Second):
		t.Fatal("panic không được chuyển cho OnPanic")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler thứ hai không chạy")
	}
}

func TestGetInt64Field(t *testing.T) {
	require.Equal(t, int64(5), GetInt64Field(sampleDoc{ID: 5}, "ID"))
	assert.Equal(t, int64(0), GetInt64Field(sampleDoc{}, "Missing"))
	assert.Equal(t, int64(0), GetInt64Field(sampleDoc{Name: "x"}, "Name"))
	assert.Equal(t, int64(0), GetInt64Field((*sampleDoc)(nil), "ID"))
	assert.Equal(t, int64(0), GetInt64Field(nil, "ID"))
}
