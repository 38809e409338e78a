package basesvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type widget struct {
	ID        int64  `bson:"_id"`
	Name      string `bson:"name"`
	Kind      string `bson:"kind"`
	Email     string `bson:"email,omitempty"`
	Qty       int    `bson:"qty"`
	Version   int64  `bson:"version"`
	CreatedAt int64  `bson:"createdAt"`
	UpdatedAt int64  `bson:"updatedAt"`
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newWidgetStore(opts ...StoreOption) *MemoryStore[widget] {
	opts = append([]StoreOption{WithEventBus(nil), WithClock(fixedClock())}, opts...)
	return NewMemoryStore[widget]("widgets", opts...)
}

func TestMemoryStore_InsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore()

	a, err := s.InsertOne(ctx, widget{Name: "a"})
	require.NoError(t, err)
	b, err := s.InsertOne(ctx, widget{ID: 99, Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID, "id do store cấp, bỏ qua id truyền vào")
	assert.Equal(t, int64(1), a.Version)
	assert.Equal(t, fixedClock()().UnixMilli(), a.CreatedAt)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestMemoryStore_FindDefaultOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore()
	for _, w := range []widget{{Name: "a", Kind: "x", Qty: 3}, {Name: "b", Kind: "y", Qty: 1}, {Name: "c", Kind: "x", Qty: 2}} {
		_, err := s.InsertOne(ctx, w)
		require.NoError(t, err)
	}

	all, err := s.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, names(all), "mặc định _id giảm dần")

	xs, err := s.Find(ctx, NewQuery().Where("kind", "x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, names(xs))

	byQty, err := s.Find(ctx, NewQuery().OrderBy("qty", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, names(byQty))

	// So sánh số không phân biệt int/int64
	q2, err := s.Find(ctx, NewQuery().Where("qty", int64(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names(q2))

	limited, err := s.Find(ctx, &Query{SortDesc: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names(limited))
}

func TestMemoryStore_FindOneByIdNotFound(t *testing.T) {
	s := newWidgetStore()
	_, err := s.FindOneById(context.Background(), 42)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMemoryStore_UpdateById(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore()
	w, err := s.InsertOne(ctx, widget{Name: "a", Kind: "x", Email: "a@x.io"})
	require.NoError(t, err)

	updated, err := s.UpdateById(ctx, w.ID, &UpdateData{
		Set:   map[string]interface{}{"name": "a2", "_id": int64(500), "version": int64(77)},
		Unset: []string{"email"},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, w.ID, updated.ID, "không được đổi _id")
	assert.Equal(t, "a2", updated.Name)
	assert.Equal(t, "x", updated.Kind)
	assert.Empty(t, updated.Email)
	assert.Equal(t, int64(2), updated.Version)

	_, err = s.UpdateById(ctx, 404, &UpdateData{Set: map[string]interface{}{"name": "z"}}, 0)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMemoryStore_UpdateByIdVersionConflict(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore()
	w, err := s.InsertOne(ctx, widget{Name: "a"})
	require.NoError(t, err)

	_, err = s.UpdateById(ctx, w.ID, &UpdateData{Set: map[string]interface{}{"name": "b"}}, w.Version)
	require.NoError(t, err)

	// Bản đọc cũ (version 1) ghi đè phải bị từ chối
	_, err = s.UpdateById(ctx, w.ID, &UpdateData{Set: map[string]interface{}{"name": "c"}}, w.Version)
	assert.True(t, errors.Is(err, common.ErrConflict))

	got, err := s.FindOneById(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
}

func TestMemoryStore_DeleteById(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore()
	w, err := s.InsertOne(ctx, widget{Name: "a"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteById(ctx, w.ID))
	assert.Equal(t, 0, s.Len())
	assert.True(t, errors.Is(s.DeleteById(ctx, w.ID), common.ErrNotFound))

	// id không được dùng lại
	w2, err := s.InsertOne(ctx, widget{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), w2.ID)
}

func TestMemoryStore_InsertManyPartialFailure(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore(WithUniqueFields("email"))

	result, err := s.InsertMany(ctx, []widget{
		{Name: "a", Email: "dup@x.io"},
		{Name: "b", Email: "dup@x.io"},
		{Name: "c"},
		{Name: "d"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPartialBatch))
	require.NotNil(t, result)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Message)
	require.Len(t, result.FailureMessages(), 1)
	assert.Contains(t, result.FailureMessages()[0], "#1")
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 3, s.Len())

	var appErr *common.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, result.FailureMessages(), appErr.Details)
}

func TestMemoryStore_InsertManyAllSucceed(t *testing.T) {
	s := newWidgetStore()
	result, err := s.InsertMany(context.Background(), []widget{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, []int64{1, 2}, []int64{result.Results[0].ID, result.Results[1].ID})
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := newWidgetStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Find(ctx, nil)
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))
}

func TestMemoryStore_EmitsEvents(t *testing.T) {
	bus := events.NewBus()
	got := make(chan events.DataChangeEvent, 4)
	bus.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) { got <- e })

	s := NewMemoryStore[widget]("widgets", WithEventBus(bus))
	ctx := context.Background()
	w, err := s.InsertOne(ctx, widget{Name: "a"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteById(ctx, w.ID))

	ops := map[string]int64{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-got:
			assert.Equal(t, "widgets", e.CollectionName)
			ops[e.Operation] = e.DocumentID
		case <-time.After(2 * time.Second):
			t.Fatal("thiếu event")
		}
	}
	assert.Equal(t, map[string]int64{events.OpInsert: w.ID, events.OpDelete: w.ID}, ops)
}

func TestUpdateDoc(t *testing.T) {
	doc := updateDoc(&UpdateData{
		Set:   map[string]interface{}{"name": "x", "createdAt": int64(1)},
		Unset: []string{"email", "_id"},
	}, 1000)

	assert.Equal(t, bson.M{"name": "x", "updatedAt": int64(1000)}, doc["$set"])
	assert.Equal(t, bson.M{"email": ""}, doc["$unset"])
	assert.Equal(t, bson.M{"version": int64(1)}, doc["$inc"])

	empty := updateDoc(nil, 5)
	_, hasUnset := empty["$unset"]
	assert.False(t, hasUnset)
}

func TestFindOptionsAndFilter(t *testing.T) {
	opts := findOptions(nil)
	assert.Equal(t, bson.D{{Key: "_id", Value: -1}}, opts.Sort)
	assert.Nil(t, opts.Limit)

	q := NewQuery().Where("stage", "Lead").OrderBy("activityDate", false)
	q.Limit = 5
	opts = findOptions(q)
	assert.Equal(t, bson.D{{Key: "activityDate", Value: 1}, {Key: "_id", Value: -1}}, opts.Sort)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, bson.M{"stage": "Lead"}, filterDoc(q))
	assert.Equal(t, bson.M{}, filterDoc(nil))
}

func names(ws []widget) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}
	return out
}
