package crmvc

import (
	"context"
	"sync"
	"testing"
	"time"

	basemodels "crm_pipeline/internal/api/base/models"
	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// spyStore bọc RecordStore để đếm lời gọi và giả lập lỗi
type spyStore[T any] struct {
	basesvc.RecordStore[T]

	mu         sync.Mutex
	calls      map[string]int
	failFind   error
	failUpdate error
}

func newSpy[T any](inner basesvc.RecordStore[T]) *spyStore[T] {
	return &spyStore[T]{RecordStore: inner, calls: map[string]int{}}
}

func (s *spyStore[T]) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *spyStore[T]) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyStore[T]) Find(ctx context.Context, q *basesvc.Query) ([]T, error) {
	s.count("find")
	if s.failFind != nil {
		return nil, s.failFind
	}
	return s.RecordStore.Find(ctx, q)
}

func (s *spyStore[T]) InsertOne(ctx context.Context, data T) (T, error) {
	s.count("insert")
	return s.RecordStore.InsertOne(ctx, data)
}

func (s *spyStore[T]) InsertMany(ctx context.Context, data []T) (*basemodels.BatchResult[T], error) {
	s.count("insertMany")
	return s.RecordStore.InsertMany(ctx, data)
}

func (s *spyStore[T]) UpdateById(ctx context.Context, id int64, update *basesvc.UpdateData, expectedVersion int64) (T, error) {
	s.count("update")
	if s.failUpdate != nil {
		var zero T
		return zero, s.failUpdate
	}
	return s.RecordStore.UpdateById(ctx, id, update, expectedVersion)
}

type fixture struct {
	deals    *spyStore[crmmodels.CrmDeal]
	contacts *spyStore[crmmodels.CrmContact]
	service  *DealService
}

func newFixture(t *testing.T, opts ...DealServiceOption) *fixture {
	t.Helper()
	deals := newSpy[crmmodels.CrmDeal](basesvc.NewMemoryStore[crmmodels.CrmDeal]("crm_deals",
		basesvc.WithEventBus(nil), basesvc.WithClock(testClock)))
	contacts := newSpy[crmmodels.CrmContact](basesvc.NewMemoryStore[crmmodels.CrmContact]("crm_contacts",
		basesvc.WithEventBus(nil), basesvc.WithClock(testClock), basesvc.WithUniqueFields("email")))

	opts = append([]DealServiceOption{WithContactStore(contacts), WithDealClock(testClock)}, opts...)
	return &fixture{
		deals:    deals,
		contacts: contacts,
		service:  NewDealService(deals, opts...),
	}
}

func (f *fixture) addContact(t *testing.T, first, last string) crmmodels.CrmContact {
	t.Helper()
	c, err := f.contacts.RecordStore.InsertOne(context.Background(), crmmodels.CrmContact{FirstName: first, LastName: last})
	require.NoError(t, err)
	return c
}

func (f *fixture) createDeal(t *testing.T, name string, contactId int64, value int64, stage crmmodels.Stage) crmmodels.CrmDeal {
	t.Helper()
	d, err := f.service.CreateDeal(context.Background(), &crmdto.DealCreateInput{
		Name:              name,
		ContactId:         contactId,
		Value:             crmmodels.MoneyFromInt(value),
		ExpectedCloseDate: testNow.AddDate(0, 1, 0).UnixMilli(),
		Stage:             stage,
	})
	require.NoError(t, err)
	return d
}

// insertRaw ghi deal thẳng vào store, bỏ qua kiểm tra của service (vd: giai đoạn lạ từ dữ liệu cũ)
func (f *fixture) insertRaw(t *testing.T, deal crmmodels.CrmDeal) crmmodels.CrmDeal {
	t.Helper()
	d, err := f.deals.RecordStore.InsertOne(context.Background(), deal)
	require.NoError(t, err)
	return d
}

func stagePtr(s crmmodels.Stage) *crmmodels.Stage { return &s }
func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func int64Ptr(v int64) *int64 { return &v }
