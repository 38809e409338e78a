// Package basesvc cung cấp RecordStore: CRUD generic trên một collection, với 2 cài đặt MongoDB và in-memory.
package basesvc

import (
	"context"
	"time"

	basemodels "crm_pipeline/internal/api/base/models"
	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/utility"
)

// RecordStore định nghĩa các thao tác CRUD trên một collection bản ghi.
//
// Mọi bản ghi có _id kiểu int64 do store cấp (tăng dần), version tăng mỗi lần update,
// createdAt/updatedAt (unix ms) do store ghi.
type RecordStore[T any] interface {
	// Name tên collection
	Name() string

	// Find lấy danh sách theo query, mặc định sắp xếp _id giảm dần
	Find(ctx context.Context, q *Query) ([]T, error)
	// FindOneById lấy theo id, common.ErrNotFound nếu không có
	FindOneById(ctx context.Context, id int64) (T, error)

	// InsertOne tạo mới, trả về bản ghi đã lưu (có id)
	InsertOne(ctx context.Context, data T) (T, error)
	// InsertMany tạo nhiều bản ghi, không dừng ở bản ghi lỗi.
	// Có bản ghi lỗi thì trả về kết quả kèm common.ErrPartialBatch.
	InsertMany(ctx context.Context, data []T) (*basemodels.BatchResult[T], error)

	// UpdateById cập nhật một phần. expectedVersion > 0 bật compare-and-swap, lệch version trả về common.ErrConflict
	UpdateById(ctx context.Context, id int64, update *UpdateData, expectedVersion int64) (T, error)
	// DeleteById xóa vĩnh viễn, common.ErrNotFound nếu không có
	DeleteById(ctx context.Context, id int64) error
}

// Query điều kiện lọc bằng và sắp xếp.
type Query struct {
	Equals    map[string]interface{} // field bson -> giá trị phải bằng
	SortField string                 // rỗng = _id
	SortDesc  bool
	Limit     int64 // 0 = không giới hạn
}

// NewQuery query rỗng với thứ tự mặc định (_id giảm dần).
func NewQuery() *Query {
	return &Query{Equals: map[string]interface{}{}, SortDesc: true}
}

// Where thêm điều kiện field == value.
func (q *Query) Where(field string, value interface{}) *Query {
	if q.Equals == nil {
		q.Equals = map[string]interface{}{}
	}
	q.Equals[field] = value
	return q
}

// OrderBy đặt field sắp xếp.
func (q *Query) OrderBy(field string, desc bool) *Query {
	q.SortField = field
	q.SortDesc = desc
	return q
}

func (q *Query) sortField() string {
	if q == nil || q.SortField == "" {
		return "_id"
	}
	return q.SortField
}

func (q *Query) sortDesc() bool {
	if q == nil {
		return true
	}
	return q.SortDesc
}

// UpdateData định nghĩa kiểu dữ liệu cho partial update
type UpdateData struct {
	Set   map[string]interface{} // Các trường cần update
	Unset []string               // Các trường cần xóa
}

// IsEmpty không có thay đổi nào.
func (u *UpdateData) IsEmpty() bool {
	return u == nil || (len(u.Set) == 0 && len(u.Unset) == 0)
}

// Các field do store quản lý, không cho phép ghi qua UpdateData
var systemFields = map[string]bool{
	"_id":       true,
	"version":   true,
	"createdAt": true,
	"updatedAt": true,
}

// StoreOption tùy chọn khi tạo store
type StoreOption func(*storeOptions)

type storeOptions struct {
	bus          *events.Bus
	now          func() time.Time
	timeout      time.Duration
	uniqueFields []string
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		bus:     events.Default(),
		now:     time.Now,
		timeout: 10 * time.Second,
	}
}

// WithEventBus đặt bus nhận DataChangeEvent (nil = không phát event).
func WithEventBus(bus *events.Bus) StoreOption {
	return func(o *storeOptions) { o.bus = bus }
}

// WithClock đặt hàm lấy thời gian hiện tại.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) { o.now = now }
}

// WithTimeout timeout cho mỗi lời gọi tới MongoDB.
func WithTimeout(d time.Duration) StoreOption {
	return func(o *storeOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithUniqueFields các field unique (sparse) trong MemoryStore, tương ứng index unique trên MongoDB.
func WithUniqueFields(fields ...string) StoreOption {
	return func(o *storeOptions) { o.uniqueFields = append(o.uniqueFields, fields...) }
}

func (o storeOptions) emit(ctx context.Context, collection, op string, id int64, doc interface{}) {
	if o.bus == nil {
		return
	}
	o.bus.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: collection,
		Operation:      op,
		DocumentID:     id,
		Document:       doc,
	})
}

// prepareInsertDoc chuyển bản ghi thành document để lưu: gán id, version=1 và timestamps.
// Field chuỗi rỗng bị loại để index unique sparse bỏ qua.
func prepareInsertDoc(data interface{}, id int64, nowMs int64) (map[string]interface{}, error) {
	doc, err := utility.ToMap(data)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	for key, value := range doc {
		if s, ok := value.(string); ok && s == "" {
			delete(doc, key)
		}
	}
	doc["_id"] = id
	doc["version"] = int64(1)
	doc["createdAt"] = nowMs
	doc["updatedAt"] = nowMs
	return doc, nil
}

// setFields lọc bỏ field hệ thống khỏi $set.
func setFields(update *UpdateData) map[string]interface{} {
	out := make(map[string]interface{}, len(update.Set))
	for k, v := range update.Set {
		if systemFields[k] {
			continue
		}
		out[k] = v
	}
	return out
}
