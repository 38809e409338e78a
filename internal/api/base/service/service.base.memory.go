package basesvc

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"

	basemodels "crm_pipeline/internal/api/base/models"
	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/utility"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore cài đặt RecordStore trong bộ nhớ.
// Document được lưu ở dạng BSON map giống MongoDB nên ngữ nghĩa lọc/sắp xếp/cập nhật giống MongoStore.
type MemoryStore[T any] struct {
	name string
	opts storeOptions

	mu   sync.RWMutex
	docs map[int64]map[string]interface{}
	seq  int64
}

// NewMemoryStore tạo store rỗng cho collection name.
func NewMemoryStore[T any](name string, opts ...StoreOption) *MemoryStore[T] {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore[T]{
		name: name,
		opts: o,
		docs: make(map[int64]map[string]interface{}),
	}
}

// Name tên collection
func (s *MemoryStore[T]) Name() string {
	return s.name
}

// Len số bản ghi hiện có.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Find lấy danh sách theo query
func (s *MemoryStore[T]) Find(ctx context.Context, q *Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.StoreUnavailable(err)
	}

	var equals map[string]interface{}
	if q != nil && len(q.Equals) > 0 {
		equals = make(map[string]interface{}, len(q.Equals))
		for k, v := range q.Equals {
			sv, err := utility.ToStorageValue(v)
			if err != nil {
				return nil, common.ErrInvalidFormat
			}
			equals[k] = sv
		}
	}

	s.mu.RLock()
	matched := make([]map[string]interface{}, 0, len(s.docs))
	for _, doc := range s.docs {
		if matches(doc, equals) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	field, desc := q.sortField(), q.sortDesc()
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareValues(matched[i][field], matched[j][field])
		if c == 0 {
			// Thứ tự ổn định theo _id giảm dần
			return toInt64(matched[i]["_id"]) > toInt64(matched[j]["_id"])
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	if q != nil && q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, doc := range matched {
		item, err := utility.FromMap[T](doc)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}
		out = append(out, item)
	}
	return out, nil
}

// FindOneById lấy theo id
func (s *MemoryStore[T]) FindOneById(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, common.StoreUnavailable(err)
	}
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return zero, common.NotFoundf("%s: không tìm thấy bản ghi %d", s.name, id)
	}
	item, err := utility.FromMap[T](doc)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}
	return item, nil
}

// InsertOne tạo mới một bản ghi
func (s *MemoryStore[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, common.StoreUnavailable(err)
	}

	s.mu.Lock()
	created, id, err := s.insertLocked(data)
	s.mu.Unlock()
	if err != nil {
		return zero, err
	}

	s.opts.emit(ctx, s.name, events.OpInsert, id, created)
	return created, nil
}

// InsertMany tạo nhiều bản ghi, bản ghi lỗi không chặn các bản ghi còn lại
func (s *MemoryStore[T]) InsertMany(ctx context.Context, data []T) (*basemodels.BatchResult[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, common.StoreUnavailable(err)
	}

	result := basemodels.NewBatchResult[T](len(data))
	ids := make([]int64, 0, len(data))

	s.mu.Lock()
	for i, item := range data {
		created, id, err := s.insertLocked(item)
		if err != nil {
			result.Fail(i, err.Error())
			continue
		}
		result.Succeed(i, id)
		result.Items = append(result.Items, created)
		ids = append(ids, id)
	}
	s.mu.Unlock()
	result.Tally()

	for i, created := range result.Items {
		s.opts.emit(ctx, s.name, events.OpInsert, ids[i], created)
	}
	if result.FailureCount > 0 {
		return result, common.PartialBatch(result.FailureMessages())
	}
	return result, nil
}

// insertLocked gọi khi đang giữ s.mu
func (s *MemoryStore[T]) insertLocked(data T) (T, int64, error) {
	var zero T
	id := s.seq + 1
	doc, err := prepareInsertDoc(data, id, s.opts.now().UnixMilli())
	if err != nil {
		return zero, 0, err
	}
	if err := s.checkUniqueLocked(doc, 0); err != nil {
		return zero, 0, err
	}
	created, err := utility.FromMap[T](doc)
	if err != nil {
		return zero, 0, common.ErrInvalidFormat
	}
	s.seq = id
	s.docs[id] = doc
	return created, id, nil
}

// UpdateById cập nhật một phần bản ghi
func (s *MemoryStore[T]) UpdateById(ctx context.Context, id int64, update *UpdateData, expectedVersion int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, common.StoreUnavailable(err)
	}
	if update == nil {
		update = &UpdateData{}
	}

	set := setFields(update)
	converted := make(map[string]interface{}, len(set))
	for k, v := range set {
		sv, err := utility.ToStorageValue(v)
		if err != nil {
			return zero, common.ErrInvalidFormat
		}
		converted[k] = sv
	}

	s.mu.Lock()
	current, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return zero, common.NotFoundf("%s: không tìm thấy bản ghi %d", s.name, id)
	}
	if expectedVersion > 0 && toInt64(current["version"]) != expectedVersion {
		s.mu.Unlock()
		return zero, common.ErrConflict
	}

	next := make(map[string]interface{}, len(current)+len(converted))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range converted {
		next[k] = v
	}
	for _, k := range update.Unset {
		if !systemFields[k] {
			delete(next, k)
		}
	}
	next["version"] = toInt64(current["version"]) + 1
	next["updatedAt"] = s.opts.now().UnixMilli()

	if err := s.checkUniqueLocked(next, id); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	updated, err := utility.FromMap[T](next)
	if err != nil {
		s.mu.Unlock()
		return zero, common.ErrInvalidFormat
	}
	s.docs[id] = next
	s.mu.Unlock()

	s.opts.emit(ctx, s.name, events.OpUpdate, id, updated)
	return updated, nil
}

// DeleteById xóa vĩnh viễn
func (s *MemoryStore[T]) DeleteById(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return common.StoreUnavailable(err)
	}

	s.mu.Lock()
	doc, ok := s.docs[id]
	if ok {
		delete(s.docs, id)
	}
	s.mu.Unlock()
	if !ok {
		return common.NotFoundf("%s: không tìm thấy bản ghi %d", s.name, id)
	}

	existing, _ := utility.FromMap[T](doc)
	s.opts.emit(ctx, s.name, events.OpDelete, id, existing)
	return nil
}

// checkUniqueLocked kiểm tra các field unique, bỏ qua bản ghi selfID và giá trị rỗng (sparse)
func (s *MemoryStore[T]) checkUniqueLocked(doc map[string]interface{}, selfID int64) error {
	for _, field := range s.opts.uniqueFields {
		v, ok := doc[field]
		if !ok || v == nil || v == "" {
			continue
		}
		for otherID, other := range s.docs {
			if otherID == selfID {
				continue
			}
			if valuesEqual(other[field], v) {
				return common.DuplicateKey(fmt.Sprintf("%s=%v", field, v))
			}
		}
	}
	return nil
}

// matches kiểm tra document thỏa mọi điều kiện bằng
func matches(doc map[string]interface{}, equals map[string]interface{}) bool {
	for k, want := range equals {
		if !valuesEqual(doc[k], want) {
			return false
		}
	}
	return true
}

// valuesEqual so sánh 2 giá trị dạng lưu trữ, các kiểu số được coi là bằng nhau nếu cùng giá trị
func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compareValues so sánh để sắp xếp: nil < số < chuỗi < còn lại
func compareValues(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}

func rank(v interface{}) int {
	if v == nil {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	if _, ok := v.(string); ok {
		return 2
	}
	return 3
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.Decimal128:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return math.NaN(), false
		}
		return d.InexactFloat64(), true
	}
	return 0, false
}

func toInt64(v interface{}) int64 {
	f, ok := toFloat(v)
	if !ok {
		return 0
	}
	return int64(f)
}
