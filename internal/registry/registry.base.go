// Package registry cung cấp registry generic, thread-safe cho các singleton của ứng dụng
// (vd: các *mongo.Collection đã khởi tạo).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"crm_pipeline/internal/common"
)

// Registry lưu item theo tên, an toàn khi dùng đồng thời.
//
// Example:
//
//	colls := NewRegistry[*mongo.Collection]()
//	colls.Register("crm_deals", db.Collection("crm_deals"))
//	if coll, ok := colls.Get("crm_deals"); ok {
//	    ...
//	}
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry tạo và trả về một registry mới.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký item, ghi đè nếu tên đã tồn tại.
// Trả về isNew=false khi ghi đè item cũ.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, common.ValidationFailed(map[string]string{"name": "name không được rỗng"})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên.
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// MustGet lấy item theo tên, trả về lỗi NotFound nếu chưa đăng ký.
func (r *Registry[T]) MustGet(name string) (T, error) {
	item, ok := r.Get(name)
	if !ok {
		return item, common.NotFoundf("không tìm thấy %s trong registry", name)
	}
	return item, nil
}

// GetOrCreate lấy item theo tên, nếu chưa có thì tạo qua creator.
// creator được gọi khi đang giữ lock nên không được gọi lại registry.
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	if name == "" {
		return item, common.ValidationFailed(map[string]string{"name": "name không được rỗng"})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[name]; ok {
		return existing, nil
	}

	newItem, err := creator()
	if err != nil {
		return item, fmt.Errorf("failed to create item %s: %w", name, err)
	}
	r.items[name] = newItem
	return newItem, nil
}

// Names trả về danh sách tên đã đăng ký, sắp xếp tăng dần.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearAll xóa tất cả items, gọi cleanup cho từng item nếu có.
func (r *Registry[T]) ClearAll(cleanup func(T) error) (count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count = len(r.items)
	if cleanup != nil {
		var errs []error
		for name, item := range r.items {
			if err := cleanup(item); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup %s: %w", name, err))
			}
		}
		if len(errs) > 0 {
			return 0, fmt.Errorf("cleanup errors occurred: %v", errs)
		}
	}

	r.items = make(map[string]T)
	return count, nil
}
