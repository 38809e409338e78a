// Package events cung cấp cơ chế event trung tâm khi dữ liệu thay đổi qua RecordStore.
// Store tự phát event sau mỗi thao tác ghi thành công; phần phản ứng (audit log, ...) đăng ký qua OnDataChanged.
package events

import (
	"context"
	"reflect"
	"sync"
)

// OpInsert, OpUpdate, OpDelete là các loại thao tác ghi.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DataChangeEvent mô tả sự kiện thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi (nil nếu delete).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	DocumentID     int64
	Document       interface{}
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

// PanicHandler nhận giá trị panic của handler, mặc định bỏ qua.
type PanicHandler func(e DataChangeEvent, recovered interface{})

// Bus danh sách handler, an toàn khi dùng đồng thời.
type Bus struct {
	mu       sync.RWMutex
	handlers []DataChangeHandler
	onPanic  PanicHandler
}

// NewBus tạo bus rỗng.
func NewBus() *Bus {
	return &Bus{}
}

var defaultBus = NewBus()

// Default bus dùng chung của ứng dụng.
func Default() *Bus {
	return defaultBus
}

// OnDataChanged đăng ký handler.
func (b *Bus) OnDataChanged(h DataChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// OnPanic đặt hàm nhận panic của handler.
func (b *Bus) OnPanic(h PanicHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPanic = h
}

// EmitDataChanged phát sự kiện. Mỗi handler chạy trong goroutine riêng, panic được recover
// để không ảnh hưởng handler khác và luồng ghi dữ liệu.
// ctx của request có thể bị hủy ngay sau khi trả response nên handler nhận context tách rời.
func (b *Bus) EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	list := make([]DataChangeHandler, len(b.handlers))
	copy(list, b.handlers)
	onPanic := b.onPanic
	b.mu.RUnlock()

	if e.DocumentID == 0 {
		e.DocumentID = GetInt64Field(e.Document, "ID")
	}
	detached := context.WithoutCancel(ctx)
	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(e, r)
				}
			}()
			fn(detached, e)
		}(h)
	}
}

// OnDataChanged đăng ký handler vào bus mặc định.
func OnDataChanged(h DataChangeHandler) {
	defaultBus.OnDataChanged(h)
}

// EmitDataChanged phát sự kiện trên bus mặc định.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	defaultBus.EmitDataChanged(ctx, e)
}

// GetInt64Field lấy giá trị int64 của field từ document (dùng reflection).
// Trả về 0 nếu document không có field hoặc field không phải số nguyên.
func GetInt64Field(doc interface{}, fieldName string) int64 {
	if doc == nil {
		return 0
	}
	val := reflect.ValueOf(doc)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return 0
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return 0
	}
	f := val.FieldByName(fieldName)
	if !f.IsValid() {
		return 0
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int()
	default:
		return 0
	}
}
