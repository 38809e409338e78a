// Package basehdl - base handlers và helper response dùng chung cho các domain.
package basehdl

import (
	basesvc "crm_pipeline/internal/api/base/service"

	"github.com/gofiber/fiber/v3"
)

// DefaultFindLimit số bản ghi tối đa khi không truyền limit
const DefaultFindLimit = 500

// BaseHandler handler đọc chung trên một RecordStore. Domain handler embed để có sẵn FindOneById/Find.
type BaseHandler[T any] struct {
	Store basesvc.RecordStore[T]
}

// NewBaseHandler tạo BaseHandler mới.
func NewBaseHandler[T any](store basesvc.RecordStore[T]) *BaseHandler[T] {
	return &BaseHandler[T]{Store: store}
}

// FindOneById xử lý GET /:id.
func (h *BaseHandler[T]) FindOneById(c fiber.Ctx) error {
	return SafeHandlerWrapper(c, func() error {
		id, err := ParseIDParam(c, "id")
		if err != nil {
			return HandleResponse(c, nil, err)
		}
		item, err := h.Store.FindOneById(c.Context(), id)
		return HandleResponse(c, item, err)
	})
}

// Find xử lý GET / với ?limit= (mặc định DefaultFindLimit), sắp xếp id giảm dần.
func (h *BaseHandler[T]) Find(c fiber.Ctx) error {
	return SafeHandlerWrapper(c, func() error {
		limit, err := QueryInt(c, "limit")
		if err != nil {
			return HandleResponse(c, nil, err)
		}
		if limit <= 0 {
			limit = DefaultFindLimit
		}
		q := basesvc.NewQuery()
		q.Limit = int64(limit)
		items, err := h.Store.Find(c.Context(), q)
		return HandleResponse(c, items, err)
	})
}
