package crmhdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmvc "crm_pipeline/internal/api/crm/service"

	"github.com/gofiber/fiber/v3"
)

// CommentHandler bình luận trên deal, route lồng dưới /deals/:id/comments
type CommentHandler struct {
	CommentService *crmvc.CommentService
}

// NewCommentHandler tạo mới CommentHandler
func NewCommentHandler(comments *crmvc.CommentService) *CommentHandler {
	return &CommentHandler{CommentService: comments}
}

// List GET /deals/:id/comments
func (h *CommentHandler) List(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		dealId, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		comments, err := h.CommentService.ListComments(c.Context(), dealId)
		return basehdl.HandleResponse(c, comments, err)
	})
}

// Create POST /deals/:id/comments
func (h *CommentHandler) Create(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		dealId, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		var input crmdto.CommentCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		comment, err := h.CommentService.AddComment(c.Context(), dealId, &input)
		return basehdl.HandleCreated(c, comment, err)
	})
}

// Delete DELETE /deals/:id/comments/:commentId
func (h *CommentHandler) Delete(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		dealId, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		commentId, err := basehdl.ParseIDParam(c, "commentId")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if err := h.CommentService.DeleteComment(c.Context(), dealId, commentId); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, fiber.Map{"id": commentId}, nil)
	})
}
