package crmhdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmvc "crm_pipeline/internal/api/crm/service"
	"crm_pipeline/internal/global"

	"github.com/gofiber/fiber/v3"
)

// BoardHandler API của board kéo thả. Trạng thái kéo nằm ở server, một deal tại một thời điểm.
type BoardHandler struct {
	Board *crmvc.PipelineBoard
}

// NewBoardHandler tạo mới BoardHandler
func NewBoardHandler(board *crmvc.PipelineBoard) *BoardHandler {
	return &BoardHandler{Board: board}
}

// View GET /pipeline/board?refresh=true
// Board chưa tải hoặc có refresh thì tải lại từ store trước khi trả về.
func (h *BoardHandler) View(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		if !h.Board.Loaded() || c.Query("refresh") == "true" {
			if err := h.Board.Load(c.Context()); err != nil {
				return basehdl.HandleResponse(c, nil, err)
			}
		}
		return basehdl.HandleResponse(c, h.Board.View(), nil)
	})
}

// BeginDrag POST /pipeline/drag {dealId}
func (h *BoardHandler) BeginDrag(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.DragBeginInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if err := global.ValidateStruct(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if !h.Board.Loaded() {
			if err := h.Board.Load(c.Context()); err != nil {
				return basehdl.HandleResponse(c, nil, err)
			}
		}
		if err := h.Board.BeginDrag(input.DealId); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, h.Board.DragState(), nil)
	})
}

// DragOver POST /pipeline/drag/over {stage}
func (h *BoardHandler) DragOver(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.DragOverInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if err := global.ValidateStruct(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		h.Board.DragOver(input.Stage)
		return basehdl.HandleResponse(c, h.Board.DragState(), nil)
	})
}

// DragLeave POST /pipeline/drag/leave
func (h *BoardHandler) DragLeave(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		h.Board.DragLeave()
		return basehdl.HandleResponse(c, h.Board.DragState(), nil)
	})
}

// Drop POST /pipeline/drop {stage}
func (h *BoardHandler) Drop(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.DealMoveInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		// Giai đoạn không hợp lệ do Drop báo lỗi, trạng thái kéo vẫn được xóa
		deal, err := h.Board.Drop(c.Context(), input.Stage)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, crmdto.DropResult{Deal: deal, Board: h.Board.View()}, nil)
	})
}
