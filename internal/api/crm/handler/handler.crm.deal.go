// Package crmhdl - HTTP handler cho domain CRM: deal, board, liên hệ, hoạt động, bình luận.
package crmhdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	crmvc "crm_pipeline/internal/api/crm/service"
	"crm_pipeline/internal/global"

	"github.com/gofiber/fiber/v3"
)

// DealHandler xử lý các request liên quan đến deal.
// Mọi thao tác ghi đi qua PipelineBoard để board luôn đồng bộ với store.
type DealHandler struct {
	*basehdl.BaseHandler[crmmodels.CrmDeal]
	DealService *crmvc.DealService
	Board       *crmvc.PipelineBoard
}

// NewDealHandler tạo mới DealHandler
func NewDealHandler(deals *crmvc.DealService, board *crmvc.PipelineBoard) *DealHandler {
	return &DealHandler{
		BaseHandler: basehdl.NewBaseHandler(deals.Store()),
		DealService: deals,
		Board:       board,
	}
}

// List GET /deals?stage=&contactId=
func (h *DealHandler) List(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		contactId, err := basehdl.QueryInt(c, "contactId")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		filter := &crmdto.DealListFilter{
			Stage:     crmmodels.Stage(c.Query("stage")),
			ContactId: int64(contactId),
		}
		deals, err := h.DealService.ListDeals(c.Context(), filter)
		return basehdl.HandleResponse(c, deals, err)
	})
}

// Create POST /deals
func (h *DealHandler) Create(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.DealCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		deal, err := h.Board.CreateDeal(c.Context(), &input)
		return basehdl.HandleCreated(c, deal, err)
	})
}

// Update PUT /deals/:id, chỉ các field có trong body được cập nhật.
func (h *DealHandler) Update(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		var patch crmdto.DealPatch
		if err := basehdl.ParseRequestBody(c, &patch); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		deal, err := h.Board.UpdateDeal(c.Context(), id, &patch)
		return basehdl.HandleResponse(c, deal, err)
	})
}

// Delete DELETE /deals/:id
func (h *DealHandler) Delete(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if err := h.Board.DeleteDeal(c.Context(), id); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, fiber.Map{"id": id}, nil)
	})
}

// History GET /deals/:id/history
func (h *DealHandler) History(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		history, err := h.DealService.GetDealHistory(c.Context(), id)
		return basehdl.HandleResponse(c, history, err)
	})
}

// Move POST /deals/:id/move {stage}
func (h *DealHandler) Move(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		id, err := basehdl.ParseIDParam(c, "id")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		var input crmdto.DealMoveInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		if err := global.ValidateStruct(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		deal, err := h.Board.MoveDeal(c.Context(), id, input.Stage)
		return basehdl.HandleResponse(c, deal, err)
	})
}
