package crmhdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	crmvc "crm_pipeline/internal/api/crm/service"

	"github.com/gofiber/fiber/v3"
)

// ActivityHandler xử lý các request liên quan đến hoạt động
type ActivityHandler struct {
	*basehdl.BaseHandler[crmmodels.CrmActivity]
	ActivityService *crmvc.ActivityService
}

// NewActivityHandler tạo mới ActivityHandler
func NewActivityHandler(activities *crmvc.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     basehdl.NewBaseHandler(activities.Store()),
		ActivityService: activities,
	}
}

// List GET /activities?activityType=&associatedItemType=&associatedItemId=
func (h *ActivityHandler) List(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		itemId, err := basehdl.QueryInt(c, "associatedItemId")
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		activities, err := h.ActivityService.ListActivities(c.Context(), &crmdto.ActivityListFilter{
			ActivityType:       c.Query("activityType"),
			AssociatedItemType: c.Query("associatedItemType"),
			AssociatedItemId:   int64(itemId),
		})
		return basehdl.HandleResponse(c, activities, err)
	})
}

// Create POST /activities
func (h *ActivityHandler) Create(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.ActivityCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		activity, err := h.ActivityService.CreateActivity(c.Context(), &input)
		return basehdl.HandleCreated(c, activity, err)
	})
}

// Import POST /activities/batch, body là mảng hoạt động.
// Thành công một phần trả về 207 kèm kết quả từng dòng.
func (h *ActivityHandler) Import(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var inputs []crmdto.ActivityCreateInput
		if err := basehdl.ParseRequestBody(c, &inputs); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.ActivityService.ImportActivities(c.Context(), inputs)
		if result == nil {
			return basehdl.HandleBatchResponse(c, nil, err)
		}
		return basehdl.HandleBatchResponse(c, result, err)
	})
}
