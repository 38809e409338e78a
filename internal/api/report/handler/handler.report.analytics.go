// Package reporthdl - HTTP handler cho analytics: dashboard, doanh thu, phân bố giai đoạn, hoạt động.
package reporthdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	reportdto "crm_pipeline/internal/api/report/dto"
	reportsvc "crm_pipeline/internal/api/report/service"

	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandler xử lý các request analytics. Chỉ đọc.
type AnalyticsHandler struct {
	AnalyticsService *reportsvc.AnalyticsService
}

// NewAnalyticsHandler tạo mới AnalyticsHandler
func NewAnalyticsHandler(svc *reportsvc.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{AnalyticsService: svc}
}

// Dashboard GET /analytics/dashboard?rangeDays=
// @Summary Chỉ số tổng quan
// @Param rangeDays query int false "Số ngày tính hoạt động gần đây (mặc định theo cấu hình)"
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var q reportdto.AnalyticsQuery
		if err := basehdl.ParseQueryParams(c, &q); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		metrics, err := h.AnalyticsService.Dashboard(c.Context(), q.RangeDays)
		return basehdl.HandleResponse(c, metrics, err)
	})
}

// Revenue GET /analytics/revenue?months=
func (h *AnalyticsHandler) Revenue(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var q reportdto.AnalyticsQuery
		if err := basehdl.ParseQueryParams(c, &q); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		series, err := h.AnalyticsService.Revenue(c.Context(), q.Months)
		return basehdl.HandleResponse(c, series, err)
	})
}

// Stages GET /analytics/stages
func (h *AnalyticsHandler) Stages(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		dist, err := h.AnalyticsService.Stages(c.Context())
		return basehdl.HandleResponse(c, dist, err)
	})
}

// Activities GET /analytics/activities?days=
func (h *AnalyticsHandler) Activities(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var q reportdto.AnalyticsQuery
		if err := basehdl.ParseQueryParams(c, &q); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		metrics, err := h.AnalyticsService.Activities(c.Context(), q.Days)
		return basehdl.HandleResponse(c, metrics, err)
	})
}
