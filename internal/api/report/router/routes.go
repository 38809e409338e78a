// Package router đăng ký các route analytics.
package router

import (
	"fmt"

	reporthdl "crm_pipeline/internal/api/report/handler"
	reportsvc "crm_pipeline/internal/api/report/service"
	apirouter "crm_pipeline/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Routes trả về hàm đăng ký route analytics lên v1.
func Routes(svc *reportsvc.AnalyticsService, middlewares ...fiber.Handler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		if svc == nil {
			return fmt.Errorf("report routes: thiếu analytics service")
		}
		h := reporthdl.NewAnalyticsHandler(svc)
		analytics := apirouter.NewGroup(v1, "/analytics", middlewares...)
		analytics.Get("/dashboard", h.Dashboard)
		analytics.Get("/revenue", h.Revenue)
		analytics.Get("/stages", h.Stages)
		analytics.Get("/activities", h.Activities)
		return nil
	}
}
