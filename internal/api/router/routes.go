// Package router khung đăng ký route: prefix /api/v1, group theo domain và health check.
package router

import (
	basehdl "crm_pipeline/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// ============================================================================
// LƯU Ý FIBER V3 - CÁCH ĐĂNG KÝ MIDDLEWARE
// ============================================================================
//
// Truyền middleware trực tiếp vào route (router.Get(path, mw, handler)) thì middleware
// không được gọi. Middleware phải gắn qua .Use() của group:
//
//	RegisterRouteWithMiddleware(v1, "/pipeline", "GET", "/board", []fiber.Handler{mw}, handler)
//	deals := NewGroup(v1, "/deals", mw)
//
// Mỗi lần gọi RegisterRouteWithMiddleware tạo group mới và gắn lại middleware, nên domain
// có nhiều route chung prefix thì dùng NewGroup một lần.
// ============================================================================

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// App trả về fiber app gốc.
func (r *Router) App() *fiber.App {
	return r.app
}

// RegisterRouteWithMiddleware đăng ký một route với middleware qua .Use() của group.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := NewGroup(router, prefix, middlewares...)
	switch method {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}

// NewGroup tạo group với prefix, middleware chỉ áp dụng cho route trong group.
func NewGroup(router fiber.Router, prefix string, middlewares ...fiber.Handler) fiber.Router {
	group := router.Group(prefix)
	for _, mw := range middlewares {
		group.Use(mw)
	}
	return group
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả các route cho ứng dụng. Caller truyền lần lượt Register của từng domain để tránh import cycle.
// GET /health có ở cả gốc và /api/v1.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	system := basehdl.NewSystemHandler()
	app.Get("/health", system.HandleHealth)

	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	v1.Get("/health", system.HandleHealth)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
