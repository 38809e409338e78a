package main

import (
	"fmt"
	"time"

	"crm_pipeline/config"
	"crm_pipeline/internal/api/middleware"
	apirouter "crm_pipeline/internal/api/router"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// isHealthPath health check không đi qua rate limit và access log
func isHealthPath(c fiber.Ctx) bool {
	return c.Path() == "/health" || c.Path() == "/api/v1/health"
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết rồi đăng ký route của từng domain
func InitFiberApp(cfg *config.Configuration, regs ...apirouter.RegisterFunc) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "CRM Pipeline API",
		ServerHeader:  "CRM Pipeline API",
		CaseSensitive: true,
		UnescapePath:  true,

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE VÀ TIMEOUT
		// =========================================
		BodyLimit:    4 * 1024 * 1024, // Batch hoạt động là request lớn nhất
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 3. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: middleware.ErrorHandler,
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID Middleware - Tạo ID duy nhất cho mỗi request để trace
	app.Use(requestid.New(requestid.Config{
		Header: logger.RequestIDHeader,
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. CORS Middleware - đặt sớm để xử lý preflight trước các middleware khác
	allowOrigins := cfg.CORSOrigins()
	allowCredentials := cfg.CORS_AllowCredentials
	if len(allowOrigins) == 1 && allowOrigins[0] == "*" {
		// cors không cho phép credentials với wildcard origin
		allowCredentials = false
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader, "X-Requested-With"},
		AllowCredentials: allowCredentials,
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security Headers
	app.Use(middleware.SecurityHeaders())

	// 4. Rate Limiting Middleware
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return middleware.JSONResponse(c, common.StatusTooManyRequests, fiber.Map{
					"code":    common.ErrCodeRateLimited.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return isHealthPath(c) || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover Middleware - panic ngoài SafeHandlerWrapper
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	// 6. Access log và deadline cho lời gọi kho dữ liệu
	app.Use(middleware.AccessLog(isHealthPath))
	app.Use(middleware.StoreTimeout(time.Duration(cfg.StoreTimeoutSeconds) * time.Second))

	if err := apirouter.SetupRoutes(app, regs...); err != nil {
		return nil, err
	}
	return app, nil
}
