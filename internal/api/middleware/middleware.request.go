package middleware

import (
	"context"
	"errors"
	"time"

	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// StoreTimeout gắn deadline vào context của request. Mọi lời gọi kho dữ liệu đi qua c.Context()
// nên bị hủy khi quá thời gian, lỗi trả về là common.ErrStoreUnavailable.
func StoreTimeout(timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		c.SetContext(ctx)
		return c.Next()
	}
}

// AccessLog log mỗi request sau khi xử lý xong. 5xx ghi mức Error, 4xx mức Warn, còn lại Debug.
// skip trả về true thì bỏ qua (health check).
func AccessLog(skip func(c fiber.Ctx) bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		if skip != nil && skip(c) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// ErrorHandler chạy sau middleware nên status lấy từ lỗi
			status = errorStatus(err)
		}
		entry := logger.WithRequest(c).WithFields(map[string]interface{}{
			"status":  status,
			"latency": time.Since(start).String(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Request completed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Request completed")
		default:
			entry.Debug("Request completed")
		}
		return err
	}
}

// SecurityHeaders thêm các security header cơ bản vào response
func SecurityHeaders() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

func errorStatus(err error) int {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
