package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader header chứa request ID (do middleware requestid set)
const RequestIDHeader = "X-Request-ID"

// WithRequest trả về logger entry với thông tin request từ Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	entry := GetAppLogger().WithContext(c.Context())

	// requestid middleware set header của response, client có thể tự gửi header của request
	requestID := c.GetRespHeader(RequestIDHeader)
	if requestID == "" {
		requestID = c.Get(RequestIDHeader)
	}
	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	return entry.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
}

// WithModule trả về logger entry với module name (vd: "crm", "report")
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}
