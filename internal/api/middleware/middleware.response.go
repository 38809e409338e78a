// Package middleware - middleware dùng chung cho Fiber app: xử lý lỗi, log request, timeout kho dữ liệu.
package middleware

import (
	"errors"
	"strings"

	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
// Tách riêng để tránh import cycle với handler package
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// fiberErrorCode map HTTP status của fiber.Error sang mã lỗi hệ thống
func fiberErrorCode(status int) common.ErrorCode {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return common.ErrCodeValidationInput
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return common.ErrCodeRoute
	case fiber.StatusTooManyRequests:
		return common.ErrCodeRateLimited
	default:
		return common.ErrCodeInternalServer
	}
}

// isTLSHandshake client gọi https vào server http, fasthttp báo lỗi đọc header
func isTLSHandshake(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unsupported http request method") &&
		(strings.Contains(msg, "\\x16\\x03\\x01") ||
			strings.Contains(msg, "\x16\x03\x01") ||
			strings.Contains(msg, "error when reading request headers"))
}

// ErrorHandler là fiber.Config.ErrorHandler: lỗi thoát ra khỏi handler (route không tồn tại, body quá lớn,
// lỗi trả thẳng không qua HandleResponse) đều về cùng một định dạng {code, message, status}.
func ErrorHandler(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		details := customErr.Details
		if _, ok := details.(error); ok {
			details = nil
		}
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": details,
			"status":  "error",
		})
	}

	if isTLSHandshake(err) {
		return JSONResponse(c, fiber.StatusBadRequest, fiber.Map{
			"code":    common.ErrCodeValidationInput.Code,
			"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
			"status":  "error",
		})
	}

	status := fiber.StatusInternalServerError
	message := common.MsgInternalError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	}
	errorCode := fiberErrorCode(status)

	entry := logger.WithRequest(c).WithFields(map[string]interface{}{
		"code":      status,
		"errorCode": errorCode.Code,
	})
	if status >= fiber.StatusInternalServerError {
		entry.WithError(err).Error("Request error")
	} else {
		entry.Debug(message)
	}

	return JSONResponse(c, status, fiber.Map{
		"code":    errorCode.Code,
		"message": message,
		"status":  "error",
	})
}
