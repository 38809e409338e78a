package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"
	"crm_pipeline/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
// Helper function này đảm bảo tất cả JSON responses đều có charset=utf-8 để hỗ trợ UTF-8 encoding đúng cách
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandlerWrapper bọc handler với recover để bắt panic và luôn trả response cho client.
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithField("path", c.Path()).
				WithField("stack", string(debug.Stack())).
				Errorf("Handler panic: %v", r)
			err = HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return fn()
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// Lỗi common.Error dùng mã lỗi và HTTP status của nó, lỗi khác là 500.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// HandleCreated trả về 201 cho thao tác tạo mới.
func HandleCreated(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusCreated, fiber.Map{
		"code":    common.StatusCreated,
		"message": common.MsgCreated,
		"data":    data,
		"status":  "success",
	})
}

// HandleBatchResponse trả về kết quả batch. Thành công một phần là 207 kèm cả data lẫn danh sách lỗi.
func HandleBatchResponse(c fiber.Ctx, data interface{}, err error) error {
	var customErr *common.Error
	if err != nil && errors.Is(err, common.ErrPartialBatch) && errors.As(err, &customErr) && data != nil {
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"data":    data,
			"status":  "partial",
		})
	}
	return HandleCreated(c, data, err)
}

// HandleErrorResponse trả về lỗi theo định dạng chuẩn
func HandleErrorResponse(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": errorDetails(customErr.Details),
			"status":  "error",
		})
	}
	logger.GetErrorLogger().WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	})
}

// errorDetails lỗi gốc không đưa ra ngoài, chỉ giữ dữ liệu đọc được
func errorDetails(details any) any {
	if _, ok := details.(error); ok {
		return nil
	}
	return details
}

// ParseIDParam đọc id số nguyên dương từ path param.
func ParseIDParam(c fiber.Ctx, name string) (int64, error) {
	id, err := utility.ParseID(c.Params(name))
	if err != nil {
		return 0, common.ValidationFailed(map[string]string{name: fmt.Sprintf("%s phải là số nguyên dương", name)})
	}
	return id, nil
}

// QueryInt đọc tham số query kiểu số. Không có thì trả về 0.
func QueryInt(c fiber.Ctx, name string) (int, error) {
	n, err := utility.ParseIntDefault(c.Query(name), 0)
	if err != nil {
		return 0, common.ValidationFailed(map[string]string{name: fmt.Sprintf("%s phải là số nguyên", name)})
	}
	return n, nil
}

// ParseRequestBody đọc JSON body, lỗi định dạng trả về common.ErrInvalidFormat.
func ParseRequestBody(c fiber.Ctx, out interface{}) error {
	if err := c.Bind().JSON(out); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			"Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu",
			common.StatusBadRequest,
			err.Error(),
		)
	}
	return nil
}

// ParseQueryParams đọc query string vào struct theo tag `query`.
func ParseQueryParams(c fiber.Ctx, out interface{}) error {
	if err := c.Bind().Query(out); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			"Tham số query không hợp lệ",
			common.StatusBadRequest,
			err.Error(),
		)
	}
	return nil
}
