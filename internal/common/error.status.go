package common

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	StatusOK          = 200 // Thành công
	StatusCreated     = 201 // Tạo mới thành công
	StatusMultiStatus = 207 // Thành công một phần (batch)

	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusUnprocessable   = 422 // Dữ liệu không qua được kiểm tra nghiệp vụ
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgBadRequest        = "Yêu cầu không hợp lệ"
	MsgNotFound          = "Không tìm thấy dữ liệu"
	MsgValidationError   = "Dữ liệu không hợp lệ"
	MsgStoreUnavailable  = "Kho dữ liệu không khả dụng"
	MsgPartialBatch      = "Một số bản ghi không xử lý được"
	MsgConflict          = "Dữ liệu đã bị thay đổi bởi thao tác khác, vui lòng tải lại"
	MsgInvalidTransition = "Không được phép chuyển giai đoạn"
	MsgInternalError     = "Lỗi hệ thống"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: VAL_001)
	Category    string // Phân loại lỗi (ví dụ: Validation)
	SubCategory string // Phân loại con
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	ErrCodeRateLimited = ErrorCode{
		Code:        "SYS_002",
		Category:    "System",
		SubCategory: "RateLimit",
		Description: "Vượt giới hạn số request",
	}

	ErrCodeRoute = ErrorCode{
		Code:        "SYS_003",
		Category:    "System",
		SubCategory: "Route",
		Description: "Route hoặc method không tồn tại",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Store Errors (STORE_xxx)
	ErrCodeStoreNotFound = ErrorCode{
		Code:        "STORE_001",
		Category:    "Store",
		SubCategory: "NotFound",
		Description: "Bản ghi không tồn tại",
	}

	ErrCodeStoreUnavailable = ErrorCode{
		Code:        "STORE_002",
		Category:    "Store",
		SubCategory: "Unavailable",
		Description: "Lời gọi tới kho dữ liệu thất bại (mạng, backend)",
	}

	ErrCodeStorePartialBatch = ErrorCode{
		Code:        "STORE_003",
		Category:    "Store",
		SubCategory: "PartialBatch",
		Description: "Thao tác nhiều bản ghi thành công một phần",
	}

	ErrCodeStoreConflict = ErrorCode{
		Code:        "STORE_004",
		Category:    "Store",
		SubCategory: "Conflict",
		Description: "Version của bản ghi không khớp khi cập nhật",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessTransition = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "Transition",
		Description: "Chuyển giai đoạn deal bị chính sách từ chối",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is so sánh theo mã lỗi, để errors.Is(err, ErrNotFound) đúng cả khi message/details khác nhau.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code
}

// Unwrap trả về lỗi gốc nếu Details là error
func (e *Error) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	ErrNotFound          = NewError(ErrCodeStoreNotFound, MsgNotFound, StatusNotFound, nil)
	ErrValidationFailed  = NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, nil)
	ErrInvalidFormat     = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrStoreUnavailable  = NewError(ErrCodeStoreUnavailable, MsgStoreUnavailable, StatusServiceUnavailable, nil)
	ErrPartialBatch      = NewError(ErrCodeStorePartialBatch, MsgPartialBatch, StatusMultiStatus, nil)
	ErrConflict          = NewError(ErrCodeStoreConflict, MsgConflict, StatusConflict, nil)
	ErrInvalidTransition = NewError(ErrCodeBusinessTransition, MsgInvalidTransition, StatusUnprocessable, nil)
)

// NotFoundf tạo lỗi NotFound kèm message cụ thể (vẫn khớp errors.Is(err, ErrNotFound)).
func NotFoundf(format string, args ...any) error {
	return NewError(ErrCodeStoreNotFound, fmt.Sprintf(format, args...), StatusNotFound, nil)
}

// ValidationFailed tạo lỗi ValidationFailed với danh sách lỗi từng field.
func ValidationFailed(fields map[string]string) error {
	return NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, fields)
}

// StoreUnavailable bọc lỗi gốc của kho dữ liệu.
func StoreUnavailable(cause error) error {
	return NewError(ErrCodeStoreUnavailable, MsgStoreUnavailable, StatusServiceUnavailable, cause)
}

// PartialBatch tạo lỗi thành công một phần, details là danh sách message của các bản ghi lỗi.
func PartialBatch(messages []string) error {
	return NewError(ErrCodeStorePartialBatch, fmt.Sprintf("%s (%d lỗi)", MsgPartialBatch, len(messages)), StatusMultiStatus, messages)
}

// DuplicateKey lỗi trùng giá trị unique (vẫn khớp errors.Is(err, ErrConflict)).
func DuplicateKey(details any) error {
	return NewError(ErrCodeStoreConflict, "Dữ liệu đã tồn tại", StatusConflict, details)
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Lỗi đã là lỗi hệ thống thì giữ nguyên
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return DuplicateKey(err)
	}

	// Lỗi mạng, timeout, command... đều là kho dữ liệu không khả dụng với phía gọi
	return StoreUnavailable(err)
}
