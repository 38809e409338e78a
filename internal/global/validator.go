package global

import (
	"reflect"
	"strings"
	"sync"

	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator khởi tạo và đăng ký các custom validator (idempotent)
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		// Dùng tên json làm tên field trong thông báo lỗi
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// Money được so sánh như số thực (vd: validate:"gt=0")
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if m, ok := field.Interface().(crmmodels.Money); ok {
				return m.InexactFloat64()
			}
			return nil
		}, crmmodels.Money{})

		_ = v.RegisterValidation("pipeline_stage", validatePipelineStage)
		_ = v.RegisterValidation("no_xss", validateNoXSS)
		validate = v
	})
	return validate
}

// Validator trả về validator dùng chung
func Validator() *validator.Validate {
	return InitValidator()
}

// ValidateStruct kiểm tra struct theo tag, trả về common.ErrValidationFailed kèm lỗi từng field
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return common.ValidationFailed(map[string]string{"_": err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return common.ValidationFailed(fields)
}

// fieldMessage chuyển lỗi validator thành thông báo cho người dùng
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " là bắt buộc"
	case "gt":
		return fe.Field() + " phải lớn hơn " + fe.Param()
	case "min", "gte":
		return fe.Field() + " phải lớn hơn hoặc bằng " + fe.Param()
	case "max", "lte":
		return fe.Field() + " phải nhỏ hơn hoặc bằng " + fe.Param()
	case "pipeline_stage":
		return fe.Field() + " không phải giai đoạn hợp lệ"
	case "no_xss":
		return fe.Field() + " chứa nội dung không an toàn"
	default:
		return fe.Field() + " không hợp lệ (" + fe.Tag() + ")"
	}
}

// validatePipelineStage kiểm tra giá trị thuộc 5 giai đoạn cố định của pipeline
func validatePipelineStage(fl validator.FieldLevel) bool {
	return crmmodels.IsKnownStage(crmmodels.Stage(fl.Field().String()))
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}
