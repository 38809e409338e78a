// Package dto - DTO cho domain CRM (deal, board, contact, activity, comment).
package dto

import (
	crmmodels "crm_pipeline/internal/api/crm/models"
)

// DealCreateInput dữ liệu tạo deal mới.
type DealCreateInput struct {
	Name              string          `json:"name" validate:"required,no_xss"`
	ContactId         int64           `json:"contactId" validate:"gt=0"`
	ContactName       string          `json:"contactName,omitempty"` // Bỏ trống thì lấy từ liên hệ
	Value             crmmodels.Money `json:"value" validate:"gt=0"`
	ExpectedCloseDate int64           `json:"expectedCloseDate" validate:"gt=0"` // unix ms
	Stage             crmmodels.Stage `json:"stage,omitempty" validate:"omitempty,pipeline_stage"`
	Probability       *int            `json:"probability,omitempty" validate:"omitempty,min=0,max=100"` // Bỏ trống thì lấy theo giai đoạn
	Description       string          `json:"description,omitempty" validate:"no_xss"`
}

// DealPatch dữ liệu cập nhật một phần, field nil là không đổi.
type DealPatch struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,no_xss"`
	ContactId         *int64           `json:"contactId,omitempty" validate:"omitempty,gt=0"`
	ContactName       *string          `json:"contactName,omitempty"`
	Value             *crmmodels.Money `json:"value,omitempty" validate:"omitempty,gt=0"`
	ExpectedCloseDate *int64           `json:"expectedCloseDate,omitempty" validate:"omitempty,gt=0"`
	Stage             *crmmodels.Stage `json:"stage,omitempty" validate:"omitempty,pipeline_stage"`
	Probability       *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Description       *string          `json:"description,omitempty" validate:"omitempty,no_xss"`
	Version           *int64           `json:"version,omitempty"` // Có thì phải khớp version hiện tại
}

// DealMoveInput dữ liệu chuyển giai đoạn.
type DealMoveInput struct {
	Stage crmmodels.Stage `json:"stage" validate:"required,pipeline_stage"`
}

// DealListFilter điều kiện lọc danh sách deal.
type DealListFilter struct {
	Stage     crmmodels.Stage
	ContactId int64
}
