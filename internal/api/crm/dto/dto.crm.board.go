package dto

import (
	crmmodels "crm_pipeline/internal/api/crm/models"
)

// BoardCard một deal trên board.
type BoardCard struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	ContactId         int64           `json:"contactId"`
	ContactName       string          `json:"contactName"`
	Value             crmmodels.Money `json:"value"`
	ExpectedCloseDate int64           `json:"expectedCloseDate"`
	Stage             crmmodels.Stage `json:"stage"`
	Probability       int             `json:"probability"`
	Version           int64           `json:"version"`
}

// BoardColumn một cột (giai đoạn) của board.
type BoardColumn struct {
	Stage      crmmodels.Stage `json:"stage"`
	Title      string          `json:"title"`
	Implicit   bool            `json:"implicit"` // Giai đoạn không thuộc bảng cố định, tạo theo dữ liệu
	Count      int             `json:"count"`
	TotalValue crmmodels.Money `json:"totalValue"`
	Deals      []BoardCard     `json:"deals"`
}

// BoardView board đã nhóm theo giai đoạn.
type BoardView struct {
	Columns    []BoardColumn   `json:"columns"`
	TotalCount int             `json:"totalCount"`
	TotalValue crmmodels.Money `json:"totalValue"`
	Drag       DragState       `json:"drag"`
}

// Column tìm cột theo giai đoạn.
func (v BoardView) Column(stage crmmodels.Stage) (BoardColumn, bool) {
	for _, c := range v.Columns {
		if c.Stage == stage {
			return c, true
		}
	}
	return BoardColumn{}, false
}

// DragState trạng thái kéo thả, chỉ một deal được kéo tại một thời điểm.
type DragState struct {
	Active    bool            `json:"active"`
	DealId    int64           `json:"dealId,omitempty"`
	OverStage crmmodels.Stage `json:"overStage,omitempty"` // Cột đang được highlight
}

// DragBeginInput bắt đầu kéo một deal.
type DragBeginInput struct {
	DealId int64 `json:"dealId" validate:"gt=0"`
}

// DragOverInput con trỏ đang ở trên cột stage.
type DragOverInput struct {
	Stage crmmodels.Stage `json:"stage" validate:"required"`
}

// DropResult kết quả thả: Deal nil khi không có thay đổi.
type DropResult struct {
	Deal  *crmmodels.CrmDeal `json:"deal"`
	Board BoardView          `json:"board"`
}
