// Package models - Deal và lịch sử giai đoạn thuộc domain CRM (crm_deals).
package models

// Stage là giai đoạn của deal trong pipeline.
type Stage string

// Các giai đoạn cố định của pipeline, theo thứ tự cột trên board.
const (
	StageLead        Stage = "Lead"
	StageQualified   Stage = "Qualified"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
	StageClosed      Stage = "Closed"
)

// StageConfig cấu hình của một giai đoạn.
type StageConfig struct {
	Stage       Stage  `json:"stage"`
	Title       string `json:"title"`
	Probability int    `json:"probability"` // Xác suất chốt mặc định (%)
}

// PipelineStages bảng giai đoạn: thứ tự cột trên board và xác suất mặc định.
var PipelineStages = []StageConfig{
	{Stage: StageLead, Title: "Lead", Probability: 25},
	{Stage: StageQualified, Title: "Qualified", Probability: 45},
	{Stage: StageProposal, Title: "Proposal", Probability: 65},
	{Stage: StageNegotiation, Title: "Negotiation", Probability: 80},
	{Stage: StageClosed, Title: "Closed", Probability: 100},
}

// StageProbability trả về xác suất mặc định của giai đoạn. ok=false nếu giai đoạn không thuộc bảng.
func StageProbability(stage Stage) (probability int, ok bool) {
	for _, cfg := range PipelineStages {
		if cfg.Stage == stage {
			return cfg.Probability, true
		}
	}
	return 0, false
}

// IsKnownStage kiểm tra giai đoạn thuộc 5 giai đoạn cố định.
func IsKnownStage(stage Stage) bool {
	_, ok := StageProbability(stage)
	return ok
}

// Người thực hiện ghi vào lịch sử
const (
	ActorSystem = "System"
	ActorUser   = "User"
)

// NoteDealCreated ghi chú của entry lịch sử đầu tiên.
const NoteDealCreated = "Deal created"

// CrmDeal cơ hội bán hàng đi qua các giai đoạn pipeline (crm_deals).
type CrmDeal struct {
	ID int64 `json:"id" bson:"_id"`

	Name              string      `json:"name" bson:"name"`
	ContactId         int64       `json:"contactId" bson:"contactId" index:"single:1"`
	ContactName       string      `json:"contactName" bson:"contactName"` // Snapshot tên liên hệ lúc ghi, chỉ dùng khi không join được
	Value             Money       `json:"value" bson:"value"`
	ExpectedCloseDate int64       `json:"expectedCloseDate" bson:"expectedCloseDate" index:"single:-1"` // unix ms, 0 = chưa có
	Stage             Stage       `json:"stage" bson:"stage" index:"single:1"`
	Probability       int         `json:"probability" bson:"probability"`
	Description       string      `json:"description,omitempty" bson:"description,omitempty"`
	History           DealHistory `json:"history" bson:"history"`

	Version   int64 `json:"version" bson:"version"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
