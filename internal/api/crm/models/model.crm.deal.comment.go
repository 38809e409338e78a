package models

// CrmDealComment bình luận trên deal (crm_deal_comments).
type CrmDealComment struct {
	ID          int64  `json:"id" bson:"_id"`
	DealId      int64  `json:"dealId" bson:"dealId" index:"single:1"`
	Text        string `json:"text" bson:"text"`
	Author      string `json:"author" bson:"author"`
	CommentDate int64  `json:"commentDate" bson:"commentDate"` // unix ms

	Version   int64 `json:"version" bson:"version"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
