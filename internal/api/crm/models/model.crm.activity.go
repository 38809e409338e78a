// Package models - CrmActivity thuộc domain CRM (crm_activities).
package models

// Các loại hoạt động thường gặp. ActivityType là chuỗi tự do, giá trị rỗng được thống kê là "Other".
const (
	ActivityTypeCall    = "Call"
	ActivityTypeEmail   = "Email"
	ActivityTypeMeeting = "Meeting"
	ActivityTypeTask    = "Task"
	ActivityTypeOther   = "Other"
)

// Loại bản ghi mà hoạt động gắn vào
const (
	AssociatedItemDeal    = "Deal"
	AssociatedItemContact = "Contact"
)

// CrmActivity hoạt động bán hàng (call, email, meeting...).
type CrmActivity struct {
	ID int64 `json:"id" bson:"_id"`

	Name               string `json:"name" bson:"name"`
	ActivityType       string `json:"activityType" bson:"activityType" index:"single:1"`
	ActivityDate       int64  `json:"activityDate" bson:"activityDate" index:"single:-1"` // unix ms
	AssociatedItemType string `json:"associatedItemType,omitempty" bson:"associatedItemType,omitempty" index:"compound:crm_activity_item"`
	AssociatedItemId   int64  `json:"associatedItemId,omitempty" bson:"associatedItemId,omitempty" index:"compound:crm_activity_item"`
	Notes              string `json:"notes,omitempty" bson:"notes,omitempty"`

	Version   int64 `json:"version" bson:"version"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
