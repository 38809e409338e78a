package dto

// ContactCreateInput dữ liệu tạo liên hệ.
type ContactCreateInput struct {
	FirstName   string `json:"firstName" validate:"required,no_xss"`
	LastName    string `json:"lastName" validate:"no_xss"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"no_xss"`
	CompanyName string `json:"companyName,omitempty" validate:"no_xss"`
}

// ActivityCreateInput dữ liệu tạo hoạt động.
type ActivityCreateInput struct {
	Name               string `json:"name" validate:"required,no_xss"`
	ActivityType       string `json:"activityType" validate:"no_xss"`
	ActivityDate       int64  `json:"activityDate" validate:"gt=0"` // unix ms
	AssociatedItemType string `json:"associatedItemType,omitempty" validate:"omitempty,oneof=Deal Contact"`
	AssociatedItemId   int64  `json:"associatedItemId,omitempty" validate:"omitempty,gt=0"`
	Notes              string `json:"notes,omitempty" validate:"no_xss"`
}

// ActivityListFilter điều kiện lọc hoạt động.
type ActivityListFilter struct {
	ActivityType       string
	AssociatedItemType string
	AssociatedItemId   int64
}

// CommentCreateInput dữ liệu tạo bình luận trên deal.
type CommentCreateInput struct {
	Text   string `json:"text" validate:"required,no_xss"`
	Author string `json:"author" validate:"no_xss"`
}
