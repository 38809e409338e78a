// Package models - CrmContact thuộc domain CRM (crm_contacts).
package models

import "strings"

// CrmContact liên hệ (người mua) gắn với deal.
type CrmContact struct {
	ID int64 `json:"id" bson:"_id"`

	FirstName   string `json:"firstName" bson:"firstName"`
	LastName    string `json:"lastName" bson:"lastName"`
	Email       string `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty" bson:"companyName,omitempty"`

	Version   int64 `json:"version" bson:"version"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// FullName tên hiển thị "First Last".
func (c CrmContact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
