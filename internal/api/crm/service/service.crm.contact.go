// Package crmvc - Service liên hệ CRM (crm_contacts).
package crmvc

import (
	"context"
	"strings"

	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/global"
)

// ContactService xử lý liên hệ.
type ContactService struct {
	contacts basesvc.RecordStore[crmmodels.CrmContact]
}

// NewContactService tạo ContactService mới.
func NewContactService(contacts basesvc.RecordStore[crmmodels.CrmContact]) *ContactService {
	return &ContactService{contacts: contacts}
}

// Store trả về store liên hệ bên dưới.
func (s *ContactService) Store() basesvc.RecordStore[crmmodels.CrmContact] {
	return s.contacts
}

// CreateContact tạo liên hệ mới. Email trùng trả về common.ErrConflict.
func (s *ContactService) CreateContact(ctx context.Context, input *crmdto.ContactCreateInput) (crmmodels.CrmContact, error) {
	in := crmdto.ContactCreateInput{}
	if input != nil {
		in = *input
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := global.ValidateStruct(&in); err != nil {
		return crmmodels.CrmContact{}, err
	}
	return s.contacts.InsertOne(ctx, crmmodels.CrmContact{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		CompanyName: strings.TrimSpace(in.CompanyName),
	})
}

// GetContact lấy liên hệ theo id.
func (s *ContactService) GetContact(ctx context.Context, id int64) (crmmodels.CrmContact, error) {
	return s.contacts.FindOneById(ctx, id)
}

// ListContacts danh sách liên hệ, mới nhất trước.
func (s *ContactService) ListContacts(ctx context.Context) ([]crmmodels.CrmContact, error) {
	return s.contacts.Find(ctx, basesvc.NewQuery())
}
