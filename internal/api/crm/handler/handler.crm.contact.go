package crmhdl

import (
	basehdl "crm_pipeline/internal/api/base/handler"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	crmvc "crm_pipeline/internal/api/crm/service"

	"github.com/gofiber/fiber/v3"
)

// ContactHandler xử lý các request liên quan đến liên hệ
type ContactHandler struct {
	*basehdl.BaseHandler[crmmodels.CrmContact]
	ContactService *crmvc.ContactService
}

// NewContactHandler tạo mới ContactHandler
func NewContactHandler(contacts *crmvc.ContactService) *ContactHandler {
	return &ContactHandler{
		BaseHandler:    basehdl.NewBaseHandler(contacts.Store()),
		ContactService: contacts,
	}
}

// List GET /contacts
func (h *ContactHandler) List(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		contacts, err := h.ContactService.ListContacts(c.Context())
		return basehdl.HandleResponse(c, contacts, err)
	})
}

// Create POST /contacts
func (h *ContactHandler) Create(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input crmdto.ContactCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		contact, err := h.ContactService.CreateContact(c.Context(), &input)
		return basehdl.HandleCreated(c, contact, err)
	})
}
