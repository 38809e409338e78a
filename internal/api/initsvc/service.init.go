// Package initsvc chứa InitService dùng để khởi tạo dữ liệu demo cho CRM (liên hệ, deal, hoạt động, bình luận).
// Tách ra package riêng để tránh import cycle giữa crm/service và cmd/server.
package initsvc

import (
	"context"
	"fmt"
	"time"

	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	crmvc "crm_pipeline/internal/api/crm/service"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
)

// InitService khởi tạo dữ liệu demo. Deal được tạo qua PipelineBoard để board đồng bộ ngay.
type InitService struct {
	contacts   *crmvc.ContactService
	board      *crmvc.PipelineBoard
	activities *crmvc.ActivityService
	comments   *crmvc.CommentService
	now        func() time.Time
}

// NewInitService tạo mới một đối tượng InitService
func NewInitService(contacts *crmvc.ContactService, board *crmvc.PipelineBoard, activities *crmvc.ActivityService, comments *crmvc.CommentService) *InitService {
	return &InitService{
		contacts:   contacts,
		board:      board,
		activities: activities,
		comments:   comments,
		now:        time.Now,
	}
}

type demoDeal struct {
	name        string
	contact     int // Vị trí trong demoContacts
	value       int64
	closeInDays int
	path        []crmmodels.Stage // Các giai đoạn đi qua sau Lead
}

var demoContacts = []crmdto.ContactCreateInput{
	{FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@techcorp.com", Phone: "+1-555-0123", CompanyName: "TechCorp Solutions"},
	{FirstName: "Michael", LastName: "Chen", Email: "m.chen@innovate.io", Phone: "+1-555-0456", CompanyName: "Innovate.io"},
	{FirstName: "Emily", LastName: "Rodriguez", Email: "emily.r@globalretail.com", Phone: "+1-555-0789", CompanyName: "Global Retail Inc"},
	{FirstName: "David", LastName: "Thompson", Email: "dthompson@financeplus.com", Phone: "+1-555-0321", CompanyName: "FinancePlus"},
}

var demoDeals = []demoDeal{
	{name: "Enterprise Software License", contact: 0, value: 45000, closeInDays: 30},
	{name: "Cloud Migration Project", contact: 1, value: 78000, closeInDays: 45, path: []crmmodels.Stage{crmmodels.StageQualified}},
	{name: "POS System Upgrade", contact: 2, value: 32000, closeInDays: 20, path: []crmmodels.Stage{crmmodels.StageQualified, crmmodels.StageProposal}},
	{name: "Analytics Platform", contact: 3, value: 56000, closeInDays: 10, path: []crmmodels.Stage{crmmodels.StageQualified, crmmodels.StageProposal, crmmodels.StageNegotiation}},
	{name: "Security Audit", contact: 0, value: 18000, closeInDays: -15, path: []crmmodels.Stage{crmmodels.StageQualified, crmmodels.StageProposal, crmmodels.StageNegotiation, crmmodels.StageClosed}},
	{name: "Training Package", contact: 1, value: 9500, closeInDays: -40, path: []crmmodels.Stage{crmmodels.StageProposal, crmmodels.StageClosed}},
}

// InitDemoData tạo dữ liệu demo nếu chưa có liên hệ nào. Trả về false khi đã có dữ liệu và bỏ qua.
func (s *InitService) InitDemoData(ctx context.Context) (bool, error) {
	log := logger.GetAppLogger()

	existing, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return false, fmt.Errorf("không đọc được liên hệ: %w", err)
	}
	if len(existing) > 0 {
		log.WithField("contacts", len(existing)).Info("[INIT] Đã có dữ liệu, bỏ qua seed demo")
		return false, nil
	}

	log.Info("[INIT] Step 1: Initializing contacts...")
	contacts, err := s.initContacts(ctx)
	if err != nil {
		return false, err
	}

	log.Info("[INIT] Step 2: Initializing deals...")
	deals, err := s.initDeals(ctx, contacts)
	if err != nil {
		return false, err
	}

	log.Info("[INIT] Step 3: Initializing activities...")
	if err := s.initActivities(ctx, contacts, deals); err != nil {
		// Hoạt động lỗi một phần không chặn khởi động
		log.WithError(err).Warn("[INIT] Step 3: Một số hoạt động không tạo được")
	}

	log.Info("[INIT] Step 4: Initializing comments...")
	if err := s.initComments(ctx, deals); err != nil {
		return false, err
	}

	log.WithFields(logrus.Fields{
		"contacts": len(contacts),
		"deals":    len(deals),
	}).Info("[INIT] Demo data initialized successfully")
	return true, nil
}

func (s *InitService) initContacts(ctx context.Context) ([]crmmodels.CrmContact, error) {
	out := make([]crmmodels.CrmContact, 0, len(demoContacts))
	for i := range demoContacts {
		c, err := s.contacts.CreateContact(ctx, &demoContacts[i])
		if err != nil {
			return nil, fmt.Errorf("tạo liên hệ %s: %w", demoContacts[i].Email, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *InitService) initDeals(ctx context.Context, contacts []crmmodels.CrmContact) ([]crmmodels.CrmDeal, error) {
	now := s.now()
	out := make([]crmmodels.CrmDeal, 0, len(demoDeals))
	for _, d := range demoDeals {
		deal, err := s.board.CreateDeal(ctx, &crmdto.DealCreateInput{
			Name:              d.name,
			ContactId:         contacts[d.contact].ID,
			Value:             crmmodels.MoneyFromInt(d.value),
			ExpectedCloseDate: now.AddDate(0, 0, d.closeInDays).UnixMilli(),
		})
		if err != nil {
			return nil, fmt.Errorf("tạo deal %s: %w", d.name, err)
		}
		for _, stage := range d.path {
			if deal, err = s.board.MoveDeal(ctx, deal.ID, stage); err != nil {
				return nil, fmt.Errorf("chuyển deal %s sang %s: %w", d.name, stage, err)
			}
		}
		out = append(out, deal)
	}
	return out, nil
}

func (s *InitService) initActivities(ctx context.Context, contacts []crmmodels.CrmContact, deals []crmmodels.CrmDeal) error {
	now := s.now()
	inputs := []crmdto.ActivityCreateInput{
		{Name: "Discovery call", ActivityType: "Call", ActivityDate: now.AddDate(0, 0, -1).UnixMilli(), AssociatedItemType: "Contact", AssociatedItemId: contacts[0].ID},
		{Name: "Send proposal", ActivityType: "Email", ActivityDate: now.AddDate(0, 0, -3).UnixMilli(), AssociatedItemType: "Deal", AssociatedItemId: deals[2].ID},
		{Name: "Contract review", ActivityType: "Meeting", ActivityDate: now.AddDate(0, 0, -5).UnixMilli(), AssociatedItemType: "Deal", AssociatedItemId: deals[3].ID},
		{Name: "Follow-up", ActivityType: "Call", ActivityDate: now.AddDate(0, 0, -12).UnixMilli(), AssociatedItemType: "Contact", AssociatedItemId: contacts[1].ID},
		{Name: "Quarterly check-in", ActivityType: "Meeting", ActivityDate: now.AddDate(0, 0, -45).UnixMilli()},
	}
	_, err := s.activities.ImportActivities(ctx, inputs)
	return err
}

func (s *InitService) initComments(ctx context.Context, deals []crmmodels.CrmDeal) error {
	notes := map[int]string{
		3: "Khách hàng yêu cầu giảm giá 5% nếu ký trong tháng",
		4: "Đã nhận thanh toán đợt 1",
	}
	for i, text := range notes {
		if _, err := s.comments.AddComment(ctx, deals[i].ID, &crmdto.CommentCreateInput{Text: text, Author: "Sales"}); err != nil {
			return fmt.Errorf("tạo bình luận cho deal %d: %w", deals[i].ID, err)
		}
	}
	return nil
}
