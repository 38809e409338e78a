// Package crmvc - Service deal và máy trạng thái giai đoạn pipeline (crm_deals).
package crmvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
)

// TransitionPolicy quyết định có cho phép chuyển giai đoạn from -> to hay không.
// Trả về lỗi (thường là common.ErrInvalidTransition) để từ chối.
type TransitionPolicy func(from, to crmmodels.Stage) error

// AllowAllTransitions cho phép mọi chuyển giai đoạn, kể cả nhảy cóc hoặc mở lại deal đã Closed.
func AllowAllTransitions(from, to crmmodels.Stage) error {
	return nil
}

// DealService xử lý vòng đời deal: tạo, cập nhật, chuyển giai đoạn, xóa.
type DealService struct {
	deals    basesvc.RecordStore[crmmodels.CrmDeal]
	contacts basesvc.RecordStore[crmmodels.CrmContact]
	policy   TransitionPolicy
	now      func() time.Time
}

// DealServiceOption tùy chọn cho DealService.
type DealServiceOption func(*DealService)

// WithTransitionPolicy đặt chính sách chuyển giai đoạn.
func WithTransitionPolicy(p TransitionPolicy) DealServiceOption {
	return func(s *DealService) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithContactStore dùng store liên hệ để lấy snapshot tên liên hệ khi ghi.
func WithContactStore(contacts basesvc.RecordStore[crmmodels.CrmContact]) DealServiceOption {
	return func(s *DealService) { s.contacts = contacts }
}

// WithDealClock đặt hàm lấy thời gian hiện tại (dùng cho history.changedAt).
func WithDealClock(now func() time.Time) DealServiceOption {
	return func(s *DealService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDealService tạo DealService mới.
func NewDealService(deals basesvc.RecordStore[crmmodels.CrmDeal], opts ...DealServiceOption) *DealService {
	s := &DealService{
		deals:  deals,
		policy: AllowAllTransitions,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store trả về store deal bên dưới.
func (s *DealService) Store() basesvc.RecordStore[crmmodels.CrmDeal] {
	return s.deals
}

// CreateDeal kiểm tra dữ liệu, lấy xác suất theo giai đoạn nếu không truyền và khởi tạo lịch sử "Deal created".
// Dữ liệu không hợp lệ trả về common.ErrValidationFailed và không ghi gì vào store.
func (s *DealService) CreateDeal(ctx context.Context, input *crmdto.DealCreateInput) (crmmodels.CrmDeal, error) {
	if input == nil {
		return crmmodels.CrmDeal{}, common.ValidationFailed(map[string]string{"_": "thiếu dữ liệu deal"})
	}
	in := *input
	in.Name = strings.TrimSpace(in.Name)
	if in.Stage == "" {
		in.Stage = crmmodels.StageLead
	}
	if err := global.ValidateStruct(&in); err != nil {
		return crmmodels.CrmDeal{}, err
	}

	probability, _ := crmmodels.StageProbability(in.Stage)
	if in.Probability != nil {
		probability = *in.Probability
	}

	contactName := strings.TrimSpace(in.ContactName)
	if contactName == "" {
		name, err := s.lookupContactName(ctx, in.ContactId)
		if err != nil {
			return crmmodels.CrmDeal{}, err
		}
		contactName = name
	}

	deal := crmmodels.CrmDeal{
		Name:              in.Name,
		ContactId:         in.ContactId,
		ContactName:       contactName,
		Value:             in.Value,
		ExpectedCloseDate: in.ExpectedCloseDate,
		Stage:             in.Stage,
		Probability:       probability,
		Description:       in.Description,
		History: crmmodels.DealHistory{{
			ID:        1,
			Stage:     in.Stage,
			ChangedAt: s.now().UnixMilli(),
			ChangedBy: crmmodels.ActorSystem,
			Notes:     crmmodels.NoteDealCreated,
		}},
	}

	created, err := s.deals.InsertOne(ctx, deal)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	logger.GetAppLogger().WithFields(logrus.Fields{
		"dealId": created.ID,
		"stage":  created.Stage,
	}).Info("Deal created")
	return created, nil
}

// UpdateDeal cập nhật một phần deal.
//
// Khi patch đổi sang giai đoạn khác: xác suất lấy theo giai đoạn mới (trừ khi patch đặt xác suất)
// và thêm một entry lịch sử. Giai đoạn không đổi thì không thêm lịch sử.
// Ghi với version vừa đọc nên hai cập nhật chồng nhau trên cùng deal sẽ có một bên nhận common.ErrConflict.
func (s *DealService) UpdateDeal(ctx context.Context, id int64, patch *crmdto.DealPatch) (crmmodels.CrmDeal, error) {
	if patch == nil {
		patch = &crmdto.DealPatch{}
	}
	if err := global.ValidateStruct(patch); err != nil {
		return crmmodels.CrmDeal{}, err
	}

	current, err := s.deals.FindOneById(ctx, id)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	if patch.Version != nil && *patch.Version != current.Version {
		return crmmodels.CrmDeal{}, common.ErrConflict
	}

	set := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return crmmodels.CrmDeal{}, common.ValidationFailed(map[string]string{"name": "name là bắt buộc"})
		}
		set["name"] = name
	}
	if patch.ContactId != nil && *patch.ContactId != current.ContactId {
		set["contactId"] = *patch.ContactId
		if patch.ContactName == nil {
			name, err := s.lookupContactName(ctx, *patch.ContactId)
			if err != nil {
				return crmmodels.CrmDeal{}, err
			}
			set["contactName"] = name
		}
	}
	if patch.ContactName != nil {
		set["contactName"] = strings.TrimSpace(*patch.ContactName)
	}
	if patch.Value != nil {
		set["value"] = *patch.Value
	}
	if patch.ExpectedCloseDate != nil {
		set["expectedCloseDate"] = *patch.ExpectedCloseDate
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Probability != nil {
		set["probability"] = *patch.Probability
	}

	stageChanged := patch.Stage != nil && *patch.Stage != current.Stage
	if stageChanged {
		next := *patch.Stage
		if err := s.policy(current.Stage, next); err != nil {
			return crmmodels.CrmDeal{}, err
		}
		if patch.Probability == nil {
			probability, _ := crmmodels.StageProbability(next)
			set["probability"] = probability
		}
		history := current.History.Clone()
		history = append(history, crmmodels.DealHistoryEntry{
			ID:            history.NextID(),
			Stage:         next,
			PreviousStage: current.Stage,
			ChangedAt:     s.now().UnixMilli(),
			ChangedBy:     crmmodels.ActorUser,
			Notes:         fmt.Sprintf("Deal moved from %s to %s", current.Stage, next),
		})
		set["stage"] = next
		set["history"] = history
	}

	if len(set) == 0 {
		return current, nil
	}

	updated, err := s.deals.UpdateById(ctx, id, &basesvc.UpdateData{Set: set}, current.Version)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	if stageChanged {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"dealId": id,
			"from":   current.Stage,
			"to":     updated.Stage,
		}).Info("Deal stage changed")
	}
	return updated, nil
}

// UpdateDealStage chuyển giai đoạn, xác suất luôn đặt lại theo giai đoạn mới.
func (s *DealService) UpdateDealStage(ctx context.Context, id int64, stage crmmodels.Stage) (crmmodels.CrmDeal, error) {
	probability, ok := crmmodels.StageProbability(stage)
	if !ok {
		return crmmodels.CrmDeal{}, common.ValidationFailed(map[string]string{"stage": string(stage) + " không phải giai đoạn hợp lệ"})
	}
	return s.UpdateDeal(ctx, id, &crmdto.DealPatch{Stage: &stage, Probability: &probability})
}

// DeleteDeal xóa vĩnh viễn deal, common.ErrNotFound nếu không tồn tại.
func (s *DealService) DeleteDeal(ctx context.Context, id int64) error {
	if err := s.deals.DeleteById(ctx, id); err != nil {
		return err
	}
	logger.GetAppLogger().WithField("dealId", id).Info("Deal deleted")
	return nil
}

// GetDeal lấy deal theo id.
func (s *DealService) GetDeal(ctx context.Context, id int64) (crmmodels.CrmDeal, error) {
	return s.deals.FindOneById(ctx, id)
}

// ListDeals danh sách deal theo thứ tự của store (id giảm dần).
func (s *DealService) ListDeals(ctx context.Context, filter *crmdto.DealListFilter) ([]crmmodels.CrmDeal, error) {
	q := basesvc.NewQuery()
	if filter != nil {
		if filter.Stage != "" {
			q.Where("stage", filter.Stage)
		}
		if filter.ContactId > 0 {
			q.Where("contactId", filter.ContactId)
		}
	}
	return s.deals.Find(ctx, q)
}

// GetDealHistory lịch sử giai đoạn của deal.
func (s *DealService) GetDealHistory(ctx context.Context, id int64) (crmmodels.DealHistory, error) {
	deal, err := s.deals.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return deal.History.Clone(), nil
}

// lookupContactName lấy tên liên hệ để lưu snapshot. Không cấu hình store liên hệ thì trả về rỗng.
func (s *DealService) lookupContactName(ctx context.Context, contactId int64) (string, error) {
	if s.contacts == nil {
		return "", nil
	}
	contact, err := s.contacts.FindOneById(ctx, contactId)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ValidationFailed(map[string]string{"contactId": "liên hệ không tồn tại"})
		}
		return "", err
	}
	return contact.FullName(), nil
}
