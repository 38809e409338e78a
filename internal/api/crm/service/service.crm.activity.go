// Package crmvc - Service hoạt động CRM (crm_activities).
package crmvc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	basemodels "crm_pipeline/internal/api/base/models"
	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
)

// ActivityService xử lý hoạt động bán hàng.
type ActivityService struct {
	activities basesvc.RecordStore[crmmodels.CrmActivity]
}

// NewActivityService tạo ActivityService mới.
func NewActivityService(activities basesvc.RecordStore[crmmodels.CrmActivity]) *ActivityService {
	return &ActivityService{activities: activities}
}

// Store trả về store hoạt động bên dưới.
func (s *ActivityService) Store() basesvc.RecordStore[crmmodels.CrmActivity] {
	return s.activities
}

func normalizeActivity(input *crmdto.ActivityCreateInput) (crmmodels.CrmActivity, error) {
	in := crmdto.ActivityCreateInput{}
	if input != nil {
		in = *input
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ActivityType = strings.TrimSpace(in.ActivityType)
	if err := global.ValidateStruct(&in); err != nil {
		return crmmodels.CrmActivity{}, err
	}
	return crmmodels.CrmActivity{
		Name:               in.Name,
		ActivityType:       in.ActivityType,
		ActivityDate:       in.ActivityDate,
		AssociatedItemType: in.AssociatedItemType,
		AssociatedItemId:   in.AssociatedItemId,
		Notes:              in.Notes,
	}, nil
}

// CreateActivity tạo hoạt động mới.
func (s *ActivityService) CreateActivity(ctx context.Context, input *crmdto.ActivityCreateInput) (crmmodels.CrmActivity, error) {
	activity, err := normalizeActivity(input)
	if err != nil {
		return crmmodels.CrmActivity{}, err
	}
	return s.activities.InsertOne(ctx, activity)
}

// ListActivities danh sách hoạt động, mới nhất (activityDate) trước.
func (s *ActivityService) ListActivities(ctx context.Context, filter *crmdto.ActivityListFilter) ([]crmmodels.CrmActivity, error) {
	q := basesvc.NewQuery().OrderBy("activityDate", true)
	if filter != nil {
		if filter.ActivityType != "" {
			q.Where("activityType", filter.ActivityType)
		}
		if filter.AssociatedItemType != "" {
			q.Where("associatedItemType", filter.AssociatedItemType)
		}
		if filter.AssociatedItemId > 0 {
			q.Where("associatedItemId", filter.AssociatedItemId)
		}
	}
	return s.activities.Find(ctx, q)
}

// ImportActivities tạo nhiều hoạt động. Bản ghi không hợp lệ hoặc ghi lỗi được báo riêng từng dòng,
// các bản ghi còn lại vẫn được tạo. Có bản ghi lỗi thì trả về kết quả kèm common.ErrPartialBatch.
func (s *ActivityService) ImportActivities(ctx context.Context, inputs []crmdto.ActivityCreateInput) (*basemodels.BatchResult[crmmodels.CrmActivity], error) {
	result := basemodels.NewBatchResult[crmmodels.CrmActivity](len(inputs))

	valid := make([]crmmodels.CrmActivity, 0, len(inputs))
	validIndex := make([]int, 0, len(inputs))
	for i := range inputs {
		activity, err := normalizeActivity(&inputs[i])
		if err != nil {
			result.Fail(i, validationMessage(err))
			continue
		}
		valid = append(valid, activity)
		validIndex = append(validIndex, i)
	}

	if len(valid) > 0 {
		stored, err := s.activities.InsertMany(ctx, valid)
		if err != nil && !errors.Is(err, common.ErrPartialBatch) {
			return nil, err
		}
		for j, res := range stored.Results {
			if res.Success {
				result.Succeed(validIndex[j], res.ID)
			} else {
				result.Fail(validIndex[j], res.Message)
			}
		}
		result.Items = append(result.Items, stored.Items...)
	}

	result.Tally()
	logger.GetAppLogger().WithFields(logrus.Fields{
		"success": result.SuccessCount,
		"failure": result.FailureCount,
	}).Info("Activities imported")
	if result.FailureCount > 0 {
		return result, common.PartialBatch(result.FailureMessages())
	}
	return result, nil
}

// validationMessage gộp lỗi từng field thành một dòng
func validationMessage(err error) string {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		if fields, ok := appErr.Details.(map[string]string); ok && len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for _, k := range sortedKeys(fields) {
				parts = append(parts, fields[k])
			}
			return fmt.Sprintf("%s: %s", appErr.Message, strings.Join(parts, "; "))
		}
		return appErr.Message
	}
	return err.Error()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
