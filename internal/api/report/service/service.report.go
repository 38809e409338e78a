// Package reportsvc - AnalyticsService lấy dữ liệu nguồn từ store và tính chỉ số.
package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "crm_pipeline/internal/api/base/service"
	crmmodels "crm_pipeline/internal/api/crm/models"
	reportdto "crm_pipeline/internal/api/report/dto"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Giới hạn tham số khoảng thời gian
const (
	MaxRangeDays = 3650
	MaxMonths    = 120
)

// AnalyticsService tính chỉ số analytics. Chỉ đọc, an toàn khi gọi đồng thời.
type AnalyticsService struct {
	deals      basesvc.RecordStore[crmmodels.CrmDeal]
	activities basesvc.RecordStore[crmmodels.CrmActivity]

	loc           *time.Location
	now           func() time.Time
	defaultDays   int
	defaultMonths int
}

// AnalyticsOption tùy chọn cho AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithLocation múi giờ để chia tháng doanh thu.
func WithLocation(loc *time.Location) AnalyticsOption {
	return func(s *AnalyticsService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithAnalyticsClock đặt thời điểm đánh giá (dùng trong test).
func WithAnalyticsClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaults số ngày và số tháng mặc định khi request không truyền.
func WithDefaults(days, months int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if days > 0 {
			s.defaultDays = days
		}
		if months > 0 {
			s.defaultMonths = months
		}
	}
}

// NewAnalyticsService tạo AnalyticsService mới.
func NewAnalyticsService(deals basesvc.RecordStore[crmmodels.CrmDeal], activities basesvc.RecordStore[crmmodels.CrmActivity], opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		deals:         deals,
		activities:    activities,
		loc:           time.UTC,
		now:           time.Now,
		defaultDays:   30,
		defaultMonths: 6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard chỉ số tổng quan. rangeDays = 0 dùng mặc định.
func (s *AnalyticsService) Dashboard(ctx context.Context, rangeDays int) (reportdto.DashboardMetrics, error) {
	days, err := s.resolve("rangeDays", rangeDays, s.defaultDays, MaxRangeDays)
	if err != nil {
		return reportdto.DashboardMetrics{}, err
	}

	var (
		deals      []crmmodels.CrmDeal
		activities []crmmodels.CrmActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.deals.Find(gctx, basesvc.NewQuery())
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = s.activities.Find(gctx, basesvc.NewQuery())
		return err
	})
	if err := g.Wait(); err != nil {
		return reportdto.DashboardMetrics{}, s.fetchError("dashboard", err)
	}
	return DashboardMetrics(deals, activities, days, s.now()), nil
}

// Revenue doanh thu theo tháng. months = 0 dùng mặc định.
func (s *AnalyticsService) Revenue(ctx context.Context, months int) (reportdto.ChartSeries, error) {
	n, err := s.resolve("months", months, s.defaultMonths, MaxMonths)
	if err != nil {
		return reportdto.ChartSeries{}, err
	}
	deals, err := s.deals.Find(ctx, basesvc.NewQuery().Where("stage", crmmodels.StageClosed))
	if err != nil {
		return reportdto.ChartSeries{}, s.fetchError("revenue", err)
	}
	return RevenueSeries(deals, n, s.now(), s.loc), nil
}

// Stages phân bố deal theo giai đoạn.
func (s *AnalyticsService) Stages(ctx context.Context) (reportdto.StageDistribution, error) {
	deals, err := s.deals.Find(ctx, basesvc.NewQuery())
	if err != nil {
		return reportdto.StageDistribution{}, s.fetchError("stages", err)
	}
	return StageDistribution(deals), nil
}

// Activities thống kê hoạt động trong days ngày gần nhất. days = 0 dùng mặc định.
func (s *AnalyticsService) Activities(ctx context.Context, days int) (reportdto.ActivityMetrics, error) {
	n, err := s.resolve("days", days, s.defaultDays, MaxRangeDays)
	if err != nil {
		return reportdto.ActivityMetrics{}, err
	}
	activities, err := s.activities.Find(ctx, basesvc.NewQuery())
	if err != nil {
		return reportdto.ActivityMetrics{}, s.fetchError("activities", err)
	}
	return ActivityMetrics(activities, n, s.now()), nil
}

func (s *AnalyticsService) resolve(field string, v, def, max int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < 0 || v > max {
		return 0, common.ValidationFailed(map[string]string{
			field: fmt.Sprintf("%s phải trong khoảng 1..%d", field, max),
		})
	}
	return v, nil
}

// fetchError lỗi đọc dữ liệu nguồn, luôn là common.ErrStoreUnavailable
func (s *AnalyticsService) fetchError(op string, err error) error {
	logger.GetAppLogger().WithFields(logrus.Fields{
		"op": op,
	}).WithError(err).Warn("[Report] Fetch source data failed")
	if errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	return common.StoreUnavailable(err)
}
