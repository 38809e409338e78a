package reportsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	basesvc "crm_pipeline/internal/api/base/service"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func deal(id int64, stage crmmodels.Stage, value int64) crmmodels.CrmDeal {
	return crmmodels.CrmDeal{ID: id, Stage: stage, Value: crmmodels.MoneyFromInt(value)}
}

func closedAt(value int64, at time.Time) crmmodels.CrmDeal {
	return crmmodels.CrmDeal{Stage: crmmodels.StageClosed, Value: crmmodels.MoneyFromInt(value), ExpectedCloseDate: at.UnixMilli()}
}

func activityAt(activityType string, at time.Time) crmmodels.CrmActivity {
	return crmmodels.CrmActivity{Name: "a", ActivityType: activityType, ActivityDate: at.UnixMilli()}
}

func TestDashboardMetrics_NoDeals(t *testing.T) {
	m := DashboardMetrics(nil, nil, 30, testNow)
	assert.Equal(t, 0, m.TotalDeals)
	assert.True(t, m.TotalRevenue.IsZero())
	assert.Equal(t, 0.0, m.ConversionRate)
	assert.True(t, m.PipelineValue.IsZero())
	assert.True(t, m.AverageDealValue.IsZero())
	assert.Equal(t, 0, m.RecentActivities)
}

func TestDashboardMetrics_Scenario(t *testing.T) {
	deals := []crmmodels.CrmDeal{
		deal(1, crmmodels.StageLead, 1000),
		deal(2, crmmodels.StageClosed, 2000),
	}
	m := DashboardMetrics(deals, nil, 30, testNow)
	assert.Equal(t, 2, m.TotalDeals)
	assert.Equal(t, 1, m.ClosedDeals)
	assert.Equal(t, 50.0, m.ConversionRate)
	assert.Equal(t, "1000", m.PipelineValue.String())
	assert.Equal(t, "2000", m.TotalRevenue.String())
	assert.Equal(t, "2000", m.AverageDealValue.String())
}

func TestDashboardMetrics_OpenDealsOnly(t *testing.T) {
	m := DashboardMetrics([]crmmodels.CrmDeal{deal(1, crmmodels.StageProposal, 10), deal(2, "Won", 5)}, nil, 30, testNow)
	assert.Equal(t, 0.0, m.ConversionRate)
	assert.True(t, m.AverageDealValue.IsZero())
	assert.Equal(t, "15", m.PipelineValue.String(), "giai đoạn lạ tính vào pipeline")
}

func TestDashboardMetrics_RecentActivities(t *testing.T) {
	activities := []crmmodels.CrmActivity{
		activityAt("Call", testNow.AddDate(0, 0, -1)),
		activityAt("Call", testNow.Add(-7*24*time.Hour)),
		activityAt("Call", testNow.Add(-7*24*time.Hour-time.Millisecond)),
		activityAt("Call", testNow.AddDate(0, 0, 2)),
		{Name: "no date"},
	}
	m := DashboardMetrics(nil, activities, 7, testNow)
	assert.Equal(t, 3, m.RecentActivities)
}

func TestRevenueSeries_ThreeMonths(t *testing.T) {
	deals := []crmmodels.CrmDeal{closedAt(100, testNow)}
	s := RevenueSeries(deals, 3, testNow, time.UTC)

	assert.Equal(t, []string{"Apr 2024", "May 2024", "Jun 2024"}, s.Labels)
	require.Len(t, s.Series, 1)
	assert.Equal(t, "Revenue", s.Series[0].Name)
	require.Len(t, s.Series[0].Data, 3)
	assert.True(t, s.Series[0].Data[0].IsZero())
	assert.True(t, s.Series[0].Data[1].IsZero())
	assert.Equal(t, "100", s.Series[0].Data[2].String())
}

func TestRevenueSeries_Buckets(t *testing.T) {
	deals := []crmmodels.CrmDeal{
		closedAt(100, time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)),
		closedAt(50, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		closedAt(70, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)), // ngoài cửa sổ
		closedAt(30, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),  // tháng sau
		{Stage: crmmodels.StageNegotiation, Value: crmmodels.MoneyFromInt(999), ExpectedCloseDate: testNow.UnixMilli()},
	}
	s := RevenueSeries(deals, 2, testNow, time.UTC)
	assert.Equal(t, []string{"May 2024", "Jun 2024"}, s.Labels)
	assert.Equal(t, "150", s.Series[0].Data[0].String())
	assert.True(t, s.Series[0].Data[1].IsZero())
}

func TestRevenueSeries_TimeZone(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	// 31/05 20:00 UTC là 01/06 03:00 giờ +07
	deals := []crmmodels.CrmDeal{closedAt(100, time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC))}

	utc := RevenueSeries(deals, 2, testNow, time.UTC)
	assert.Equal(t, "100", utc.Series[0].Data[0].String())

	local := RevenueSeries(deals, 2, testNow, hcm)
	assert.True(t, local.Series[0].Data[0].IsZero())
	assert.Equal(t, "100", local.Series[0].Data[1].String())
}

func TestRevenueSeries_YearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	s := RevenueSeries([]crmmodels.CrmDeal{closedAt(5, time.Date(2023, 12, 3, 0, 0, 0, 0, time.UTC))}, 3, now, nil)
	assert.Equal(t, []string{"Nov 2023", "Dec 2023", "Jan 2024"}, s.Labels)
	assert.Equal(t, "5", s.Series[0].Data[1].String())
}

func TestStageDistribution(t *testing.T) {
	deals := []crmmodels.CrmDeal{
		deal(1, crmmodels.StageQualified, 1),
		deal(2, "", 1),
		deal(3, "Won", 1),
		deal(4, crmmodels.StageQualified, 1),
		deal(5, crmmodels.StageLead, 1),
	}
	first := StageDistribution(deals)
	assert.Equal(t, []string{"Qualified", "Lead", "Won"}, first.Labels)
	assert.Equal(t, []int{2, 2, 1}, first.Series)

	second := StageDistribution(deals)
	assert.Equal(t, first, second)

	empty := StageDistribution(nil)
	assert.Empty(t, empty.Labels)
	assert.NotNil(t, empty.Series)
}

func TestActivityMetrics(t *testing.T) {
	activities := []crmmodels.CrmActivity{
		activityAt("Call", testNow),
		activityAt("Call", testNow.AddDate(0, 0, -3)),
		activityAt("", testNow.AddDate(0, 0, -10)),
		activityAt("Email", testNow.Add(-10*24*time.Hour-time.Second)),
		activityAt("Email", testNow.Add(time.Millisecond)),
		{Name: "no date", ActivityType: "Call"},
	}
	m := ActivityMetrics(activities, 10, testNow)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, map[string]int{"Call": 2, "Other": 1}, m.ByType)
	assert.Equal(t, 0, m.AveragePerDay)

	m = ActivityMetrics(activities, 2, testNow)
	assert.Equal(t, 1, m.Total)
	assert.Equal(t, 1, m.AveragePerDay, "round(1/2) = 1")

	assert.Equal(t, 0, ActivityMetrics(activities, 0, testNow).Total)
}

// failingStore trả lỗi cho mọi lần đọc
type failingStore[T any] struct {
	basesvc.RecordStore[T]
	err error
}

func (s failingStore[T]) Find(ctx context.Context, q *basesvc.Query) ([]T, error) {
	return nil, s.err
}

func newAnalytics(t *testing.T) (*AnalyticsService, *basesvc.MemoryStore[crmmodels.CrmDeal], *basesvc.MemoryStore[crmmodels.CrmActivity]) {
	t.Helper()
	deals := basesvc.NewMemoryStore[crmmodels.CrmDeal]("crm_deals", basesvc.WithEventBus(nil))
	activities := basesvc.NewMemoryStore[crmmodels.CrmActivity]("crm_activities", basesvc.WithEventBus(nil))
	svc := NewAnalyticsService(deals, activities,
		WithAnalyticsClock(func() time.Time { return testNow }),
		WithDefaults(7, 3))
	return svc, deals, activities
}

func TestAnalyticsService(t *testing.T) {
	ctx := context.Background()
	svc, deals, activities := newAnalytics(t)

	for _, d := range []crmmodels.CrmDeal{
		{Name: "a", Stage: crmmodels.StageLead, Value: crmmodels.MoneyFromInt(1000), ExpectedCloseDate: testNow.UnixMilli()},
		{Name: "b", Stage: crmmodels.StageClosed, Value: crmmodels.MoneyFromInt(2000), ExpectedCloseDate: testNow.UnixMilli()},
	} {
		_, err := deals.InsertOne(ctx, d)
		require.NoError(t, err)
	}
	_, err := activities.InsertOne(ctx, activityAt("Meeting", testNow.AddDate(0, 0, -1)))
	require.NoError(t, err)

	dash, err := svc.Dashboard(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 50.0, dash.ConversionRate)
	assert.Equal(t, "2000", dash.AverageDealValue.String())
	assert.Equal(t, 1, dash.RecentActivities)

	rev, err := svc.Revenue(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rev.Labels, 3, "mặc định 3 tháng")
	assert.Equal(t, "2000", rev.Series[0].Data[2].String())

	stages, err := svc.Stages(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Lead", "Closed"}, stages.Labels)

	act, err := svc.Activities(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, act.ByType["Meeting"])
}

func TestAnalyticsService_InvalidRange(t *testing.T) {
	svc, _, _ := newAnalytics(t)
	_, err := svc.Dashboard(context.Background(), -1)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	_, err = svc.Revenue(context.Background(), MaxMonths+1)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	_, err = svc.Activities(context.Background(), -5)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
}

func TestAnalyticsService_FetchFailure(t *testing.T) {
	_, deals, _ := newAnalytics(t)
	broken := failingStore[crmmodels.CrmActivity]{err: errors.New("connection reset")}
	svc := NewAnalyticsService(deals, broken)

	_, err := svc.Dashboard(context.Background(), 7)
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))
	_, err = svc.Activities(context.Background(), 7)
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))

	_, err = svc.Stages(context.Background())
	assert.NoError(t, err, "nguồn deal vẫn đọc được")
}
