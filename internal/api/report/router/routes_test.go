package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	basesvc "crm_pipeline/internal/api/base/service"
	crmmodels "crm_pipeline/internal/api/crm/models"
	reportdto "crm_pipeline/internal/api/report/dto"
	reportsvc "crm_pipeline/internal/api/report/service"
	apirouter "crm_pipeline/internal/api/router"
	"crm_pipeline/internal/common"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

type envelope struct {
	Code   interface{}     `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	deals := basesvc.NewMemoryStore[crmmodels.CrmDeal]("crm_deals", basesvc.WithEventBus(nil))
	activities := basesvc.NewMemoryStore[crmmodels.CrmActivity]("crm_activities", basesvc.WithEventBus(nil))

	for _, d := range []crmmodels.CrmDeal{
		{Name: "a", Stage: crmmodels.StageLead, Value: crmmodels.MoneyFromInt(1000), ExpectedCloseDate: testNow.UnixMilli()},
		{Name: "b", Stage: crmmodels.StageClosed, Value: crmmodels.MoneyFromInt(2000), ExpectedCloseDate: testNow.AddDate(0, -1, 0).UnixMilli()},
	} {
		_, err := deals.InsertOne(ctx, d)
		require.NoError(t, err)
	}
	for _, a := range []crmmodels.CrmActivity{
		{Name: "call", ActivityType: "Call", ActivityDate: testNow.AddDate(0, 0, -2).UnixMilli()},
		{Name: "mail", ActivityType: "Email", ActivityDate: testNow.AddDate(0, 0, -20).UnixMilli()},
	} {
		_, err := activities.InsertOne(ctx, a)
		require.NoError(t, err)
	}

	svc := reportsvc.NewAnalyticsService(deals, activities,
		reportsvc.WithAnalyticsClock(func() time.Time { return testNow }),
		reportsvc.WithDefaults(7, 3))
	app := fiber.New()
	require.NoError(t, apirouter.SetupRoutes(app, Routes(svc)))
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestAnalyticsRoutes_Dashboard(t *testing.T) {
	app := newTestApp(t)

	status, env := get(t, app, "/api/v1/analytics/dashboard")
	require.Equal(t, http.StatusOK, status)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, 50.0, m["conversionRate"])
	assert.Equal(t, 2000.0, m["totalRevenue"])
	assert.Equal(t, 1000.0, m["pipelineValue"])
	assert.Equal(t, 1.0, m["recentActivities"], "mặc định 7 ngày")

	_, env = get(t, app, "/api/v1/analytics/dashboard?rangeDays=30")
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, 2.0, m["recentActivities"])
}

func TestAnalyticsRoutes_Revenue(t *testing.T) {
	app := newTestApp(t)

	status, env := get(t, app, "/api/v1/analytics/revenue?months=2")
	require.Equal(t, http.StatusOK, status)
	var chart reportdto.ChartSeries
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, []string{"May 2024", "Jun 2024"}, chart.Labels)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "2000", chart.Series[0].Data[0].String())
	assert.True(t, chart.Series[0].Data[1].IsZero())
}

func TestAnalyticsRoutes_StagesAndActivities(t *testing.T) {
	app := newTestApp(t)

	_, env := get(t, app, "/api/v1/analytics/stages")
	var dist reportdto.StageDistribution
	require.NoError(t, json.Unmarshal(env.Data, &dist))
	assert.ElementsMatch(t, []string{"Lead", "Closed"}, dist.Labels)
	assert.Equal(t, []int{1, 1}, dist.Series)

	_, env = get(t, app, "/api/v1/analytics/activities?days=30")
	var act reportdto.ActivityMetrics
	require.NoError(t, json.Unmarshal(env.Data, &act))
	assert.Equal(t, 2, act.Total)
	assert.Equal(t, map[string]int{"Call": 1, "Email": 1}, act.ByType)
}

func TestAnalyticsRoutes_InvalidQuery(t *testing.T) {
	app := newTestApp(t)

	status, env := get(t, app, "/api/v1/analytics/revenue?months=abc")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.ErrCodeValidationFormat.Code, env.Code)

	status, env = get(t, app, "/api/v1/analytics/dashboard?rangeDays=-3")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.ErrCodeValidationInput.Code, env.Code)
}
