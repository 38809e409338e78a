// Package reportdto chứa DTO cho domain Report (dashboard, doanh thu, phân bố giai đoạn, hoạt động).
package reportdto

import (
	crmmodels "crm_pipeline/internal/api/crm/models"
)

// RevenueSeriesName tên series doanh thu
const RevenueSeriesName = "Revenue"

// RevenueLabelLayout định dạng nhãn tháng (vd: "Jun 2024")
const RevenueLabelLayout = "Jan 2006"

// DashboardMetrics chỉ số tổng quan trên dashboard.
type DashboardMetrics struct {
	TotalRevenue     crmmodels.Money `json:"totalRevenue"`     // Tổng value deal Closed
	TotalDeals       int             `json:"totalDeals"`       // Tất cả giai đoạn
	ClosedDeals      int             `json:"closedDeals"`      // Số deal Closed
	ConversionRate   float64         `json:"conversionRate"`   // closedDeals / totalDeals * 100
	RecentActivities int             `json:"recentActivities"` // Hoạt động trong rangeDays gần nhất
	PipelineValue    crmmodels.Money `json:"pipelineValue"`    // Tổng value deal chưa Closed
	AverageDealValue crmmodels.Money `json:"averageDealValue"` // totalRevenue / closedDeals
}

// SeriesData một series của biểu đồ.
type SeriesData struct {
	Name string            `json:"name"`
	Data []crmmodels.Money `json:"data"`
}

// ChartSeries dữ liệu biểu đồ theo nhãn.
type ChartSeries struct {
	Labels []string     `json:"labels"`
	Series []SeriesData `json:"series"`
}

// StageDistribution số deal theo giai đoạn, Labels và Series song song.
type StageDistribution struct {
	Labels []string `json:"labels"`
	Series []int    `json:"series"`
}

// ActivityMetrics thống kê hoạt động trong cửa sổ ngày.
type ActivityMetrics struct {
	Total         int            `json:"total"`
	ByType        map[string]int `json:"byType"`
	AveragePerDay int            `json:"averagePerDay"`
}

// AnalyticsQuery query cho các API analytics. Giá trị 0 là dùng mặc định từ cấu hình.
type AnalyticsQuery struct {
	RangeDays int `query:"rangeDays"`
	Months    int `query:"months"`
	Days      int `query:"days"`
}
