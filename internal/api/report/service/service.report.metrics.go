// Package reportsvc - Tính chỉ số analytics từ danh sách deal và hoạt động.
// Các hàm trong file này thuần: không đọc đồng hồ, không giữ trạng thái, cùng input cho cùng output.
package reportsvc

import (
	"math"
	"time"

	crmmodels "crm_pipeline/internal/api/crm/models"
	reportdto "crm_pipeline/internal/api/report/dto"
	"crm_pipeline/internal/utility"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// DashboardMetrics tính chỉ số tổng quan. Hoạt động "gần đây" là activityDate >= now - rangeDays ngày.
func DashboardMetrics(deals []crmmodels.CrmDeal, activities []crmmodels.CrmActivity, rangeDays int, now time.Time) reportdto.DashboardMetrics {
	var m reportdto.DashboardMetrics
	m.TotalDeals = len(deals)

	for _, d := range deals {
		if d.Stage == crmmodels.StageClosed {
			m.ClosedDeals++
			m.TotalRevenue = m.TotalRevenue.Add(d.Value)
		} else {
			m.PipelineValue = m.PipelineValue.Add(d.Value)
		}
	}

	if m.TotalDeals > 0 {
		rate := decimal.NewFromInt(int64(m.ClosedDeals)).
			Div(decimal.NewFromInt(int64(m.TotalDeals))).
			Mul(hundred)
		m.ConversionRate = rate.InexactFloat64()
	}
	if m.ClosedDeals > 0 {
		m.AverageDealValue = crmmodels.Money{Decimal: m.TotalRevenue.Div(decimal.NewFromInt(int64(m.ClosedDeals)))}
	}

	since := now.Add(-time.Duration(rangeDays) * day).UnixMilli()
	for _, a := range activities {
		if a.ActivityDate > 0 && a.ActivityDate >= since {
			m.RecentActivities++
		}
	}
	return m
}

// RevenueSeries doanh thu deal Closed theo tháng của expectedCloseDate, months tháng gần nhất (cũ trước).
// Tháng không có deal vẫn có giá trị 0. Tháng tính theo múi giờ loc (nil = UTC).
func RevenueSeries(deals []crmmodels.CrmDeal, months int, now time.Time, loc *time.Location) reportdto.ChartSeries {
	if loc == nil {
		loc = time.UTC
	}
	if months < 0 {
		months = 0
	}

	local := now.In(loc)
	first := time.Date(local.Year(), local.Month()-time.Month(months-1), 1, 0, 0, 0, 0, loc)
	labels := make([]string, months)
	data := make([]crmmodels.Money, months)
	for i := 0; i < months; i++ {
		labels[i] = first.AddDate(0, i, 0).Format(reportdto.RevenueLabelLayout)
	}

	firstKey := monthKey(first)
	for _, d := range deals {
		if d.Stage != crmmodels.StageClosed || d.ExpectedCloseDate <= 0 {
			continue
		}
		i := monthKey(utility.FromUnixMilli(d.ExpectedCloseDate, loc)) - firstKey
		if i < 0 || i >= months {
			continue
		}
		data[i] = data[i].Add(d.Value)
	}

	return reportdto.ChartSeries{
		Labels: labels,
		Series: []reportdto.SeriesData{{Name: reportdto.RevenueSeriesName, Data: data}},
	}
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// StageDistribution đếm deal theo giai đoạn có trong dữ liệu, thứ tự theo lần xuất hiện đầu tiên.
// Giai đoạn rỗng được tính là Lead.
func StageDistribution(deals []crmmodels.CrmDeal) reportdto.StageDistribution {
	out := reportdto.StageDistribution{Labels: []string{}, Series: []int{}}
	index := map[crmmodels.Stage]int{}
	for _, d := range deals {
		stage := d.Stage
		if stage == "" {
			stage = crmmodels.StageLead
		}
		i, ok := index[stage]
		if !ok {
			i = len(out.Labels)
			index[stage] = i
			out.Labels = append(out.Labels, string(stage))
			out.Series = append(out.Series, 0)
		}
		out.Series[i]++
	}
	return out
}

// ActivityMetrics thống kê hoạt động trong [now - days ngày, now], cả hai đầu.
// Loại rỗng tính là "Other". days <= 0 trả về kết quả rỗng.
func ActivityMetrics(activities []crmmodels.CrmActivity, days int, now time.Time) reportdto.ActivityMetrics {
	out := reportdto.ActivityMetrics{ByType: map[string]int{}}
	if days <= 0 {
		return out
	}

	start := now.Add(-time.Duration(days) * day).UnixMilli()
	end := now.UnixMilli()
	for _, a := range activities {
		if a.ActivityDate <= 0 || a.ActivityDate < start || a.ActivityDate > end {
			continue
		}
		activityType := a.ActivityType
		if activityType == "" {
			activityType = crmmodels.ActivityTypeOther
		}
		out.ByType[activityType]++
		out.Total++
	}
	out.AveragePerDay = int(math.Round(float64(out.Total) / float64(days)))
	return out
}
