package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/repository"
)

const (
	dashboardCacheTTL  = 45 * time.Second
	dashboardTrendDays = 7
	dashboardTopLimit  = 5
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心训练数据。
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	From        string                `json:"from"`
	To          string                `json:"to"`
	KPI         DashboardKPI          `json:"kpi"`
	Trend       []DashboardTrendItem  `json:"trend"`
	TopCourses  []DashboardCourseItem `json:"top_courses"`
	DeviceStats DashboardDeviceStats  `json:"device_stats"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	LearnersTotal        int64  `json:"learners_total"`
	NewLearners          int64  `json:"new_learners"`
	PublishedCourses     int64  `json:"published_courses"`
	SessionsTotal        int64  `json:"sessions_total"`
	SessionsPassed       int64  `json:"sessions_passed"`
	PassRate             string `json:"pass_rate"`
	EnrollmentsTotal     int64  `json:"enrollments_total"`
	EnrollmentsCompleted int64  `json:"enrollments_completed"`
	CompletionRate       string `json:"completion_rate"`
	OpenAlerts           int64  `json:"open_alerts"`
	AvgScore             string `json:"avg_score"`
}

// DashboardTrendItem 单日会话趋势
type DashboardTrendItem struct {
	Day            string `json:"day"`
	SessionsTotal  int64  `json:"sessions_total"`
	SessionsPassed int64  `json:"sessions_passed"`
}

// DashboardCourseItem 课程排行项
type DashboardCourseItem struct {
	CourseID      uint   `json:"course_id"`
	Title         string `json:"title"`
	SessionsTotal int64  `json:"sessions_total"`
	PassedTotal   int64  `json:"passed_total"`
	AvgScore      string `json:"avg_score"`
}

// DashboardDeviceStats 设备统计
type DashboardDeviceStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Offline int64 `json:"offline"`
	Retired int64 `json:"retired"`
}

// GetOverview 获取近 7 天总览
func (s *DashboardService) GetOverview(ctx context.Context) (*DashboardOverviewResponse, error) {
	endAt := time.Now()
	startAt := endAt.AddDate(0, 0, -dashboardTrendDays)

	cacheKey := "dashboard:overview"
	if cache.Enabled() {
		var cached DashboardOverviewResponse
		if found, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}
	trendRows, err := s.repo.GetSessionTrends(startAt, endAt)
	if err != nil {
		return nil, err
	}
	topRows, err := s.repo.GetTopCourses(startAt, endAt, dashboardTopLimit)
	if err != nil {
		return nil, err
	}
	deviceRow, err := s.repo.GetDeviceStats()
	if err != nil {
		return nil, err
	}

	resp := &DashboardOverviewResponse{
		From: startAt.Format("2006-01-02"),
		To:   endAt.Format("2006-01-02"),
		KPI: DashboardKPI{
			LearnersTotal:        overview.LearnersTotal,
			NewLearners:          overview.NewLearners,
			PublishedCourses:     overview.PublishedCourses,
			SessionsTotal:        overview.SessionsTotal,
			SessionsPassed:       overview.SessionsPassed,
			PassRate:             formatRate(overview.SessionsPassed, overview.SessionsTotal),
			EnrollmentsTotal:     overview.EnrollmentsTotal,
			EnrollmentsCompleted: overview.EnrollmentsCompleted,
			CompletionRate:       formatRate(overview.EnrollmentsCompleted, overview.EnrollmentsTotal),
			OpenAlerts:           overview.OpenAlerts,
			AvgScore:             fmt.Sprintf("%.2f", overview.AvgScore),
		},
		Trend:      make([]DashboardTrendItem, 0, len(trendRows)),
		TopCourses: make([]DashboardCourseItem, 0, len(topRows)),
		DeviceStats: DashboardDeviceStats{
			Total:   deviceRow.DevicesTotal,
			Active:  deviceRow.DevicesActive,
			Offline: deviceRow.DevicesOffline,
			Retired: deviceRow.DevicesRetired,
		},
	}
	for _, row := range trendRows {
		resp.Trend = append(resp.Trend, DashboardTrendItem{
			Day:            row.Day,
			SessionsTotal:  row.SessionsTotal,
			SessionsPassed: row.SessionsPassed,
		})
	}
	for _, row := range topRows {
		resp.TopCourses = append(resp.TopCourses, DashboardCourseItem{
			CourseID:      row.CourseID,
			Title:         row.Title,
			SessionsTotal: row.SessionsTotal,
			PassedTotal:   row.PassedTotal,
			AvgScore:      fmt.Sprintf("%.2f", row.AvgScore),
		})
	}

	if cache.Enabled() {
		_ = cache.SetJSON(ctx, cacheKey, resp, dashboardCacheTTL)
	}
	return resp, nil
}

func formatRate(part, total int64) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}
