package repository

import (
	"fmt"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetSessionTrends(startAt, endAt time.Time) ([]DashboardSessionTrendRow, error)
	GetTopCourses(startAt, endAt time.Time, limit int) ([]DashboardCourseRankingRow, error)
	GetDeviceStats() (DashboardDeviceStatsRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	LearnersTotal        int64
	NewLearners          int64
	PublishedCourses     int64
	SessionsTotal        int64
	SessionsPassed       int64
	EnrollmentsTotal     int64
	EnrollmentsCompleted int64
	OpenAlerts           int64
	AvgScore             float64
}

// DashboardSessionTrendRow 会话趋势统计
type DashboardSessionTrendRow struct {
	Day            string
	SessionsTotal  int64
	SessionsPassed int64
}

// DashboardCourseRankingRow 课程排行原始行
type DashboardCourseRankingRow struct {
	CourseID      uint
	Title         string
	SessionsTotal int64
	PassedTotal   int64
	AvgScore      float64
}

// DashboardDeviceStatsRow 设备统计
type DashboardDeviceStatsRow struct {
	DevicesTotal   int64
	DevicesActive  int64
	DevicesOffline int64
	DevicesRetired int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func sessionBase(db *gorm.DB, startAt, endAt time.Time) *gorm.DB {
	return db.Model(&models.TrainingSession{}).
		Where("started_at >= ? AND started_at < ?", startAt, endAt)
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.VirtualUser{}).
		Where("status = ?", constants.VirtualUserStatusActive).
		Count(&result.LearnersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.VirtualUser{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewLearners).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Course{}).
		Where("status = ?", constants.CourseStatusPublished).
		Count(&result.PublishedCourses).Error; err != nil {
		return result, err
	}

	if err := sessionBase(r.db, startAt, endAt).Count(&result.SessionsTotal).Error; err != nil {
		return result, err
	}
	if err := sessionBase(r.db, startAt, endAt).
		Where("passed = ?", true).
		Count(&result.SessionsPassed).Error; err != nil {
		return result, err
	}
	if err := sessionBase(r.db, startAt, endAt).
		Select("COALESCE(AVG(CAST(score AS REAL)), 0)").
		Scan(&result.AvgScore).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Enrollment{}).Count(&result.EnrollmentsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Enrollment{}).
		Where("status = ?", constants.EnrollmentStatusCompleted).
		Count(&result.EnrollmentsCompleted).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Alert{}).
		Where("status = ?", constants.AlertStatusOpen).
		Count(&result.OpenAlerts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetSessionTrends 获取会话趋势
func (r *GormDashboardRepository) GetSessionTrends(startAt, endAt time.Time) ([]DashboardSessionTrendRow, error) {
	type totalRow struct {
		Day   string
		Total int64
	}
	type passedRow struct {
		Day    string
		Passed int64
	}

	dayExpr := "CAST(date(started_at) AS TEXT)"

	var totals []totalRow
	if err := sessionBase(r.db, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var passeds []passedRow
	if err := sessionBase(r.db, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as passed", dayExpr)).
		Where("passed = ?", true).
		Group(dayExpr).
		Order("day asc").
		Scan(&passeds).Error; err != nil {
		return nil, err
	}

	passedMap := make(map[string]int64, len(passeds))
	for _, item := range passeds {
		passedMap[item.Day] = item.Passed
	}

	result := make([]DashboardSessionTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardSessionTrendRow{
			Day:            item.Day,
			SessionsTotal:  item.Total,
			SessionsPassed: passedMap[item.Day],
		})
	}
	return result, nil
}

// GetTopCourses 获取课程训练排行榜
func (r *GormDashboardRepository) GetTopCourses(startAt, endAt time.Time, limit int) ([]DashboardCourseRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardCourseRankingRow, 0)
	if err := r.db.Model(&models.TrainingSession{}).
		Select(`
			training_sessions.course_id as course_id,
			COALESCE(courses.title, '') as title,
			COUNT(*) as sessions_total,
			SUM(CASE WHEN training_sessions.passed THEN 1 ELSE 0 END) as passed_total,
			COALESCE(AVG(CAST(training_sessions.score AS REAL)), 0) as avg_score
		`).
		Joins("LEFT JOIN courses ON courses.id = training_sessions.course_id").
		Where("training_sessions.started_at >= ? AND training_sessions.started_at < ?", startAt, endAt).
		Group("training_sessions.course_id, courses.title").
		Order("sessions_total DESC, passed_total DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetDeviceStats 获取设备状态统计
func (r *GormDashboardRepository) GetDeviceStats() (DashboardDeviceStatsRow, error) {
	result := DashboardDeviceStatsRow{}

	if err := r.db.Model(&models.Device{}).Count(&result.DevicesTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Device{}).
		Where("status = ?", constants.DeviceStatusActive).
		Count(&result.DevicesActive).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Device{}).
		Where("status = ?", constants.DeviceStatusOffline).
		Count(&result.DevicesOffline).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Device{}).
		Where("status = ?", constants.DeviceStatusRetired).
		Count(&result.DevicesRetired).Error; err != nil {
		return result, err
	}

	return result, nil
}
