package repository

import "time"

// CourseListFilter 查询课程列表的过滤条件
type CourseListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	OnlyPublished bool
	WithModules   bool
}

// VirtualUserListFilter 查询虚拟学员列表的过滤条件
type VirtualUserListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	Keyword        string
	Status         string
}

// EnrollmentListFilter 查询选课记录列表的过滤条件
type EnrollmentListFilter struct {
	Page          int
	PageSize      int
	VirtualUserID uint
	CourseID      uint
	Status        string
}

// TrainingSessionListFilter 查询训练会话列表的过滤条件
type TrainingSessionListFilter struct {
	Page          int
	PageSize      int
	VirtualUserID uint
	CourseID      uint
	ModuleID      uint
	DeviceID      uint
	PassedOnly    bool
	FailedOnly    bool
	StartedFrom   *time.Time
	StartedTo     *time.Time
}

// DeviceListFilter 查询设备列表的过滤条件
type DeviceListFilter struct {
	Page           int
	PageSize       int
	OrganizationID uint
	Keyword        string
	Status         string
}

// AlertListFilter 查询告警列表的过滤条件
type AlertListFilter struct {
	Page        int
	PageSize    int
	Type        string
	Severity    string
	Status      string
	DeviceID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LoginLogListFilter 查询登录日志列表的过滤条件
type LoginLogListFilter struct {
	Page        int
	PageSize    int
	Subject     string
	SubjectID   uint
	Email       string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrganizationListFilter 查询机构列表的过滤条件
type OrganizationListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}
