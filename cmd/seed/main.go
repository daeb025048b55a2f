package main

import (
	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示机构
	organizations := []models.Organization{
		{Name: "华东安全生产培训中心", ContactEmail: "contact@east-safety.example.com", Status: constants.OrganizationStatusActive},
		{Name: "西南矿业职业学院", ContactEmail: "office@sw-mining.example.com", Status: constants.OrganizationStatusActive},
	}
	for _, org := range organizations {
		var existing models.Organization
		if err := models.DB.Where("name = ?", org.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&org).Error; err != nil {
				stdLog.Printf("Failed to create organization %s: %v", org.Name, err)
			} else {
				stdLog.Printf("Created organization: %s", org.Name)
			}
		} else {
			stdLog.Printf("Organization already exists: %s", org.Name)
		}
	}

	orgIDs := map[string]uint{}
	var orgList []models.Organization
	if err := models.DB.Find(&orgList).Error; err != nil {
		stdLog.Printf("Failed to load organizations: %v", err)
	}
	for _, org := range orgList {
		orgIDs[org.Name] = org.ID
	}
	eastID := orgIDs["华东安全生产培训中心"]
	southwestID := orgIDs["西南矿业职业学院"]

	// 添加演示学员
	learners := []models.VirtualUser{
		{OrganizationID: eastID, UserCode: "e-1001", Email: "zhang.wei@example.com", DisplayName: "张伟", Status: constants.VirtualUserStatusActive},
		{OrganizationID: eastID, UserCode: "e-1002", Email: "li.na@example.com", DisplayName: "李娜", Status: constants.VirtualUserStatusActive},
		{OrganizationID: southwestID, UserCode: "sw-2001", Email: "wang.fang@example.com", DisplayName: "王芳", Status: constants.VirtualUserStatusActive},
	}
	for _, learner := range learners {
		if learner.OrganizationID == 0 {
			continue
		}
		var existing models.VirtualUser
		if err := models.DB.Where("organization_id = ? AND user_code = ?", learner.OrganizationID, learner.UserCode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&learner).Error; err != nil {
				stdLog.Printf("Failed to create learner %s: %v", learner.UserCode, err)
			} else {
				stdLog.Printf("Created learner: %s", learner.UserCode)
			}
		} else {
			stdLog.Printf("Learner already exists: %s", learner.UserCode)
		}
	}

	// 添加演示课程与模块
	courses := []models.Course{
		{
			Title:           "高空作业安全训练",
			Slug:            "work-at-height",
			Description:     "高空坠落风险识别与安全带使用规范的沉浸式训练",
			DurationMinutes: 45,
			PassingScore:    models.NewScoreFromDecimal(decimal.NewFromInt(80)),
			Status:          constants.CourseStatusPublished,
		},
		{
			Title:           "受限空间应急演练",
			Slug:            "confined-space",
			Description:     "受限空间气体检测、进入许可与应急撤离流程演练",
			DurationMinutes: 60,
			PassingScore:    models.NewScoreFromDecimal(decimal.NewFromInt(85)),
			Status:          constants.CourseStatusPublished,
		},
		{
			Title:           "消防疏散基础",
			Slug:            "fire-evacuation",
			Description:     "火场烟雾环境下的疏散路线选择与灭火器使用",
			DurationMinutes: 30,
			PassingScore:    models.NewScoreFromDecimal(decimal.NewFromInt(70)),
			Status:          constants.CourseStatusDraft,
		},
	}
	courseModules := map[string][]models.CourseModule{
		"work-at-height": {
			{Title: "风险识别", SceneKey: "wah_hazard_id", Sequence: 1, DurationMinutes: 15},
			{Title: "安全带穿戴", SceneKey: "wah_harness", Sequence: 2, DurationMinutes: 15},
			{Title: "高空实操", SceneKey: "wah_practice", Sequence: 3, DurationMinutes: 15},
		},
		"confined-space": {
			{Title: "气体检测", SceneKey: "cs_gas_check", Sequence: 1, DurationMinutes: 20},
			{Title: "进入许可", SceneKey: "cs_permit", Sequence: 2, DurationMinutes: 20},
			{Title: "应急撤离", SceneKey: "cs_escape", Sequence: 3, DurationMinutes: 20},
		},
		"fire-evacuation": {
			{Title: "疏散路线", SceneKey: "fe_route", Sequence: 1, DurationMinutes: 15},
			{Title: "灭火器使用", SceneKey: "fe_extinguisher", Sequence: 2, DurationMinutes: 15},
		},
	}
	for _, course := range courses {
		var existing models.Course
		if err := models.DB.Where("slug = ?", course.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&course).Error; err != nil {
				stdLog.Printf("Failed to create course %s: %v", course.Slug, err)
				continue
			}
			stdLog.Printf("Created course: %s", course.Slug)
			for _, module := range courseModules[course.Slug] {
				module.CourseID = course.ID
				if err := models.DB.Create(&module).Error; err != nil {
					stdLog.Printf("Failed to create module %s: %v", module.SceneKey, err)
				}
			}
		} else {
			stdLog.Printf("Course already exists: %s", course.Slug)
		}
	}

	// 添加演示设备
	devices := []models.Device{
		{SerialNo: "VR-EAST-0001", Name: "一号训练头显", Model: "Quest 3", FirmwareVersion: "v62.0", OrganizationID: &eastID, Status: constants.DeviceStatusActive},
		{SerialNo: "VR-EAST-0002", Name: "二号训练头显", Model: "Quest 3", FirmwareVersion: "v62.0", OrganizationID: &eastID, Status: constants.DeviceStatusActive},
		{SerialNo: "VR-SW-0001", Name: "矿业学院头显", Model: "Pico 4E", FirmwareVersion: "5.9.1", OrganizationID: &southwestID, Status: constants.DeviceStatusActive},
	}
	for _, device := range devices {
		if device.OrganizationID == nil || *device.OrganizationID == 0 {
			continue
		}
		var existing models.Device
		if err := models.DB.Where("serial_no = ?", device.SerialNo).First(&existing).Error; err != nil {
			if err := models.DB.Create(&device).Error; err != nil {
				stdLog.Printf("Failed to create device %s: %v", device.SerialNo, err)
			} else {
				stdLog.Printf("Created device: %s", device.SerialNo)
			}
		} else {
			stdLog.Printf("Device already exists: %s", device.SerialNo)
		}
	}

	// 给已发布课程分配学员
	var publishedCourses []models.Course
	if err := models.DB.Where("status = ?", constants.CourseStatusPublished).Find(&publishedCourses).Error; err != nil {
		stdLog.Printf("Failed to load published courses: %v", err)
	}
	var allLearners []models.VirtualUser
	if err := models.DB.Find(&allLearners).Error; err != nil {
		stdLog.Printf("Failed to load learners: %v", err)
	}
	for _, course := range publishedCourses {
		for _, learner := range allLearners {
			var existing models.Enrollment
			if err := models.DB.Where("virtual_user_id = ? AND course_id = ?", learner.ID, course.ID).First(&existing).Error; err == nil {
				continue
			}
			enrollment := models.Enrollment{
				VirtualUserID: learner.ID,
				CourseID:      course.ID,
				Status:        constants.EnrollmentStatusAssigned,
			}
			if err := models.DB.Create(&enrollment).Error; err != nil {
				stdLog.Printf("Failed to enroll learner %d in course %s: %v", learner.ID, course.Slug, err)
			} else {
				stdLog.Printf("Enrolled learner %d in course %s", learner.ID, course.Slug)
			}
		}
	}

	stdLog.Println("Seed data completed!")
}
