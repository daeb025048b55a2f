package provider

import (
	"github.com/vrlab-next/internal/authz"
	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/queue"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo           repository.AdminRepository
	OrganizationRepo    repository.OrganizationRepository
	VirtualUserRepo     repository.VirtualUserRepository
	OtpCodeRepo         repository.OtpCodeRepository
	CourseRepo          repository.CourseRepository
	CourseModuleRepo    repository.CourseModuleRepository
	EnrollmentRepo      repository.EnrollmentRepository
	TrainingSessionRepo repository.TrainingSessionRepository
	DeviceRepo          repository.DeviceRepository
	AlertRepo           repository.AlertRepository
	LoginLogRepo        repository.LoginLogRepository
	DashboardRepo       repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	LearnerAuthService  *service.LearnerAuthService
	OtpService          *service.OtpService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	OrganizationService *service.OrganizationService
	VirtualUserService  *service.VirtualUserService
	CourseService       *service.CourseService
	EnrollmentService   *service.EnrollmentService
	TelemetryService    *service.TelemetryService
	DeviceService       *service.DeviceService
	AlertService        *service.AlertService
	LoginLogService     *service.LoginLogService
	DashboardService    *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.OrganizationRepo = repository.NewOrganizationRepository(db)
	c.VirtualUserRepo = repository.NewVirtualUserRepository(db)
	c.OtpCodeRepo = repository.NewOtpCodeRepository(db)
	c.CourseRepo = repository.NewCourseRepository(db)
	c.CourseModuleRepo = repository.NewCourseModuleRepository(db)
	c.EnrollmentRepo = repository.NewEnrollmentRepository(db)
	c.TrainingSessionRepo = repository.NewTrainingSessionRepository(db)
	c.DeviceRepo = repository.NewDeviceRepository(db)
	c.AlertRepo = repository.NewAlertRepository(db)
	c.LoginLogRepo = repository.NewLoginLogRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.OtpService = service.NewOtpService(c.Config, c.OtpCodeRepo)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.OtpService, c.EmailService, c.AuthzService)
	c.LearnerAuthService = service.NewLearnerAuthService(c.Config, c.VirtualUserRepo, c.OtpService, c.EmailService)
	c.OrganizationService = service.NewOrganizationService(c.OrganizationRepo, c.VirtualUserRepo, c.DeviceRepo)
	c.VirtualUserService = service.NewVirtualUserService(c.VirtualUserRepo, c.OrganizationRepo)
	c.CourseService = service.NewCourseService(c.CourseRepo, c.CourseModuleRepo, c.EnrollmentRepo)
	c.EnrollmentService = service.NewEnrollmentService(c.EnrollmentRepo, c.VirtualUserRepo, c.CourseRepo)
	c.AlertService = service.NewAlertService(c.AlertRepo, c.QueueClient)
	c.TelemetryService = service.NewTelemetryService(c.TrainingSessionRepo, c.EnrollmentRepo, c.CourseModuleRepo, c.DeviceRepo, c.QueueClient)
	c.DeviceService = service.NewDeviceService(c.DeviceRepo, c.OrganizationRepo)
	c.LoginLogService = service.NewLoginLogService(c.LoginLogRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
