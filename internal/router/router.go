package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vrlab-next/internal/authz"
	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/config"
	adminhandlers "github.com/vrlab-next/internal/http/handlers/admin"
	portalhandlers "github.com/vrlab-next/internal/http/handlers/portal"
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按学员端/管理端分组）
	portalHandler := portalhandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vl"
	}
	redisClient := cache.Client()
	learnerLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:learner_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	otpSendRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:otp_send", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 学员端接口
		portal := apiV1.Group("/portal")
		{
			portal.GET("/captcha/image", portalHandler.GetCaptcha)
			portal.POST("/auth/request-code", RateLimitMiddleware(redisClient, otpSendRule, KeyByIPAndJSONField("user_code")), portalHandler.RequestLoginCode)
			portal.POST("/auth/verify", RateLimitMiddleware(redisClient, learnerLoginRule, KeyByIPAndJSONField("email")), portalHandler.VerifyLogin)

			// 设备侧上报（按序列号识别，不走学员 JWT）
			portal.POST("/devices/heartbeat", portalHandler.Heartbeat)

			// 学员接口（需鉴权）
			learner := portal.Group("")
			learner.Use(LearnerJWTAuthMiddleware(cfg.LearnerJWT.SecretKey, c.VirtualUserRepo))
			{
				learner.GET("/me", portalHandler.Me)
				learner.GET("/courses", portalHandler.ListMyCourses)
				learner.GET("/courses/:id", portalHandler.GetMyCourse)
				learner.GET("/sessions", portalHandler.ListMySessions)
				learner.GET("/sessions/:id", portalHandler.GetMySession)
				learner.POST("/sessions", portalHandler.SubmitSession)
			}
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 认证接口（无需鉴权）
			admin.GET("/captcha/image", adminHandler.GetCaptcha)
			admin.POST("/auth/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("email")), adminHandler.Login)
			admin.POST("/auth/verify-login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("email")), adminHandler.VerifyLogin)
			admin.POST("/auth/register", adminHandler.Register)
			admin.POST("/auth/confirm-signup", adminHandler.ConfirmSignup)
			admin.POST("/auth/forgot-password", RateLimitMiddleware(redisClient, otpSendRule, KeyByIPAndJSONField("email")), adminHandler.ForgotPassword)
			admin.POST("/auth/reset-password", adminHandler.ResetPassword)

			// 需要鉴权的接口
			authorized := admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.Me)
				authorized.PUT("/password", adminHandler.ChangePassword)

				// 仪表盘
				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)

				// 机构管理
				authorized.GET("/organizations", adminHandler.ListOrganizations)
				authorized.GET("/organizations/:id", adminHandler.GetOrganization)
				authorized.POST("/organizations", adminHandler.CreateOrganization)
				authorized.PUT("/organizations/:id", adminHandler.UpdateOrganization)
				authorized.DELETE("/organizations/:id", adminHandler.DeleteOrganization)

				// 学员管理
				authorized.GET("/virtual-users", adminHandler.ListVirtualUsers)
				authorized.GET("/virtual-users/:id", adminHandler.GetVirtualUser)
				authorized.POST("/virtual-users", adminHandler.CreateVirtualUser)
				authorized.PUT("/virtual-users/:id", adminHandler.UpdateVirtualUser)
				authorized.DELETE("/virtual-users/:id", adminHandler.DeleteVirtualUser)

				// 课程与模块管理
				authorized.GET("/courses", adminHandler.ListCourses)
				authorized.GET("/courses/:id", adminHandler.GetCourse)
				authorized.POST("/courses", adminHandler.CreateCourse)
				authorized.PUT("/courses/:id", adminHandler.UpdateCourse)
				authorized.DELETE("/courses/:id", adminHandler.DeleteCourse)
				authorized.GET("/courses/:id/modules", adminHandler.ListCourseModules)
				authorized.POST("/courses/:id/modules", adminHandler.CreateCourseModule)
				authorized.PUT("/courses/:id/modules/resequence", adminHandler.ResequenceCourseModules)
				authorized.PUT("/course-modules/:id", adminHandler.UpdateCourseModule)
				authorized.DELETE("/course-modules/:id", adminHandler.DeleteCourseModule)

				// 学习分配
				authorized.GET("/enrollments", adminHandler.ListEnrollments)
				authorized.GET("/enrollments/:id", adminHandler.GetEnrollment)
				authorized.POST("/enrollments", adminHandler.AssignCourse)
				authorized.DELETE("/enrollments/:id", adminHandler.RevokeEnrollment)

				// 设备管理
				authorized.GET("/devices", adminHandler.ListDevices)
				authorized.GET("/devices/:id", adminHandler.GetDevice)
				authorized.POST("/devices", adminHandler.CreateDevice)
				authorized.PUT("/devices/:id", adminHandler.UpdateDevice)
				authorized.DELETE("/devices/:id", adminHandler.DeleteDevice)

				// 告警管理
				authorized.GET("/alerts", adminHandler.ListAlerts)
				authorized.GET("/alerts/:id", adminHandler.GetAlert)
				authorized.POST("/alerts/:id/acknowledge", adminHandler.AcknowledgeAlert)
				authorized.POST("/alerts/:id/resolve", adminHandler.ResolveAlert)

				// 训练会话与登录日志
				authorized.GET("/training-sessions", adminHandler.ListTrainingSessions)
				authorized.GET("/training-sessions/:id", adminHandler.GetTrainingSession)
				authorized.GET("/login-logs", adminHandler.ListLoginLogs)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
				authorized.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if strings.HasPrefix(item.Path, "/api/v1/admin/auth/") || item.Path == "/api/v1/admin/captcha/image" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
