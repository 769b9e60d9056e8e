package router

import (
	adminhandlers "github.com/modboard-next/internal/http/handlers/admin"
	"github.com/modboard-next/internal/http/response"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(c *provider.Container) *gin.Engine {
	cfg := c.Config
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/health", func(c *gin.Context) {
				response.Success(c, gin.H{"status": "ok"})
			})
		}

		admins := apiV1.Group("/admins")
		{
			// 注册与登录不要求已有会话
			admins.POST("", adminHandler.RegisterAdmin)
			admins.POST("/login", adminHandler.AdminLogin)

			authed := admins.Group("")
			authed.Use(JWTAuthMiddleware(c.AuthService, c.AdminService))
			{
				authed.GET("", adminHandler.GetAdmins)
				// 静态段先于参数段注册，避免被 :id 吞掉
				authed.GET("/users", adminHandler.GetUsers)
				authed.GET("/courses/enrollments", adminHandler.GetEnrollments)
				authed.PATCH("/users/:uuid/lock-status", adminHandler.UpdateUserLockStatus)
				authed.PATCH("/courses/:courseId/enrollments/:uuid", adminHandler.UpdateEnrollmentRole)

				authed.GET("/rules", adminHandler.GetRules)
				authed.POST("/rules", adminHandler.CreateRule)
				authed.POST("/rules/notify", adminHandler.NotifyRules)
				authed.GET("/rules/:id", adminHandler.GetRule)
				authed.PATCH("/rules/:id", adminHandler.UpdateRule)
				authed.GET("/rules/:id/audit", adminHandler.GetRuleAuditLog)

				authed.GET("/:id", adminHandler.GetAdmin)
				authed.DELETE("/:id", adminHandler.DeleteAdmin)
			}
		}
	}

	return r
}
