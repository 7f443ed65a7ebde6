package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

type HandlerConfig struct {
	// ExposeErrors adds internal error text to 500 responses.
	ExposeErrors bool

	// Per client IP limit on login and registration.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

type HandlerManager struct {
	authHandler     *AuthHandler
	jobHandler      *JobHandler
	referralHandler *ReferralHandler
	chatHandler     *ChatHandler
	adminHandler    *AdminHandler
	authMiddleware  *AuthMiddleware

	serviceManager services.ServiceManager
	limiter        cache.Limiter
	config         HandlerConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *security.JWTProvider,
	limiter cache.Limiter,
	logger utils.Logger,
	config HandlerConfig,
) *HandlerManager {
	expose := config.ExposeErrors
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), serviceManager.OTP(), logger, expose),
		jobHandler:      NewJobHandler(serviceManager.Job(), logger, expose),
		referralHandler: NewReferralHandler(serviceManager.Referral(), logger, expose),
		chatHandler:     NewChatHandler(serviceManager.Chat(), logger, expose),
		adminHandler:    NewAdminHandler(serviceManager.Admin(), logger, expose),
		authMiddleware:  NewAuthMiddleware(tokens),
		serviceManager:  serviceManager,
		limiter:         limiter,
		config:          config,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.RequireAuth()
	managers := hm.authMiddleware.RequireRoles(models.RoleEmployee, models.RoleAdmin)
	adminOnly := hm.authMiddleware.RequireRoles(models.RoleAdmin)
	authLimit := func(scope string) gin.HandlerFunc {
		return RateLimitMiddleware(hm.limiter, scope, hm.config.AuthRateLimit, hm.config.AuthRateWindow)
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimit("register"), hm.authHandler.Register)
			auth.POST("/login", authLimit("login"), hm.authHandler.Login)
			auth.GET("/me", requireAuth, hm.authHandler.Me)
		}

		otp := api.Group("/otp")
		{
			otp.POST("/send", hm.authHandler.SendOTP)
			otp.POST("/verify", hm.authHandler.VerifyOTP)
		}

		// Job board reads are public
		jobs := api.Group("/jobs")
		{
			jobs.GET("", hm.jobHandler.ListJobs)
			jobs.GET("/mine", requireAuth, managers, hm.jobHandler.ListMyJobs)
			jobs.GET("/:id", hm.jobHandler.GetJob)
			jobs.POST("", requireAuth, managers, hm.jobHandler.CreateJob)
			jobs.PATCH("/:id/approve", requireAuth, adminOnly, hm.jobHandler.ApproveJob)
		}

		referrals := api.Group("/referrals")
		referrals.Use(requireAuth)
		{
			referrals.POST("", managers, hm.referralHandler.CreateReferral)
			referrals.POST("/apply", hm.authMiddleware.RequireRoles(models.RoleFresher), hm.referralHandler.Apply)
			referrals.GET("/me", hm.referralHandler.ListMine)
			referrals.GET("/applications", managers, hm.referralHandler.ListApplications)
			referrals.GET("/jobs/unapproved", adminOnly, hm.jobHandler.ListUnapprovedJobs)
			referrals.GET("/employee/jobs", managers, hm.referralHandler.ListForEmployeeJobs)
			referrals.GET("/:id", hm.referralHandler.GetReferral)
			referrals.PATCH("/:id/status", hm.referralHandler.UpdateStatus)
		}

		chat := api.Group("/chat")
		chat.Use(requireAuth)
		{
			chat.POST("/send", hm.chatHandler.SendMessage)
			chat.GET("", hm.chatHandler.GetMyMessages)
			chat.GET("/logs/all", adminOnly, hm.chatHandler.GetAllMessages)
			chat.GET("/:userId", hm.chatHandler.GetConversation)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, adminOnly)
		{
			admin.GET("/logs", hm.adminHandler.GetLogs)
			admin.GET("/logs/export", hm.adminHandler.ExportLogs)
		}
	}

	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "referral-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "referral-service",
	})
}
