package rest

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())
	router.Use(h.metricsMiddleware())
	router.Use(h.corsMiddleware())

	router.GET("/metrics", metricsHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.PUT("/me", h.updateCurrentUser)
			users.PUT("/me/password", h.updatePassword)
			users.DELETE("/me", h.deleteCurrentUser)
		}

		pages := api.Group("/pages")
		{
			pages.GET("/:id", h.getPageByID)
			pages.GET("/handle/:handle", h.getPageByHandle)
			pages.GET("/:id/services", h.getPageServices)
			pages.GET("/:id/free-slots", h.getFreeSlots)
			pages.GET("/:id/calendar-grid", h.getCalendarGrid)
			pages.GET("/:id/working-days", h.getWorkingDays)
			pages.GET("/:id/promotions", h.getPagePromotions)
			pages.GET("/:id/promotions/best", h.getBestPromotion)

			auth := pages.Group("/", h.authMiddleware())
			{
				auth.GET("/me", h.getMyPage)
				auth.POST("/", h.creatorMiddleware(), h.createPage)
				auth.PUT("/:id", h.creatorMiddleware(), h.updatePage)
				auth.POST("/:id/photo", h.creatorMiddleware(), h.uploadPagePhoto)
				auth.DELETE("/:id", h.creatorMiddleware(), h.deletePage)
			}
		}

		services := api.Group("/services")
		{
			services.GET("/:id", h.getServiceByID)

			auth := services.Group("/", h.authMiddleware(), h.creatorMiddleware())
			{
				auth.POST("/", h.createService)
				auth.PUT("/:id", h.updateService)
				auth.DELETE("/:id", h.deleteService)
			}
		}

		workingDays := api.Group("/working-days")
		workingDays.Use(h.authMiddleware(), h.creatorMiddleware())
		{
			workingDays.POST("/", h.createWorkingDay)
			workingDays.GET("/:id", h.getWorkingDayByID)
			workingDays.PUT("/:id", h.updateWorkingDay)
			workingDays.DELETE("/:id", h.deleteWorkingDay)
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.POST("/", h.createAppointment)
			appointments.POST("/quick", h.creatorMiddleware(), h.quickBook)
			appointments.POST("/check-placement", h.creatorMiddleware(), h.checkPlacement)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id/status", h.transitionAppointment)
			appointments.PUT("/:id/times", h.creatorMiddleware(), h.rescheduleAppointment)
		}

		policy := api.Group("/cancellation-policy")
		policy.Use(h.authMiddleware(), h.creatorMiddleware())
		{
			policy.GET("/", h.getMyPolicy)
			policy.PUT("/", h.updatePolicy)
			policy.GET("/blocks", h.getBlockedClients)
			policy.POST("/blocks", h.blockClient)
			policy.DELETE("/blocks/:id", h.unblockClient)
		}

		promotions := api.Group("/promotions")
		{
			promotions.GET("/:id", h.getPromotionByID)

			auth := promotions.Group("/", h.authMiddleware(), h.creatorMiddleware())
			{
				auth.POST("/", h.createPromotion)
				auth.DELETE("/:id", h.deactivatePromotion)
			}
		}
	}
}
