package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/eventsphere/internal/app/controllers"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	chatController *controllers.ChatController,
	presenceController *controllers.PresenceController,
	deleteRequestController *controllers.DeleteRequestController,
	uploadController *controllers.UploadController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok", "time": time.Now().UTC()}, ""))
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// --- Routes readable without a session ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/events", eventController.ListEvents)
		public.GET("/events/:id", eventController.GetEvent)
		public.GET("/chat/status", presenceController.GetStatus(models.PresenceChat))
		public.GET("/store/status", presenceController.GetStatus(models.PresenceStore))
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	admin := authenticated.Group("")
	admin.Use(authMiddleware.AdminRequired())

	users := authenticated.Group("/users")
	{
		users.GET("/me", userController.GetProfile)
		users.PUT("/me", userController.UpdateProfile)
		users.GET("/me/stats", userController.GetStats)
		users.POST("/delete-request", deleteRequestController.Submit)
		users.GET("/:id", userController.GetUser)
		users.GET("/:id/events", userController.GetUserEvents)
	}
	{
		admin.GET("/users", userController.ListUsers)
		admin.GET("/users/delete-request", deleteRequestController.List)
		admin.PATCH("/users/delete-request/:id", deleteRequestController.Resolve)
		admin.PATCH("/users/:id", userController.ChangeRole)
		admin.PUT("/chat/status", presenceController.SetStatus(models.PresenceChat))
		admin.PUT("/store/status", presenceController.SetStatus(models.PresenceStore))
	}

	events := authenticated.Group("/events")
	{
		events.POST("", eventController.CreateEvent)
		events.PATCH("/:id", eventController.ReviewEvent)
		events.PUT("/:id", eventController.UpdateEvent)
		events.DELETE("/:id", eventController.DeleteEvent)
		events.POST("/:id/rsvp", eventController.SubmitRSVP)
	}

	chat := authenticated.Group("/chat")
	{
		chat.GET("", chatController.ListChats)
		chat.POST("", chatController.StartChat)
		chat.GET("/unread", chatController.CountUnread)
		chat.PUT("/messages/read", chatController.MarkRead)
		chat.GET("/:id", chatController.GetChat)
		chat.DELETE("/:id", chatController.CloseChat)
		chat.POST("/:id/message", chatController.PostMessage)
		chat.PUT("/:id/message", chatController.MarkAllRead)
		chat.POST("/:id/reopen", chatController.ReopenChat)
	}

	authenticated.POST("/upload", uploadController.Upload)
}
