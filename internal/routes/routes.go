package routes

import (
	"github.com/campuslink/campuslink-backend/internal/handler"
	"github.com/campuslink/campuslink-backend/internal/middleware"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/campuslink/campuslink-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	channelHandler *handler.ChannelHandler,
	messageHandler *handler.MessageHandler,
	scheduledHandler *handler.ScheduledHandler,
	uploadHandler *handler.UploadHandler,
	adminHandler *handler.AdminHandler,
	jwtManager *jwt.Manager,
	identity service.IdentityService,
) {
	// Every route under /api/v1 requires a verified token and a roster identity.
	api := router.Group("/api/v1",
		middleware.JWTAuth(jwtManager),
		middleware.ResolveActor(identity),
	)

	channels := api.Group("/channels")
	{
		channels.GET("", channelHandler.List)
		channels.GET("/club/:club_id", channelHandler.ByClub)
		channels.POST("", channelHandler.Create)
		channels.DELETE("/:id", channelHandler.Deactivate)

		channels.GET("/:id/settings", channelHandler.GetSettings)
		channels.PUT("/:id/settings", channelHandler.PutSettings)

		channels.GET("/:id/messages", messageHandler.List)
		channels.POST("/:id/messages", messageHandler.Post)

		channels.POST("/:id/attachments", uploadHandler.Upload)

		channels.GET("/:id/scheduled", scheduledHandler.List)
		channels.POST("/:id/scheduled", scheduledHandler.Create)
	}

	messages := api.Group("/messages")
	{
		messages.PUT("/:id", messageHandler.Edit)
		messages.PUT("/:id/poll", messageHandler.EditPoll)
		messages.PUT("/:id/hide", messageHandler.Moderate)
		messages.DELETE("/:id", messageHandler.Delete)
		messages.POST("/:id/vote", messageHandler.Vote)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/sweeps/dispatch", adminHandler.DispatchSweep)
		admin.POST("/sweeps/retention", adminHandler.RetentionSweep)
	}
}
