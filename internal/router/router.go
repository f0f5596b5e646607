package router

import (
	"net/http"

	"Synergy_Link/internal/handler"
	"Synergy_Link/internal/middleware"
	"Synergy_Link/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	User      *handler.UserHandler
	Swipe     *handler.SwipeHandler
	Match     *handler.MatchHandler
	Community *handler.CommunityHandler
}

func InitRouter(h Handlers, signer *pkg.TokenSigner, gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"msg": "ok"}) })
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(signer))

	// account and profile
	userGroup := api.Group("/users")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.GET("/me", h.User.Me)
		userGroup.PUT("/me/profile", h.User.UpdateProfile)
		userGroup.POST("/me/business-card", h.User.UploadBusinessCard)
		userGroup.PUT("/me/device-token", h.User.SetDeviceToken)
		userGroup.GET("/:id", h.User.Get)
	}

	// discovery and swipes
	api.GET("/discover", h.User.Discover)
	api.POST("/swipes", h.Swipe.Swipe)

	// matches and chat
	matchGroup := api.Group("/matches")
	{
		matchGroup.GET("", h.Match.List)
		matchGroup.GET("/:id", h.Match.Get)
		matchGroup.GET("/:id/messages", h.Match.Messages)
		matchGroup.POST("/:id/messages", h.Match.Send)
		matchGroup.GET("/:id/stream", h.Match.Stream)
	}

	// communities
	communityGroup := api.Group("/communities")
	{
		communityGroup.POST("", h.Community.Create)
		communityGroup.GET("", h.Community.List)
		communityGroup.GET("/:id", h.Community.Get)
		communityGroup.POST("/:id/join", h.Community.Join)
		communityGroup.POST("/:id/leave", h.Community.Leave)
		communityGroup.POST("/:id/support", h.Community.Support)
	}

	return r
}
