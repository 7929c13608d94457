package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/config"
	"github.com/ikkim/sipit-backend/internal/app/controller"
	"github.com/ikkim/sipit-backend/internal/middleware"
	"github.com/ikkim/sipit-backend/internal/websocket"
)

// Controllers groups the HTTP handlers mounted under /api/v1
type Controllers struct {
	Cafe         *controller.CafeController
	Review       *controller.ReviewController
	User         *controller.UserController
	Menu         *controller.MenuController
	Notification *controller.NotificationController
	Feed         *controller.FeedController
	Preferences  *controller.PreferencesController
	Collection   *controller.CollectionController
	Upload       *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	wsHandler      *websocket.Handler
	metrics        http.Handler
	health         func() error
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
	metrics http.Handler,
	health func() error,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		wsHandler:      wsHandler,
		metrics:        metrics,
		health:         health,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	if r.config.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", r.healthCheck)
	if r.config.Metrics.Enabled && r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics))
	}
	if r.wsHandler != nil {
		router.GET("/ws", r.authMiddleware.Authenticate(), r.wsHandler.ServeWS)
	}

	auth := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()
	ctrl := r.controllers

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", r.authMiddleware.RequireIdentity(), ctrl.User.Register)

		users := v1.Group("/users")
		{
			users.GET("/me", auth, ctrl.User.GetMe)
			users.PUT("/me", auth, ctrl.User.UpdateMe)
			users.POST("/follow/:id", auth, ctrl.User.Follow)
			users.DELETE("/unfollow/:id", auth, ctrl.User.Unfollow)
			users.GET("/:id", optional, ctrl.User.GetProfile)
			users.GET("/:id/followers", ctrl.User.Followers)
			users.GET("/:id/following", ctrl.User.Following)
			users.GET("/:id/reviews", ctrl.Review.ListForUser)
			users.GET("/:id/photos", ctrl.Review.UserPhotos)
		}

		prefs := v1.Group("/preferences", auth)
		{
			prefs.GET("", ctrl.Preferences.Get)
			prefs.PUT("/mood", ctrl.Preferences.UpdateMood)
			prefs.PUT("/radius", ctrl.Preferences.UpdateRadius)
			prefs.PUT("/notifications", ctrl.Preferences.UpdateNotifications)
			prefs.GET("/should-show-mood-prompt", ctrl.Preferences.MoodPrompt)
		}

		cafes := v1.Group("/cafes")
		{
			cafes.GET("/nearby", ctrl.Cafe.Nearby)
			cafes.GET("/search", ctrl.Cafe.Search)
			cafes.POST("/sync/:placeId", auth, ctrl.Cafe.Sync)
			cafes.GET("/details/:placeId", optional, ctrl.Cafe.Details)
			cafes.GET("/:id", ctrl.Cafe.GetByID)
			cafes.POST("/:id/follow", auth, ctrl.Cafe.Follow)
			cafes.DELETE("/:id/follow", auth, ctrl.Cafe.Unfollow)
			cafes.GET("/:id/photos", ctrl.Cafe.Photos)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", auth, ctrl.Review.Create)
			reviews.GET("/cafe/:cafeId", ctrl.Review.ListForCafe)
			reviews.GET("/:id", ctrl.Review.Get)
			reviews.PUT("/:id", auth, ctrl.Review.Update)
			reviews.DELETE("/:id", auth, ctrl.Review.Delete)
		}

		feed := v1.Group("/feed")
		{
			feed.GET("", auth, ctrl.Feed.Following)
			feed.GET("/discover", ctrl.Feed.Discover)
		}

		search := v1.Group("/search")
		{
			search.GET("/cafes", ctrl.Cafe.SearchByName)
			search.GET("/users", auth, ctrl.User.Search)
		}

		menu := v1.Group("/menu")
		{
			menu.GET("/users/:userId", auth, ctrl.Menu.ListForUser)
			menu.GET("/export", auth, ctrl.Menu.Export)
			menu.POST("", auth, ctrl.Menu.Create)
			menu.PUT("/:itemId", auth, ctrl.Menu.Update)
			menu.DELETE("/:itemId", auth, ctrl.Menu.Delete)
		}

		notifications := v1.Group("/notifications", auth)
		{
			notifications.GET("", ctrl.Notification.List)
			notifications.GET("/unread-count", ctrl.Notification.UnreadCount)
			notifications.PUT("/read-all", ctrl.Notification.MarkAllRead)
			notifications.PUT("/:id/read", ctrl.Notification.MarkRead)
			notifications.DELETE("/:id", ctrl.Notification.Delete)
		}

		saved := v1.Group("/saved-cafes", auth)
		{
			saved.GET("", ctrl.Collection.ListSaved)
			saved.POST("/:placeId", ctrl.Collection.Save)
			saved.DELETE("/:placeId", ctrl.Collection.Unsave)
			saved.GET("/:placeId/status", ctrl.Collection.SavedStatus)
		}

		visited := v1.Group("/visited-cafes", auth)
		{
			visited.GET("", ctrl.Collection.ListVisited)
			visited.POST("/:placeId", ctrl.Collection.MarkVisited)
			visited.DELETE("/:placeId", ctrl.Collection.UnmarkVisited)
			visited.GET("/:placeId/status", ctrl.Collection.VisitedStatus)
		}

		v1.POST("/upload/presigned-url", auth, ctrl.Upload.GeneratePresignedURL)
	}

	return router
}

func (r *Router) healthCheck(c *gin.Context) {
	if r.health != nil {
		if err := r.health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"message":   "Sip-It API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
