package routes

import (
	"net/http"
	"strings"
	"time"

	"socialhub/handlers"
	"socialhub/middleware"
	"socialhub/services"
	"socialhub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Accounts      *services.Accounts
	Relationships *services.Relationships
	Posts         *services.Posts
	Engagement    *services.Engagement
	Hub           *websocket.Manager
	Tokens        middleware.TokenVerifier
	Limiter       *middleware.IPRateLimiter
	CORSOrigins   []string
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.LoggerWithFormatter(middleware.LogFormatter))
	router.Use(gin.Recovery())

	router.Use(cors.New(corsConfig(d.CORSOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello World")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authH := &handlers.AuthHandler{Accounts: d.Accounts}
	userH := &handlers.UserHandler{Relationships: d.Relationships}
	postH := &handlers.PostHandler{Posts: d.Posts, Engagement: d.Engagement}

	api := router.Group("/api")

	// Public routes (no auth required)
	public := api.Group("")
	if d.Limiter != nil {
		public.Use(middleware.RateLimit(d.Limiter))
	}
	public.POST("/register", authH.Register)
	public.POST("/authenticate", authH.Authenticate)
	api.GET("/posts/:id", postH.Get)

	if d.Hub != nil {
		activityH := &handlers.ActivityHandler{Hub: d.Hub}
		api.GET("/ws", middleware.RequireToken(d.Tokens, middleware.WithQueryToken("token")), activityH.Connect)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireToken(d.Tokens))

	protected.GET("/user", userH.Profile)
	protected.POST("/follow/:id", userH.Follow)
	protected.POST("/unfollow/:id", userH.Unfollow)

	protected.POST("/posts", postH.Create)
	protected.DELETE("/posts/:id", postH.Delete)
	protected.GET("/all_posts", postH.ListMine)

	protected.POST("/like/:id", postH.Like)
	protected.POST("/unlike/:id", postH.Unlike)
	protected.POST("/comment/:id", postH.Comment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.TokenHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.TokenHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
