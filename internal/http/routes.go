package http

import (
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/sonymous/internal/ws"
)

// Per-route throttle budgets, requests per minute per IP.
const (
	browseLimit = 60
	createLimit = 10
	likeLimit   = 30
	loginLimit  = 5
)

// previewOriginPattern admits Vercel preview deployments of the frontend in
// addition to the configured origin.
var previewOriginPattern = regexp.MustCompile(`^https://sonymous-frontend.*\.vercel\.app$`)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, corsOrigin string) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origin == corsOrigin || previewOriginPattern.MatchString(origin)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	browseLimiter := PerMinute(browseLimit)
	createLimiter := PerMinute(createLimit)
	likeLimiter := PerMinute(likeLimit)
	loginLimiter := PerMinute(loginLimit)
	for _, rl := range []*IPRateLimiter{browseLimiter, createLimiter, likeLimiter, loginLimiter} {
		rl.StartCleanup(10 * time.Minute)
	}

	api := router.Group("/api")
	{
		api.GET("/messages", RateLimitMiddleware(browseLimiter), env.GetMessages)
		api.POST("/messages", RateLimitMiddleware(createLimiter), env.CreateMessage)
		api.POST("/messages/:id/like", RateLimitMiddleware(likeLimiter), env.LikeMessage)
		api.GET("/announcements", env.GetAnnouncements)

		admin := api.Group("/admin")
		admin.POST("/login", RateLimitMiddleware(loginLimiter), env.AdminLogin)

		authed := admin.Group("", env.AdminAuthMiddleware())
		{
			authed.GET("/messages", env.AdminGetMessages)
			authed.DELETE("/messages/:id", env.AdminDestroyMessage)
			authed.POST("/announcements", env.CreateAnnouncement)
			authed.PUT("/announcements/:id", env.UpdateAnnouncement)
			authed.DELETE("/announcements/:id", env.DeleteAnnouncement)
		}
	}

	if env.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			ws.ServeWs(env.Hub, c.Writer, c.Request)
		})
	}
}
