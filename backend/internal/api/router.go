// Package api exposes subject listing and analyses over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tgosint/backend/internal/app"
)

// NewRouter builds the gin engine serving the analysis API
func NewRouter(a *app.App, log *zap.Logger) *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors())

	h := &handler{app: a, logger: log}

	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		api.GET("/subjects", h.listSubjects)

		subject := api.Group("/subjects/:name")
		subject.Use(h.resolveSubject)
		{
			subject.GET("/profile", h.profile)
			subject.POST("/mentions", h.mentions)
			subject.POST("/replies", h.replies)
			subject.POST("/activity", h.activity)
			subject.POST("/analyze", h.analyze)
		}
	}

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
