package http

import (
	"desksync/internal/config"
	"desksync/internal/handlers"
	"desksync/internal/logging"
	"desksync/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg config.Config, log *logging.Logger, h *handlers.SyncHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/sync/v1")
	v1.Use(middleware.Auth(cfg))
	{
		v1.GET("/data", h.Fetch)
		v1.POST("/data", h.Push)
	}
	return r
}
