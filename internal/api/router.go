package api

import (
	"time"

	"gokundoluk/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the report routes
func NewRouter(h *ReportHandler, logger *internal.Logger) *gin.Engine {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.GET("/classes", h.ListClasses)
	api.POST("/reports", h.CreateReport)
	api.GET("/reports/:name", h.DownloadReport)

	return r
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
