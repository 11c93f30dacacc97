package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	JobHandler    *JobHandler
	VoiceHandler  *VoiceHandler
	StatusHandler *StatusHandler
}

// NewRouter builds the thin ingestion/status surface: job creation,
// lookup, cancellation, and voice-reference registration. Everything
// domain-specific lives in C1–C6; this is only the front door.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/jobs", cfg.JobHandler.CreateJob)
		api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		api.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
		api.POST("/voice-references", cfg.VoiceHandler.Create)
		api.GET("/status", cfg.StatusHandler.Status)
	}

	return router
}
