package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/gradebook/internal/app/controllers"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	transcriptController *controllers.TranscriptController,
	reportController *controllers.ReportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.APIResponse{
			Success:   true,
			Message:   "ok",
			Timestamp: time.Now(),
		})
	})

	// --- Public read routes ---
	v1.GET("/records", transcriptController.GetRecords)
	v1.GET("/records/:id", transcriptController.GetRecord)
	v1.GET("/subjects", transcriptController.GetSubjects)
	v1.GET("/terms", reportController.GetTerms)
	v1.GET("/reports", reportController.GetReport)

	// --- Owner-only routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.TokenAuth())
	{
		authenticated.POST("/records", transcriptController.CreateRecord)
		authenticated.PUT("/records/:id", transcriptController.EditRecord)
		authenticated.PATCH("/records", transcriptController.EditSubject)
		authenticated.POST("/transcript/save", transcriptController.SaveTranscript)
	}
}
