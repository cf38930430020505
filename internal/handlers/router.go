package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
)

type HandlerManager struct {
	screeningHandler *ScreeningHandler
	reportHandler    *ReportHandler
}

func NewHandlerManager(
	screeningService services.ScreeningService,
	reportService services.ReportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		screeningHandler: NewScreeningHandler(screeningService, validator, logger),
		reportHandler:    NewReportHandler(reportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.screeningHandler.StartSession)
			sessions.GET("/:id", hm.screeningHandler.GetSession)
			sessions.GET("/:id/questions", hm.screeningHandler.GetQuestions)
			sessions.GET("/:id/scores", hm.screeningHandler.GetScores)
			sessions.POST("/:id/predict", hm.screeningHandler.Predict)
			sessions.GET("/:id/report", hm.reportHandler.ExportReport)

			sections := sessions.Group("/:id/sections")
			{
				sections.POST("/vocabulary", hm.screeningHandler.SubmitVocabulary)
				sections.POST("/memory", hm.screeningHandler.SubmitMemory)
				sections.POST("/audio-recall", hm.screeningHandler.SubmitAudioRecall)
				sections.POST("/visual", hm.screeningHandler.SubmitVisual)
				sections.POST("/audio-discrimination", hm.screeningHandler.SubmitAudioDiscrimination)
				sections.POST("/survey", hm.screeningHandler.SubmitSurvey)
			}
		}
	}
}
