package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
)

type ScreeningHandler struct {
	BaseHandler
	screeningService services.ScreeningService
	validator        *utils.Validator
}

func NewScreeningHandler(
	screeningService services.ScreeningService,
	validator *utils.Validator,
	logger utils.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		BaseHandler:      NewBaseHandler(logger),
		screeningService: screeningService,
		validator:        validator,
	}
}

// StartSession creates a new screening session
// @Summary Start screening session
// @Description Creates a new screening session with sampled questions
// @Tags sessions
// @Produce json
// @Success 201 {object} services.SessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions [post]
func (h *ScreeningHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting screening session")

	resp, err := h.screeningService.StartSession(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetSession returns the state of a screening session
// @Summary Get screening session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *ScreeningHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	resp, err := h.screeningService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuestions returns the question material for a session
// @Summary Get session questions
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.QuestionsResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/questions [get]
func (h *ScreeningHandler) GetQuestions(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	resp, err := h.screeningService.GetQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitVocabulary submits the vocabulary section
// @Summary Submit vocabulary answers
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.VocabularySubmissionRequest true "Answers"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/vocabulary [post]
func (h *ScreeningHandler) SubmitVocabulary(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.VocabularySubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting vocabulary section", "session_id", id)

	result, err := h.screeningService.SubmitVocabulary(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitMemory submits the digit-sequence memory section
// @Summary Submit memory sequence
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.MemorySubmissionRequest true "Sequence"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/memory [post]
func (h *ScreeningHandler) SubmitMemory(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.MemorySubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting memory section", "session_id", id)

	result, err := h.screeningService.SubmitMemory(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAudioRecall submits the word-list recall section
// @Summary Submit audio recall words
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.AudioRecallSubmissionRequest true "Recalled words"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/audio-recall [post]
func (h *ScreeningHandler) SubmitAudioRecall(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.AudioRecallSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting audio recall section", "session_id", id)

	result, err := h.screeningService.SubmitAudioRecall(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitVisual submits the visual discrimination section
// @Summary Submit visual discrimination answers
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.VisualSubmissionRequest true "Visual answers"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/visual [post]
func (h *ScreeningHandler) SubmitVisual(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.VisualSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting visual section", "session_id", id)

	result, err := h.screeningService.SubmitVisual(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAudioDiscrimination submits the listening section
// @Summary Submit audio discrimination answers
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.AudioDiscriminationSubmissionRequest true "Listening answers"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/audio-discrimination [post]
func (h *ScreeningHandler) SubmitAudioDiscrimination(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.AudioDiscriminationSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting audio discrimination section", "session_id", id)

	result, err := h.screeningService.SubmitAudioDiscrimination(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitSurvey submits the self-report survey section
// @Summary Submit survey responses
// @Tags sections
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param submission body services.SurveySubmissionRequest true "Survey responses"
// @Success 200 {object} services.SectionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/sections/survey [post]
func (h *ScreeningHandler) SubmitSurvey(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SurveySubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting survey section", "session_id", id)

	result, err := h.screeningService.SubmitSurvey(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScores returns all recorded scores and the derived feature vector
// @Summary Get session scores
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.ScoresResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/scores [get]
func (h *ScreeningHandler) GetScores(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	resp, err := h.screeningService.GetScores(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Predict runs the risk classifier on the session's feature vector
// @Summary Predict dyslexia risk
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.PredictionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions/{id}/predict [post]
func (h *ScreeningHandler) Predict(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Predicting risk", "session_id", id)

	resp, err := h.screeningService.Predict(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ScreeningHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (h *ScreeningHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Screening session not found",
		})
	case services.IsTimeUp(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session time limit reached - submissions are locked",
			Code:    "time_up",
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.IsModelUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Prediction is unavailable - no classifier model loaded",
			Code:    "model_unavailable",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
