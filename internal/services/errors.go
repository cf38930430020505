package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/screening-service/internal/errors"
	"github.com/SAP-F-2025/screening-service/internal/predictor"
	"github.com/SAP-F-2025/screening-service/internal/session"
)

// ===== SERVICE ERRORS =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Session specific errors
	ErrSessionNotFound      = errors.New("screening session not found")
	ErrSessionTimeUp        = errors.New("session time limit reached - submissions are locked")
	ErrSessionCompleted     = errors.New("screening session already completed")
	ErrSectionAlreadyScored = errors.New("section already submitted for this session")
	ErrUnknownSection       = errors.New("unknown quiz section")

	// Prediction specific errors
	ErrPredictionUnavailable = errors.New("prediction unavailable - no classifier model loaded")
	ErrNoScoresRecorded      = errors.New("no sections submitted yet - nothing to report")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, session.ErrNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrUnknownSection) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSectionAlreadyScored) ||
		errors.Is(err, ErrSessionCompleted)
}

// IsTimeUp checks if error means the session clock ran out
func IsTimeUp(err error) bool {
	return errors.Is(err, ErrSessionTimeUp)
}

// IsModelUnavailable checks if error means the classifier cannot serve
func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrPredictionUnavailable) ||
		errors.Is(err, predictor.ErrModelUnavailable)
}
