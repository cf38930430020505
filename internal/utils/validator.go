package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAP-F-2025/screening-service/internal/errors"
	"github.com/SAP-F-2025/screening-service/internal/models"
)

// Validator wraps go-playground/validator with the custom tags the request
// structs use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Report json tag names instead of struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("survey_response", validateSurveyResponse)
	_ = v.RegisterValidation("quiz_section", validateQuizSection)

	return &Validator{validate: v}
}

// Validate checks a request struct and converts field errors into the
// shared ValidationErrors type.
func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func validateSurveyResponse(fl validator.FieldLevel) bool {
	return models.SurveyResponse(fl.Field().String()).Valid()
}

func validateQuizSection(fl validator.FieldLevel) bool {
	return models.QuizSection(fl.Field().String()).Valid()
}
