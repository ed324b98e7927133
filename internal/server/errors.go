package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/jonathan/predict-service/internal/types"
)

// ErrNoData indicates an absent or empty request body
type ErrNoData struct{}

func (e *ErrNoData) Error() string {
	return "No data provided"
}

// ErrInvalidFormat indicates a well-formed body that is not a JSON object
type ErrInvalidFormat struct{}

func (e *ErrInvalidFormat) Error() string {
	return "Invalid data format. Expected a dictionary with feature names as keys"
}

// ErrInvalidJSON indicates a body that is not valid JSON
type ErrInvalidJSON struct {
	Cause error
}

func (e *ErrInvalidJSON) Error() string {
	return fmt.Sprintf("Invalid JSON: %v", e.Cause)
}

func (e *ErrInvalidJSON) Unwrap() error {
	return e.Cause
}

// ErrBodyTooLarge indicates a body over the configured size limit
type ErrBodyTooLarge struct {
	Limit int64
}

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrNoData, *ErrInvalidFormat, *ErrInvalidJSON:
		return http.StatusBadRequest
	case *features.MissingFeaturesError, *features.InvalidValueError, *model.InputError:
		return http.StatusBadRequest
	case *types.LeadValidationError:
		return http.StatusUnprocessableEntity
	case *ErrBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case *inference.ScoringError:
		return http.StatusInternalServerError
	}

	// Wrapped gate errors are still client errors.
	var missingErr *features.MissingFeaturesError
	var invalidErr *features.InvalidValueError
	if errors.As(err, &missingErr) || errors.As(err, &invalidErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
