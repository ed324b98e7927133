package model

import "fmt"

// BundleError represents a model bundle that could not be read, parsed or validated.
type BundleError struct {
	Path    string
	Message string
	Cause   error
}

func (e *BundleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid model bundle %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid model bundle %s: %s", e.Path, e.Message)
}

func (e *BundleError) Unwrap() error {
	return e.Cause
}

// InputError represents a row or record the model cannot score.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("model input error: %s", e.Message)
}
