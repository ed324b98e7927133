// Package types provides the request and response bodies shared by the prediction services.
package types

// HealthResponse is returned by the bankruptcy service health check.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// AliveResponse is returned by the lead service root endpoint.
type AliveResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every bankruptcy service error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MissingFeaturesResponse reports schema features absent from a request.
type MissingFeaturesResponse struct {
	Error           string   `json:"error"`
	MissingFeatures []string `json:"missing_features"`
}
