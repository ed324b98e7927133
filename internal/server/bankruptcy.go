package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/server/middleware"
	"github.com/jonathan/predict-service/internal/types"
	"go.uber.org/zap"
)

// BankruptcyAPI serves bankruptcy predictions for a fixed feature schema.
type BankruptcyAPI struct {
	gate      *features.Gate
	predictor *inference.Predictor
	logger    *zap.Logger
}

// NewBankruptcyAPI creates the bankruptcy API. The gate and predictor are shared read-only by
// all requests.
func NewBankruptcyAPI(gate *features.Gate, predictor *inference.Predictor, logger *zap.Logger) *BankruptcyAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankruptcyAPI{gate: gate, predictor: predictor, logger: logger}
}

// Name implements API.
func (a *BankruptcyAPI) Name() string {
	return "bankruptcy"
}

// Register implements API.
func (a *BankruptcyAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /predict", a.handlePredict)
}

// handleHealth reports liveness. The model is loaded before the server starts, so a running
// service always has one.
func (a *BankruptcyAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(a.logger, w, http.StatusOK, types.HealthResponse{
		Status:      "healthy",
		ModelLoaded: a.predictor != nil,
	})
}

// handlePredict validates the request against the schema and scores it.
func (a *BankruptcyAPI) handlePredict(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.With(zap.String("request_id", middleware.GetRequestID(r.Context())))

	body, err := readBody(r)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	fields, err := DecodeFields(body)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	checked, err := a.gate.Check(fields)
	if err != nil {
		a.fail(logger, w, err)
		return
	}
	if len(checked.Extras) > 0 || len(checked.Dropped) > 0 {
		logger.Debug("ignored request fields",
			zap.Strings("extras", checked.Extras),
			zap.Strings("dropped", checked.Dropped),
		)
	}

	result, err := a.predictor.Predict(checked.Vector)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	logger.Info("prediction",
		zap.Int("prediction", result.Prediction),
		zap.String("probability", formatProbability(result.Probability)),
		zap.Float64("threshold", result.Threshold),
	)
	jsonResponse(a.logger, w, http.StatusOK, result)
}

// fail writes err with the status HTTPStatus assigns to it.
func (a *BankruptcyAPI) fail(logger *zap.Logger, w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var missingErr *features.MissingFeaturesError
	if errors.As(err, &missingErr) {
		logger.Warn("request rejected", zap.Int("status", status), zap.Int("missing", len(missingErr.Missing)))
		jsonResponse(a.logger, w, status, types.MissingFeaturesResponse{
			Error:           missingErr.Error(),
			MissingFeatures: missingErr.Missing,
		})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("prediction failed", zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	errorResponse(a.logger, w, status, err.Error())
}
