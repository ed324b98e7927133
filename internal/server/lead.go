package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/jonathan/predict-service/internal/server/middleware"
	"github.com/jonathan/predict-service/internal/types"
	"go.uber.org/zap"
)

// LeadAPI serves lead conversion probabilities.
type LeadAPI struct {
	vectorizer *model.DictVectorizer
	predictor  *inference.Predictor
	logger     *zap.Logger
}

// NewLeadAPI creates the lead API.
func NewLeadAPI(vectorizer *model.DictVectorizer, predictor *inference.Predictor, logger *zap.Logger) *LeadAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadAPI{vectorizer: vectorizer, predictor: predictor, logger: logger}
}

// Name implements API.
func (a *LeadAPI) Name() string {
	return "lead"
}

// Register implements API.
func (a *LeadAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("POST /predict/{$}", a.handlePredict)
}

func (a *LeadAPI) handleRoot(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(a.logger, w, http.StatusOK, types.AliveResponse{Message: "I'm alive"})
}

// handlePredict responds with the conversion probability as a bare number rounded to four
// decimal places.
func (a *LeadAPI) handlePredict(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.With(zap.String("request_id", middleware.GetRequestID(r.Context())))

	body, err := readBody(r)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	req, err := types.DecodeLeadRequest(body)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	row, err := a.vectorizer.Transform(req.Record())
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	proba, err := a.predictor.Probability(row)
	if err != nil {
		a.fail(logger, w, err)
		return
	}

	logger.Info("prediction",
		zap.String("lead_source", *req.LeadSource),
		zap.String("probability", formatProbability(proba)),
	)
	jsonResponse(a.logger, w, http.StatusOK, roundProbability(proba))
}

func (a *LeadAPI) fail(logger *zap.Logger, w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var leadErr *types.LeadValidationError
	if errors.As(err, &leadErr) {
		logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
		jsonResponse(a.logger, w, status, types.ValidationErrorResponse{Detail: leadErr.Details})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("prediction failed", zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	jsonResponse(a.logger, w, status, map[string]string{"detail": err.Error()})
}

// roundProbability rounds p to four decimal places.
func roundProbability(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}

// formatProbability renders p with four decimals for log lines.
func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}
