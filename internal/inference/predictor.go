// Package inference turns a schema-ordered feature row into a thresholded prediction.
package inference

import (
	"fmt"
	"math"
)

// Classifier scores one row with the probability of the positive class.
type Classifier interface {
	PredictProba(row []float64) (float64, error)
}

// Result is the outcome of one prediction.
type Result struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
	Bankrupt    bool    `json:"bankrupt"`
}

// ScoringError wraps any failure of the underlying classifier.
type ScoringError struct {
	Cause error
}

func (e *ScoringError) Error() string {
	return e.Cause.Error()
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}

// Predictor applies a fixed decision threshold to a classifier. It holds no mutable state and
// is safe for concurrent use as long as the classifier is.
type Predictor struct {
	model     Classifier
	threshold float64
}

// NewPredictor creates a Predictor. The threshold must lie in [0, 1].
func NewPredictor(model Classifier, threshold float64) (*Predictor, error) {
	if model == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}
	return &Predictor{model: model, threshold: threshold}, nil
}

// Threshold returns the decision threshold.
func (p *Predictor) Threshold() float64 {
	return p.threshold
}

// Probability returns the class-1 probability for row without thresholding.
func (p *Predictor) Probability(row []float64) (float64, error) {
	proba, err := p.model.PredictProba(row)
	if err != nil {
		return 0, &ScoringError{Cause: err}
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return 0, &ScoringError{Cause: fmt.Errorf("classifier returned probability %v outside [0, 1]", proba)}
	}
	return proba, nil
}

// Predict scores row and labels it positive when the probability reaches the threshold.
func (p *Predictor) Predict(row []float64) (Result, error) {
	proba, err := p.Probability(row)
	if err != nil {
		return Result{}, err
	}

	prediction := 0
	if proba >= p.threshold {
		prediction = 1
	}
	return Result{
		Prediction:  prediction,
		Probability: proba,
		Threshold:   p.threshold,
		Bankrupt:    prediction == 1,
	}, nil
}
