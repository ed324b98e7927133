package model

import (
	"fmt"
	"math"
)

// LogisticRegression is a fitted binary logistic regression.
type LogisticRegression struct {
	Intercept    float64
	Coefficients []float64
}

// Width returns the number of input columns.
func (m *LogisticRegression) Width() int {
	return len(m.Coefficients)
}

// PredictProba returns p(y=1) for a single row.
func (m *LogisticRegression) PredictProba(row []float64) (float64, error) {
	if len(row) != len(m.Coefficients) {
		return 0, &InputError{Message: fmt.Sprintf("expected %d features, got %d", len(m.Coefficients), len(row))}
	}

	z := m.Intercept
	for j, v := range row {
		if math.IsNaN(v) {
			return 0, &InputError{Message: fmt.Sprintf("feature %d is NaN", j)}
		}
		z += m.Coefficients[j] * v
	}
	return sigmoid(z), nil
}

// sigmoid is split on the sign of z so exp never overflows.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
