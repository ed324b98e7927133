package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	proba float64
	err   error
	rows  [][]float64
}

func (s *stubClassifier) PredictProba(row []float64) (float64, error) {
	s.rows = append(s.rows, row)
	return s.proba, s.err
}

func TestNewPredictor_Validation(t *testing.T) {
	_, err := NewPredictor(nil, 0.5)
	assert.Error(t, err)

	for _, threshold := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := NewPredictor(&stubClassifier{}, threshold)
		assert.Error(t, err, "threshold %v", threshold)
	}

	p, err := NewPredictor(&stubClassifier{}, 0.28)
	require.NoError(t, err)
	assert.Equal(t, 0.28, p.Threshold())
}

func TestPredict_Threshold(t *testing.T) {
	tests := []struct {
		name       string
		proba      float64
		prediction int
	}{
		{"below", 0.2799, 0},
		{"equal is positive", 0.28, 1},
		{"above", 0.9, 1},
		{"zero", 0, 0},
		{"one", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPredictor(&stubClassifier{proba: tt.proba}, 0.28)
			require.NoError(t, err)

			res, err := p.Predict([]float64{1, 2})
			require.NoError(t, err)
			assert.Equal(t, tt.prediction, res.Prediction)
			assert.Equal(t, tt.prediction == 1, res.Bankrupt)
			assert.Equal(t, tt.proba, res.Probability)
			assert.Equal(t, 0.28, res.Threshold)
		})
	}
}

func TestPredict_PassesRowThrough(t *testing.T) {
	stub := &stubClassifier{proba: 0.4}
	p, err := NewPredictor(stub, 0.5)
	require.NoError(t, err)

	_, err = p.Predict([]float64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, stub.rows, 1)
	assert.Equal(t, []float64{3, 1, 2}, stub.rows[0])
}

func TestPredict_Deterministic(t *testing.T) {
	p, err := NewPredictor(&stubClassifier{proba: 0.61}, 0.6)
	require.NoError(t, err)

	first, err := p.Predict([]float64{1})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		res, err := p.Predict([]float64{1})
		require.NoError(t, err)
		assert.Equal(t, first, res)
	}
}

func TestPredict_ScoringErrors(t *testing.T) {
	cause := errors.New("booster exploded")
	p, err := NewPredictor(&stubClassifier{err: cause}, 0.5)
	require.NoError(t, err)

	_, err = p.Predict([]float64{1})
	var scoringErr *ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "booster exploded", err.Error())

	for _, bad := range []float64{math.NaN(), -0.1, 1.5} {
		p, err := NewPredictor(&stubClassifier{proba: bad}, 0.5)
		require.NoError(t, err)
		_, err = p.Predict([]float64{1})
		assert.ErrorAs(t, err, &scoringErr, "probability %v", bad)
	}
}
