package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumns = []string{
	"annual_income",
	"lead_source=events",
	"lead_source=organic_search",
	"number_of_courses_viewed",
}

func newLeadServer(t *testing.T, clf inference.Classifier) *Server {
	t.Helper()
	vec, err := model.NewDictVectorizer(leadColumns)
	require.NoError(t, err)
	predictor, err := inference.NewPredictor(clf, 0.5)
	require.NoError(t, err)

	return New(Config{Port: 8000, MaxBodyBytes: 1 << 20}, NewLeadAPI(vec, predictor, nil), nil)
}

func TestLeadRoot(t *testing.T) {
	s := newLeadServer(t, &fakeModel{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"I'm alive"}`, w.Body.String())
}

func TestLeadUnknownPath(t *testing.T) {
	s := newLeadServer(t, &fakeModel{})

	req := httptest.NewRequest(http.MethodGet, "/nothing", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadPredict(t *testing.T) {
	clf := &fakeModel{proba: 0.533349}
	s := newLeadServer(t, clf)

	w := postJSON(t, s.Handler(), "/predict/", `{"lead_source":"organic_search","number_of_courses_viewed":4,"annual_income":80304.0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "0.5333", strings.TrimSpace(w.Body.String()))
	require.Len(t, clf.rows, 1)
	assert.Equal(t, []float64{80304, 0, 1, 4}, clf.rows[0])
}

func TestLeadPredict_UnknownSource(t *testing.T) {
	clf := &fakeModel{proba: 0.25}
	s := newLeadServer(t, clf)

	w := postJSON(t, s.Handler(), "/predict/", `{"lead_source":"billboard","number_of_courses_viewed":0,"annual_income":100}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "0.25", strings.TrimSpace(w.Body.String()))
	assert.Equal(t, []float64{100, 0, 0, 0}, clf.rows[0])
}

func TestLeadPredict_LargeCountKeepsMagnitude(t *testing.T) {
	clf := &fakeModel{proba: 0.9}
	s := newLeadServer(t, clf)

	w := postJSON(t, s.Handler(), "/predict/", `{"lead_source":"events","number_of_courses_viewed":9999999999999999999,"annual_income":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, clf.rows, 1)
	assert.Equal(t, []float64{1, 1, 0, 1e19}, clf.rows[0])
}

func TestLeadPredict_ValidationErrors(t *testing.T) {
	s := newLeadServer(t, &fakeModel{proba: 0.5})

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "missing field",
			body:     `{"lead_source":"events","number_of_courses_viewed":2}`,
			expected: `{"detail":[{"type":"missing","loc":["body","annual_income"],"msg":"Field required","input":{"lead_source":"events","number_of_courses_viewed":2}}]}`,
		},
		{
			name:     "wrong type",
			body:     `{"lead_source":"events","number_of_courses_viewed":"two","annual_income":1}`,
			expected: `{"detail":[{"type":"int_parsing","loc":["body","number_of_courses_viewed"],"msg":"Input should be a valid integer, unable to parse string as an integer","input":"two"}]}`,
		},
		{
			name:     "invalid json",
			body:     `{"lead_source":`,
			expected: `{"detail":[{"type":"json_invalid","loc":["body",0],"msg":"JSON decode error"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, s.Handler(), "/predict/", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}

func TestLeadPredict_ScoringFailure(t *testing.T) {
	s := newLeadServer(t, &fakeModel{proba: 2})

	w := postJSON(t, s.Handler(), "/predict/", `{"lead_source":"events","number_of_courses_viewed":1,"annual_income":1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "outside [0, 1]")
}

func TestRoundProbability(t *testing.T) {
	assert.Equal(t, 0.5333, roundProbability(0.53334))
	assert.Equal(t, 0.5334, roundProbability(0.53336))
	assert.Equal(t, 1.0, roundProbability(0.99999))
	assert.Equal(t, 0.0, roundProbability(0.00001))
	assert.Equal(t, "0.1235", formatProbability(0.123456))
}
