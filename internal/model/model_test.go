package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(v float64) TreeNode {
	return TreeNode{Leaf: &v}
}

func intPtr(i int) *int {
	return &i
}

func TestLogisticRegression_PredictProba(t *testing.T) {
	m := &LogisticRegression{Intercept: -1, Coefficients: []float64{2, 0.5}}

	p, err := m.PredictProba([]float64{0.5, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = m.PredictProba([]float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), p, 1e-12)
}

func TestLogisticRegression_Errors(t *testing.T) {
	m := &LogisticRegression{Coefficients: []float64{1, 1}}

	_, err := m.PredictProba([]float64{1})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, err.Error(), "expected 2 features, got 1")

	_, err = m.PredictProba([]float64{1, math.NaN()})
	require.ErrorAs(t, err, &inputErr)
}

func TestSigmoid_Extremes(t *testing.T) {
	assert.Equal(t, 1.0, sigmoid(1000))
	assert.Equal(t, 0.0, sigmoid(-1000))
	assert.InDelta(t, 0.5, sigmoid(0), 1e-15)
	assert.InDelta(t, 0.3, sigmoid(logit(0.3)), 1e-12)
}

func TestTreeEnsemble_PredictProba(t *testing.T) {
	// row[0] < 0.5 -> -1, else -> +1; NaN goes right via missing
	tree := Tree{Nodes: []TreeNode{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 2, Missing: intPtr(2)},
		leaf(-1),
		leaf(1),
	}}
	m := &TreeEnsemble{BaseScore: 0.5, NumFeatures: 2, Trees: []Tree{tree, tree}}

	p, err := m.PredictProba([]float64{0.1, 0})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-2), p, 1e-12)

	p, err = m.PredictProba([]float64{0.5, 0})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(2), p, 1e-12, "threshold value routes right")

	p, err = m.PredictProba([]float64{math.NaN(), 0})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(2), p, 1e-12)

	_, err = m.PredictProba([]float64{0.1})
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestTreeEnsemble_MissingDefaultsLeft(t *testing.T) {
	tree := Tree{Nodes: []TreeNode{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
		leaf(-1),
		leaf(1),
	}}
	m := &TreeEnsemble{BaseScore: 0.2, NumFeatures: 1, Trees: []Tree{tree}}

	p, err := m.PredictProba([]float64{math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(logit(0.2)-1), p, 1e-12)
}

func TestTree_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tree    Tree
		message string
	}{
		{"empty", Tree{}, "no nodes"},
		{"feature out of range", Tree{Nodes: []TreeNode{{Feature: 3, Left: 1, Right: 2}, leaf(0), leaf(1)}}, "out of range"},
		{"backward child", Tree{Nodes: []TreeNode{leaf(0), {Feature: 0, Left: 0, Right: 2}, leaf(1)}}, "must point forward"},
		{"child past end", Tree{Nodes: []TreeNode{{Feature: 0, Left: 1, Right: 5}, leaf(0)}}, "must point forward"},
		{"missing past end", Tree{Nodes: []TreeNode{{Feature: 0, Left: 1, Right: 2, Missing: intPtr(9)}, leaf(0), leaf(1)}}, "must point forward"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tree.validate(2)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	single := Tree{Nodes: []TreeNode{leaf(0.3)}}
	assert.NoError(t, single.validate(1))
}

func TestDictVectorizer_Transform(t *testing.T) {
	v, err := NewDictVectorizer([]string{
		"annual_income",
		"lead_source=events",
		"lead_source=paid_ads",
		"number_of_courses_viewed",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Width())

	row, err := v.Transform(map[string]any{
		"lead_source":              "paid_ads",
		"number_of_courses_viewed": 2,
		"annual_income":            79276.0,
		"unused":                   "x",
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{79276, 0, 1, 2}, row)

	row, err = v.Transform(map[string]any{"lead_source": "billboard"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, row, "unseen categories are ignored")
}

func TestDictVectorizer_Errors(t *testing.T) {
	_, err := NewDictVectorizer(nil)
	assert.Error(t, err)

	_, err = NewDictVectorizer([]string{"a", "a"})
	assert.Error(t, err)

	v, err := NewDictVectorizer([]string{"a"})
	require.NoError(t, err)

	_, err = v.Transform(map[string]any{"a": []int{1}})
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = v.Transform(map[string]any{"a": math.Inf(1)})
	assert.ErrorAs(t, err, &inputErr)

	names := v.FeatureNames()
	names[0] = "b"
	assert.Equal(t, []string{"a"}, v.FeatureNames())
}
