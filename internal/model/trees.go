package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// TreeNode is one node of a regression tree in a flat node list.
// Split nodes route a row left when row[Feature] < Threshold, right otherwise, and to Missing
// when the value is NaN. Leaf nodes carry a margin contribution.
type TreeNode struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      int      `json:"left"`
	Right     int      `json:"right"`
	Missing   *int     `json:"missing,omitempty"`
	Leaf      *float64 `json:"leaf,omitempty"`
}

// IsLeaf reports whether the node is a leaf.
func (n TreeNode) IsLeaf() bool {
	return n.Leaf != nil
}

// MarshalJSON writes a leaf as {"leaf": v} and a split without the leaf field.
func (n TreeNode) MarshalJSON() ([]byte, error) {
	if n.Leaf != nil {
		return json.Marshal(struct {
			Leaf float64 `json:"leaf"`
		}{Leaf: *n.Leaf})
	}
	return json.Marshal(struct {
		Feature   int     `json:"feature"`
		Threshold float64 `json:"threshold"`
		Left      int     `json:"left"`
		Right     int     `json:"right"`
		Missing   *int    `json:"missing,omitempty"`
	}{
		Feature:   n.Feature,
		Threshold: n.Threshold,
		Left:      n.Left,
		Right:     n.Right,
		Missing:   n.Missing,
	})
}

// Tree is a regression tree whose root is node 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeEnsemble is a boosted tree classifier with logistic output, equivalent to an xgboost
// binary:logistic model: p = sigmoid(logit(BaseScore) + sum of leaf values).
type TreeEnsemble struct {
	BaseScore   float64
	NumFeatures int
	Trees       []Tree
}

// Width returns the number of input columns.
func (m *TreeEnsemble) Width() int {
	return m.NumFeatures
}

// PredictProba returns p(y=1) for a single row.
func (m *TreeEnsemble) PredictProba(row []float64) (float64, error) {
	if len(row) != m.NumFeatures {
		return 0, &InputError{Message: fmt.Sprintf("expected %d features, got %d", m.NumFeatures, len(row))}
	}

	margin := logit(m.BaseScore)
	for i := range m.Trees {
		leaf, err := m.Trees[i].score(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		margin += leaf
	}
	return sigmoid(margin), nil
}

func (t *Tree) score(row []float64) (float64, error) {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf() {
			return *node.Leaf, nil
		}

		v := row[node.Feature]
		switch {
		case math.IsNaN(v):
			idx = node.Left
			if node.Missing != nil {
				idx = *node.Missing
			}
		case v < node.Threshold:
			idx = node.Left
		default:
			idx = node.Right
		}
		if idx <= 0 || idx >= len(t.Nodes) {
			return 0, &InputError{Message: fmt.Sprintf("invalid child index %d", idx)}
		}
	}
}

// validate checks that every split references a column below width and only points forward,
// so scoring always terminates.
func (t *Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, node := range t.Nodes {
		if node.IsLeaf() {
			continue
		}
		if node.Feature < 0 || node.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range [0, %d)", i, node.Feature, width)
		}
		children := []int{node.Left, node.Right}
		if node.Missing != nil {
			children = append(children, *node.Missing)
		}
		for _, child := range children {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d must point forward within %d nodes", i, child, len(t.Nodes))
			}
		}
	}
	return nil
}
