package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConvertOptions controls how an xgboost model is turned into a bundle.
type ConvertOptions struct {
	Name      string
	Version   string
	Threshold *float64
	// Features is used when the xgboost model carries no feature names.
	Features []string
}

// xgbModel is the subset of xgboost's JSON model format (Booster.save_model("*.json")) that a
// binary:logistic gbtree needs.
type xgbModel struct {
	Learner struct {
		FeatureNames     []string `json:"feature_names"`
		LearnerModelParm struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []xgbTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int             `json:"left_children"`
	RightChildren   []int             `json:"right_children"`
	SplitIndices    []int             `json:"split_indices"`
	SplitConditions []float64         `json:"split_conditions"`
	DefaultLeft     []json.RawMessage `json:"default_left"`
}

// ConvertXGBoost converts an xgboost JSON model into a validated tree_ensemble bundle.
func ConvertXGBoost(data []byte, opts ConvertOptions) (*Bundle, error) {
	var m xgbModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse xgboost model: %w", err)
	}

	learner := m.Learner
	if name := learner.Objective.Name; name != "" && name != "binary:logistic" {
		return nil, fmt.Errorf("unsupported objective %q: only binary:logistic can be converted", name)
	}
	if name := learner.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q: only gbtree can be converted", name)
	}

	baseScore, err := parseXGBNumber(learner.LearnerModelParm.BaseScore, 0.5)
	if err != nil {
		return nil, fmt.Errorf("invalid base_score: %w", err)
	}
	numFeature, err := parseXGBNumber(learner.LearnerModelParm.NumFeature, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid num_feature: %w", err)
	}

	names := learner.FeatureNames
	if len(names) == 0 {
		names = opts.Features
	}

	trees := make([]Tree, len(learner.GradientBooster.Model.Trees))
	for i, xt := range learner.GradientBooster.Model.Trees {
		tree, err := xt.convert()
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = tree
	}

	b := &Bundle{
		Name:      opts.Name,
		Version:   opts.Version,
		Threshold: opts.Threshold,
		Features:  names,
		Model: Spec{
			Type:        TypeTreeEnsemble,
			BaseScore:   &baseScore,
			NumFeatures: int(numFeature),
			Trees:       trees,
		},
	}
	if b.Name == "" {
		b.Name = "xgboost"
	}

	// Round-trip through the bundle loader so the output is exactly what the services accept.
	encoded, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	return ParseBundle(encoded)
}

func (xt xgbTree) convert() (Tree, error) {
	n := len(xt.LeftChildren)
	if n == 0 {
		return Tree{}, fmt.Errorf("tree has no nodes")
	}
	if len(xt.RightChildren) != n || len(xt.SplitIndices) != n || len(xt.SplitConditions) != n {
		return Tree{}, fmt.Errorf("node arrays have mismatched lengths")
	}
	if len(xt.DefaultLeft) != 0 && len(xt.DefaultLeft) != n {
		return Tree{}, fmt.Errorf("default_left has %d entries for %d nodes", len(xt.DefaultLeft), n)
	}

	nodes := make([]TreeNode, n)
	for i := 0; i < n; i++ {
		if xt.LeftChildren[i] == -1 {
			// Leaf weights are stored in split_conditions.
			leaf := xt.SplitConditions[i]
			nodes[i] = TreeNode{Leaf: &leaf}
			continue
		}

		node := TreeNode{
			Feature:   xt.SplitIndices[i],
			Threshold: xt.SplitConditions[i],
			Left:      xt.LeftChildren[i],
			Right:     xt.RightChildren[i],
		}
		missing := node.Right
		if len(xt.DefaultLeft) > 0 {
			left, err := parseXGBBool(xt.DefaultLeft[i])
			if err != nil {
				return Tree{}, fmt.Errorf("node %d: %w", i, err)
			}
			if left {
				missing = node.Left
			}
		}
		node.Missing = &missing
		nodes[i] = node
	}
	return Tree{Nodes: nodes}, nil
}

// parseXGBNumber parses xgboost's stringly-typed parameters such as "5E-1" or "[5E-1]".
func parseXGBNumber(s string, fallback float64) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseXGBBool accepts the 0/1 integers of older model files and the booleans of newer ones.
func parseXGBBool(raw json.RawMessage) (bool, error) {
	switch strings.TrimSpace(string(raw)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid default_left value %s", raw)
	}
}
