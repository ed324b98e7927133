// Package model loads trained classifier bundles from disk and scores rows with them.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/schemas"
	bundleschemas "github.com/jonathan/predict-service/schemas"
)

// Model type identifiers accepted in a bundle.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeTreeEnsemble       = "tree_ensemble"
)

// Classifier scores a single row with the probability of the positive class.
type Classifier interface {
	PredictProba(row []float64) (float64, error)
	Width() int
}

// Bundle is a trained classifier together with the metadata needed to serve it.
type Bundle struct {
	Name       string          `json:"name"`
	Version    string          `json:"version,omitempty"`
	Threshold  *float64        `json:"threshold,omitempty"`
	Features   []string        `json:"features,omitempty"`
	Vectorizer *VectorizerSpec `json:"vectorizer,omitempty"`
	Model      Spec            `json:"model"`

	path       string
	classifier Classifier
	schema     *features.Schema
	vectorizer *DictVectorizer
}

// VectorizerSpec holds the fitted column names of a DictVectorizer.
type VectorizerSpec struct {
	FeatureNames []string `json:"feature_names"`
}

// Spec is the serialized classifier.
type Spec struct {
	Type string `json:"type"`

	// logistic_regression
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`

	// tree_ensemble
	BaseScore   *float64 `json:"base_score,omitempty"`
	NumFeatures int      `json:"num_features,omitempty"`
	Trees       []Tree   `json:"trees,omitempty"`
}

var (
	bundleValidatorOnce sync.Once
	bundleValidator     *schemas.Validator
	bundleValidatorErr  error
)

func validator() (*schemas.Validator, error) {
	bundleValidatorOnce.Do(func() {
		bundleValidator, bundleValidatorErr = schemas.Compile("model_bundle.schema.json", bundleschemas.ModelBundle)
	})
	return bundleValidator, bundleValidatorErr
}

// LoadBundle reads, validates and compiles the bundle at path.
func LoadBundle(path string) (*Bundle, error) {
	if path == "" {
		return nil, &BundleError{Path: path, Message: "bundle path is empty"}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &BundleError{Path: path, Message: "failed to resolve path", Cause: err}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &BundleError{Path: absPath, Message: "failed to read file", Cause: err}
	}

	b, err := ParseBundle(data)
	if err != nil {
		if bundleErr, ok := err.(*BundleError); ok {
			bundleErr.Path = absPath
			return nil, bundleErr
		}
		return nil, err
	}
	b.path = absPath
	return b, nil
}

// ParseBundle validates data against the bundle schema, decodes it and checks that the model,
// feature list and vectorizer agree on the input width.
func ParseBundle(data []byte) (*Bundle, error) {
	v, err := validator()
	if err != nil {
		return nil, &BundleError{Path: "(bytes)", Message: "bundle schema unavailable", Cause: err}
	}
	if err := v.Validate(data); err != nil {
		return nil, &BundleError{Path: "(bytes)", Message: "schema validation failed", Cause: err}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &BundleError{Path: "(bytes)", Message: "failed to parse JSON", Cause: err}
	}

	if err := b.compile(); err != nil {
		return nil, &BundleError{Path: "(bytes)", Message: "inconsistent bundle", Cause: err}
	}
	return &b, nil
}

func (b *Bundle) compile() error {
	width := 0

	if len(b.Features) > 0 {
		schema, err := features.NewSchema(b.Features)
		if err != nil {
			return err
		}
		b.schema = schema
		width = schema.Len()
	}

	if b.Vectorizer != nil {
		vec, err := NewDictVectorizer(b.Vectorizer.FeatureNames)
		if err != nil {
			return err
		}
		if width != 0 && width != vec.Width() {
			return fmt.Errorf("features declare %d columns but vectorizer produces %d", width, vec.Width())
		}
		b.vectorizer = vec
		width = vec.Width()
	}

	switch b.Model.Type {
	case TypeLogisticRegression:
		lr := &LogisticRegression{Intercept: b.Model.Intercept, Coefficients: b.Model.Coefficients}
		if width != 0 && lr.Width() != width {
			return fmt.Errorf("model has %d coefficients but input has %d columns", lr.Width(), width)
		}
		b.classifier = lr

	case TypeTreeEnsemble:
		n := b.Model.NumFeatures
		if n == 0 {
			n = width
		}
		if n == 0 {
			return fmt.Errorf("tree_ensemble needs num_features, features or a vectorizer")
		}
		if width != 0 && n != width {
			return fmt.Errorf("model expects %d columns but input has %d", n, width)
		}
		base := 0.5
		if b.Model.BaseScore != nil {
			base = *b.Model.BaseScore
		}
		te := &TreeEnsemble{BaseScore: base, NumFeatures: n, Trees: b.Model.Trees}
		for i := range te.Trees {
			if err := te.Trees[i].validate(n); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
		b.classifier = te

	default:
		return fmt.Errorf("unsupported model type %q", b.Model.Type)
	}
	return nil
}

// Path returns the absolute file path the bundle was loaded from, if any.
func (b *Bundle) Path() string {
	return b.path
}

// Classifier returns the compiled classifier.
func (b *Bundle) Classifier() Classifier {
	return b.classifier
}

// Schema returns the feature schema declared by the bundle, or nil when it declares none.
func (b *Bundle) Schema() *features.Schema {
	return b.schema
}

// DictVectorizer returns the bundle's vectorizer, or nil when it has none.
func (b *Bundle) DictVectorizer() *DictVectorizer {
	return b.vectorizer
}

// DecisionThreshold returns the bundled threshold and whether one was present.
func (b *Bundle) DecisionThreshold() (float64, bool) {
	if b.Threshold == nil {
		return 0, false
	}
	return *b.Threshold, true
}
