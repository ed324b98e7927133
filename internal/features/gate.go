package features

import (
	"encoding/json"
	"math"
)

// Field is one raw label/value pair of a request, in document order.
type Field struct {
	Label string
	Value any
}

// Normalized is a request keyed by canonical feature name.
type Normalized struct {
	Values map[string]any
	// Dropped holds raw labels that canonicalize to an empty key.
	Dropped []string
}

// Checked is a request that passed the gate.
type Checked struct {
	Vector []float64
	// Extras holds canonical keys the schema does not use, in request order.
	Extras []string
	// Dropped holds raw labels that canonicalize to an empty key.
	Dropped []string
}

// Gate canonicalizes request labels and checks them against a Schema before inference.
type Gate struct {
	schema *Schema
	canon  *Canonicalizer
}

// NewGate creates a gate for schema. A nil canonicalizer falls back to Canonicalize.
func NewGate(schema *Schema, canon *Canonicalizer) *Gate {
	return &Gate{schema: schema, canon: canon}
}

// Schema returns the schema the gate checks against.
func (g *Gate) Schema() *Schema {
	return g.schema
}

// Normalize canonicalizes every label. When two labels map to the same key the later one wins.
// Labels with no letters or digits cannot name a feature and are dropped.
func (g *Gate) Normalize(fields []Field) Normalized {
	n := Normalized{Values: make(map[string]any, len(fields))}
	for _, f := range fields {
		key := g.canon.Canonicalize(f.Label)
		if key == "" {
			n.Dropped = append(n.Dropped, f.Label)
			continue
		}
		n.Values[key] = f.Value
	}
	return n
}

// Check normalizes fields and builds the schema-ordered input row.
//
// It fails with *MissingFeaturesError when any schema feature is absent, and with
// *InvalidValueError when a schema feature is not a finite number. Extra keys are ignored and
// their values are never inspected.
func (g *Gate) Check(fields []Field) (*Checked, error) {
	n := g.Normalize(fields)

	missing := g.schema.Missing(func(name string) bool {
		_, ok := n.Values[name]
		return ok
	})
	if len(missing) > 0 {
		return nil, &MissingFeaturesError{Missing: missing}
	}

	values := make(map[string]float64, g.schema.Len())
	for _, name := range g.schema.names {
		v, ok := toFloat(n.Values[name])
		if !ok {
			return nil, &InvalidValueError{Feature: name, Value: n.Values[name]}
		}
		values[name] = v
	}

	vector, err := g.schema.Vector(values)
	if err != nil {
		return nil, err
	}

	checked := &Checked{Vector: vector, Dropped: n.Dropped}
	seen := make(map[string]bool)
	for _, f := range fields {
		key := g.canon.Canonicalize(f.Label)
		if key == "" || g.schema.Contains(key) || seen[key] {
			continue
		}
		seen[key] = true
		checked.Extras = append(checked.Extras, key)
	}
	return checked, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
