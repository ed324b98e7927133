package features

import "fmt"

// Schema is the ordered list of canonical feature names a model requires.
// It defines both the required key set and the column order of the model input.
// A Schema is immutable once created.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a Schema from canonical names. Names must be non-empty, unique and already
// canonical; the order given is the column order.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, &SchemaError{Message: "no feature names"}
	}

	s := &Schema{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if !IsCanonical(name) {
			return nil, &SchemaError{Message: fmt.Sprintf("feature %d (%q) is not canonical, expected %q", i, name, Canonicalize(name))}
		}
		if prev, dup := s.index[name]; dup {
			return nil, &SchemaError{Message: fmt.Sprintf("feature %q declared twice (positions %d and %d)", name, prev, i)}
		}
		s.names[i] = name
		s.index[name] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is intended for built-in schemas.
func MustSchema(names []string) *Schema {
	s, err := NewSchema(names)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of features.
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns a copy of the feature names in column order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains reports whether name is a schema feature.
func (s *Schema) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the column of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Missing returns the schema features for which present reports false, in schema order.
func (s *Schema) Missing(present func(name string) bool) []string {
	var missing []string
	for _, name := range s.names {
		if !present(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Vector returns the single input row for values, ordered by the schema.
// Keys outside the schema are ignored. If any schema feature is absent, Vector returns a
// *MissingFeaturesError and no row.
func (s *Schema) Vector(values map[string]float64) ([]float64, error) {
	missing := s.Missing(func(name string) bool {
		_, ok := values[name]
		return ok
	})
	if len(missing) > 0 {
		return nil, &MissingFeaturesError{Missing: missing}
	}

	row := make([]float64, len(s.names))
	for name, v := range values {
		if i := s.Index(name); i >= 0 {
			row[i] = v
		}
	}
	return row, nil
}
