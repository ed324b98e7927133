package model

import (
	"fmt"
	"math"
	"sort"
)

// DictVectorizer turns a field mapping into a numeric row the way scikit-learn's DictVectorizer
// does: a string value v for key k sets column "k=v" to 1, a numeric value sets column k, and
// fields with no matching column are ignored.
type DictVectorizer struct {
	names []string
	index map[string]int
}

// NewDictVectorizer creates a vectorizer over the fitted column names, in model column order.
func NewDictVectorizer(names []string) (*DictVectorizer, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("vectorizer has no feature names")
	}
	v := &DictVectorizer{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, dup := v.index[name]; dup {
			return nil, fmt.Errorf("vectorizer feature %q declared twice", name)
		}
		v.names[i] = name
		v.index[name] = i
	}
	return v, nil
}

// Width returns the number of output columns.
func (v *DictVectorizer) Width() int {
	return len(v.names)
}

// FeatureNames returns a copy of the column names.
func (v *DictVectorizer) FeatureNames() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Transform vectorizes one record.
func (v *DictVectorizer) Transform(record map[string]any) ([]float64, error) {
	row := make([]float64, len(v.names))

	// Sorted keys keep error reporting deterministic.
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		column, value, err := encode(key, record[key])
		if err != nil {
			return nil, err
		}
		if i, ok := v.index[column]; ok {
			row[i] = value
		}
	}
	return row, nil
}

func encode(key string, value any) (string, float64, error) {
	switch t := value.(type) {
	case string:
		return key + "=" + t, 1, nil
	case bool:
		if t {
			return key, 1, nil
		}
		return key, 0, nil
	case int:
		return key, float64(t), nil
	case int64:
		return key, float64(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", 0, &InputError{Message: fmt.Sprintf("field %s is not finite", key)}
		}
		return key, t, nil
	default:
		return "", 0, &InputError{Message: fmt.Sprintf("unsupported type %T for field %s", value, key)}
	}
}
