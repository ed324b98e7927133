package features

import (
	"fmt"
	"strings"
)

// MissingFeaturesError is returned when a request lacks one or more schema features.
// Missing is listed in schema order.
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		quoted[i] = "'" + name + "'"
	}
	return fmt.Sprintf("Missing features: [%s]", strings.Join(quoted, ", "))
}

// InvalidValueError is returned when a schema feature carries a value that is not a number.
type InvalidValueError struct {
	Feature string
	Value   any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for feature %s: expected a number, got %s", e.Feature, describe(e.Value))
}

// SchemaError represents an invalid feature schema definition.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid feature schema: %s", e.Message)
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", t)
	case bool:
		return fmt.Sprintf("bool %t", t)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
