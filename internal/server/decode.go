package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/predict-service/internal/features"
)

// readBody reads the whole request body, translating a tripped size limit into ErrBodyTooLarge.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrBodyTooLarge{Limit: maxErr.Limit}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

// DecodeFields parses a JSON object into its fields in document order. Duplicate keys are all
// returned; numbers are kept as json.Number.
//
// Errors: *ErrNoData for an absent body or any empty or falsy JSON value, *ErrInvalidFormat for
// other non-object values and *ErrInvalidJSON for malformed input.
func DecodeFields(body []byte) ([]features.Field, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &ErrNoData{}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &ErrInvalidJSON{Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, classifyNonObject(body)
	}

	var fields []features.Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ErrInvalidJSON{Cause: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &ErrInvalidJSON{Cause: fmt.Errorf("object key is not a string")}
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, &ErrInvalidJSON{Cause: err}
		}
		fields = append(fields, features.Field{Label: key, Value: value})
	}

	// Closing brace, then nothing but EOF.
	if _, err := dec.Token(); err != nil {
		return nil, &ErrInvalidJSON{Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ErrInvalidJSON{Cause: fmt.Errorf("unexpected data after top-level object")}
	}

	if len(fields) == 0 {
		return nil, &ErrNoData{}
	}
	return fields, nil
}

func classifyNonObject(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}
	if isFalsy(value) {
		return &ErrNoData{}
	}
	return &ErrInvalidFormat{}
}

// isFalsy reports whether a decoded JSON value is null, false, zero or empty.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
