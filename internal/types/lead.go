package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Lead request field names.
const (
	FieldLeadSource            = "lead_source"
	FieldNumberOfCoursesViewed = "number_of_courses_viewed"
	FieldAnnualIncome          = "annual_income"
)

// LeadRequest is the body of a lead conversion scoring request. NumberOfCoursesViewed always
// holds a whole number; it is a float64 so counts beyond the int64 range keep their magnitude.
type LeadRequest struct {
	LeadSource            *string  `json:"lead_source" validate:"required"`
	NumberOfCoursesViewed *float64 `json:"number_of_courses_viewed" validate:"required"`
	AnnualIncome          *float64 `json:"annual_income" validate:"required"`
}

// ValidationDetail is one entry of a 422 validation response.
type ValidationDetail struct {
	Type  string `json:"type"`
	Loc   []any  `json:"loc"`
	Msg   string `json:"msg"`
	Input any    `json:"input,omitempty"`
}

// ValidationErrorResponse is the body of a 422 response.
type ValidationErrorResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

// LeadValidationError carries every problem found in a lead request.
type LeadValidationError struct {
	Details []ValidationDetail
}

func (e *LeadValidationError) Error() string {
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Msg
	}
	return "invalid lead request: " + strings.Join(parts, "; ")
}

var leadValidate = newLeadValidator()

func newLeadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every field is present.
func (r *LeadRequest) Validate() error {
	return leadValidate.Struct(r)
}

// Record returns the request as the field mapping the vectorizer consumes.
func (r *LeadRequest) Record() map[string]any {
	return map[string]any{
		FieldLeadSource:            *r.LeadSource,
		FieldNumberOfCoursesViewed: *r.NumberOfCoursesViewed,
		FieldAnnualIncome:          *r.AnnualIncome,
	}
}

// DecodeLeadRequest parses body into a LeadRequest. Numeric strings and booleans are accepted for
// the numeric fields and integral floats for the count. Every field problem is reported, not only
// the first.
func DecodeLeadRequest(body []byte) (*LeadRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, jsonInvalid()
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, jsonInvalid()
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &LeadValidationError{Details: []ValidationDetail{{
			Type:  "model_attributes_type",
			Loc:   []any{"body"},
			Msg:   "Input should be a valid dictionary or object to extract fields from",
			Input: raw,
		}}}
	}

	req := &LeadRequest{}
	problems := make(map[string]ValidationDetail)

	if v, present := obj[FieldLeadSource]; present {
		if s, ok := v.(string); ok {
			req.LeadSource = &s
		} else {
			problems[FieldLeadSource] = typeError(FieldLeadSource, "string_type", "Input should be a valid string", v)
		}
	}
	if v, present := obj[FieldNumberOfCoursesViewed]; present {
		if n, detail := coerceInt(v); detail != nil {
			problems[FieldNumberOfCoursesViewed] = *detail
		} else {
			req.NumberOfCoursesViewed = &n
		}
	}
	if v, present := obj[FieldAnnualIncome]; present {
		if f, detail := coerceFloat(v); detail != nil {
			problems[FieldAnnualIncome] = *detail
		} else {
			req.AnnualIncome = &f
		}
	}

	var validationErrors validator.ValidationErrors
	if err := req.Validate(); errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			if _, reported := problems[fe.Field()]; reported {
				continue
			}
			problems[fe.Field()] = ValidationDetail{
				Type:  "missing",
				Loc:   []any{"body", fe.Field()},
				Msg:   "Field required",
				Input: obj,
			}
		}
	}
	if len(problems) == 0 {
		return req, nil
	}

	details := make([]ValidationDetail, 0, len(problems))
	for _, field := range []string{FieldLeadSource, FieldNumberOfCoursesViewed, FieldAnnualIncome} {
		if d, ok := problems[field]; ok {
			details = append(details, d)
		}
	}
	return nil, &LeadValidationError{Details: details}
}

func jsonInvalid() error {
	return &LeadValidationError{Details: []ValidationDetail{{
		Type: "json_invalid",
		Loc:  []any{"body", 0},
		Msg:  "JSON decode error",
	}}}
}

func typeError(field, kind, msg string, input any) ValidationDetail {
	return ValidationDetail{Type: kind, Loc: []any{"body", field}, Msg: msg, Input: input}
}

// coerceInt returns a whole number as float64. Integers outside the int64 range are kept as their
// nearest float64 rather than rejected or wrapped.
func coerceInt(v any) (float64, *ValidationDetail) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) {
			d := typeError(FieldNumberOfCoursesViewed, "int_parsing", "Input should be a valid integer, unable to parse string as an integer", v)
			return 0, &d
		}
		if f != math.Trunc(f) {
			d := typeError(FieldNumberOfCoursesViewed, "int_from_float", "Input should be a valid integer, got a number with a fractional part", v)
			return 0, &d
		}
		return f, nil
	case string:
		s := strings.TrimSpace(t)
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return float64(n), nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			d := typeError(FieldNumberOfCoursesViewed, "int_parsing", "Input should be a valid integer, unable to parse string as an integer", v)
			return 0, &d
		}
		// Syntactically an integer, only too large for int64.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			d := typeError(FieldNumberOfCoursesViewed, "int_parsing", "Input should be a valid integer, unable to parse string as an integer", v)
			return 0, &d
		}
		return f, nil
	case bool:
		return boolNumber(t), nil
	default:
		d := typeError(FieldNumberOfCoursesViewed, "int_type", "Input should be a valid integer", v)
		return 0, &d
	}
}

func coerceFloat(v any) (float64, *ValidationDetail) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case bool:
		return boolNumber(t), nil
	default:
		d := typeError(FieldAnnualIncome, "float_type", "Input should be a valid number", v)
		return 0, &d
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		d := typeError(FieldAnnualIncome, "float_parsing", "Input should be a valid number, unable to parse string as a number", v)
		return 0, &d
	}
	return f, nil
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
