// Package form validates customer input against the intake form a service declares in
// its booking-form block. Field names are authored per service; nothing here knows
// about particular fields.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"homecare/shared/failure"
)

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeSelect   FieldType = "select"
	TypeCheckbox FieldType = "checkbox"
	TypeDate     FieldType = "date"
	TypeTime     FieldType = "time"
)

const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Option is an allowed select value. Stored forms carry either a bare string or
// a {value,label} object.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		o.Value, o.Label = plain, plain

		return nil
	}

	type option Option

	var full option
	if err := json.Unmarshal(data, &full); err != nil {
		return errors.New("option must be a string or an object with a value")
	}

	*o = Option(full)
	if o.Label == "" {
		o.Label = o.Value
	}

	return nil
}

type FieldSpec struct {
	FieldName string    `json:"field_name"`
	FieldType FieldType `json:"field_type"`
	Label     string    `json:"label"`
	Required  bool      `json:"required"`
	Options   []Option  `json:"options,omitempty"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
}

func (f FieldSpec) name() string {
	if f.Label != "" {
		return f.Label
	}

	return f.FieldName
}

type rule func(spec FieldSpec, value any) string

var rules = map[FieldType]rule{
	TypeText:     checkText,
	TypeTextarea: checkText,
	TypeNumber:   checkNumber,
	TypeSelect:   checkSelect,
	TypeCheckbox: checkCheckbox,
	TypeDate:     checkDate,
	TypeTime:     checkTime,
}

// Absent reports whether a submitted value counts as not filled in.
func Absent(value any, ok bool) bool {
	if !ok || value == nil {
		return true
	}

	if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
		return true
	}

	return false
}

// Validate checks every field independently and returns all problems found.
// A missing required field yields a single error and no further checks.
func Validate(specs []FieldSpec, payload map[string]any) []failure.FieldError {
	errs := []failure.FieldError{}

	for _, spec := range specs {
		value, ok := payload[spec.FieldName]
		if Absent(value, ok) {
			if spec.Required {
				errs = append(errs, failure.FieldError{
					Field:   spec.FieldName,
					Message: fmt.Sprintf("%s is required", spec.name()),
				})
			}

			continue
		}

		check, known := rules[spec.FieldType]
		if !known {
			continue
		}

		if msg := check(spec, value); msg != "" {
			errs = append(errs, failure.FieldError{Field: spec.FieldName, Message: msg})
		}
	}

	return errs
}

func checkText(spec FieldSpec, value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%s must be text", spec.name())
	}

	if spec.Pattern == "" {
		return ""
	}

	pattern, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return fmt.Sprintf("%s has an invalid pattern", spec.name())
	}

	if !pattern.MatchString(s) {
		return fmt.Sprintf("%s has an invalid format", spec.name())
	}

	return ""
}

// Number converts a submitted numeric value. NaN and infinities are not numbers here.
func Number(value any) (float64, bool) {
	var (
		f  float64
		ok bool
	)

	switch n := value.(type) {
	case float64:
		f, ok = n, true
	case int:
		f, ok = float64(n), true
	case int64:
		f, ok = float64(n), true
	case json.Number:
		parsed, err := n.Float64()
		f, ok = parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		f, ok = parsed, err == nil
	}

	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func checkNumber(spec FieldSpec, value any) string {
	n, ok := Number(value)
	if !ok {
		return fmt.Sprintf("%s must be a number", spec.name())
	}

	if spec.Min != nil && n < *spec.Min {
		return fmt.Sprintf("%s must be at least %v", spec.name(), *spec.Min)
	}

	if spec.Max != nil && n > *spec.Max {
		return fmt.Sprintf("%s must be at most %v", spec.name(), *spec.Max)
	}

	return ""
}

func checkSelect(spec FieldSpec, value any) string {
	s := fmt.Sprint(value)

	if len(spec.Options) == 0 {
		return ""
	}

	for _, option := range spec.Options {
		if option.Value == s {
			return ""
		}
	}

	return fmt.Sprintf("%s has an invalid choice", spec.name())
}

func checkCheckbox(spec FieldSpec, value any) string {
	switch v := value.(type) {
	case bool:
		return ""
	case string:
		if v == "true" || v == "false" {
			return ""
		}
	}

	return fmt.Sprintf("%s must be true or false", spec.name())
}

func checkDate(spec FieldSpec, value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%s must be a date", spec.name())
	}

	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", spec.name())
	}

	return ""
}

func checkTime(spec FieldSpec, value any) string {
	s, ok := value.(string)
	if !ok || !clockPattern.MatchString(s) {
		return fmt.Sprintf("%s must be a time in HH:MM format", spec.name())
	}

	return ""
}
