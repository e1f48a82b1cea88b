package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type checker func(field Field, value any) []string

var checkers = map[FieldKind]checker{
	KindText:     acceptScalar,
	KindTextarea: acceptScalar,
	KindRichText: acceptScalar,
	KindImage:    acceptScalar,
	KindIcon:     acceptScalar,
	KindSelect:   acceptScalar,
	KindNumber:   acceptScalar,
	KindBoolean:  acceptScalar,
	KindArray:    checkArray,
}

func checkKinds(fields []Field) error {
	for _, field := range fields {
		if _, ok := checkers[field.Kind]; !ok {
			return fmt.Errorf("field %q has unknown type %q", field.Name, field.Kind)
		}

		if err := checkKinds(field.Items); err != nil {
			return err
		}
	}

	return nil
}

// present treats nil and the empty string as absent. Zero and false are values.
func present(value any, ok bool) bool {
	if !ok || value == nil {
		return false
	}

	if s, isString := value.(string); isString && s == "" {
		return false
	}

	return true
}

func checkField(field Field, data map[string]any) []string {
	value, ok := data[field.Name]
	if !present(value, ok) {
		if field.Required {
			return []string{fmt.Sprintf("%s is required", field.Name)}
		}

		return nil
	}

	return checkers[field.Kind](field, value)
}

// acceptScalar leaves scalar values as the page builder wrote them. Only presence is enforced.
func acceptScalar(Field, any) []string {
	return nil
}

func toNumber(value any) (float64, bool) {
	var (
		f  float64
		ok bool
	)

	switch n := value.(type) {
	case float64:
		f, ok = n, true
	case float32:
		f, ok = float64(n), true
	case int:
		f, ok = float64(n), true
	case int64:
		f, ok = float64(n), true
	case json.Number:
		parsed, err := n.Float64()
		f, ok = parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		f, ok = parsed, err == nil
	}

	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// checkArray validates item count and each item one level deep.
func checkArray(field Field, value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be an array", field.Name)}
	}

	errs := []string{}

	if field.MinItems > 0 && len(items) < field.MinItems {
		errs = append(errs, fmt.Sprintf("%s must have at least %d items", field.Name, field.MinItems))
	}

	if field.MaxItems > 0 && len(items) > field.MaxItems {
		errs = append(errs, fmt.Sprintf("%s must have at most %d items", field.Name, field.MaxItems))
	}

	if len(field.Items) == 0 {
		return errs
	}

	for idx, item := range items {
		obj, isObject := item.(map[string]any)
		if !isObject {
			errs = append(errs, fmt.Sprintf("%s[%d] must be an object", field.Name, idx))

			continue
		}

		for _, sub := range field.Items {
			value, ok := obj[sub.Name]
			if !present(value, ok) {
				if sub.Required {
					errs = append(errs, fmt.Sprintf("%s[%d].%s is required", field.Name, idx, sub.Name))
				}

				continue
			}

			if sub.Kind != KindNumber || sub.Min == nil {
				continue
			}

			if n, isNumber := toNumber(value); !isNumber || n < *sub.Min {
				errs = append(errs, fmt.Sprintf("%s[%d].%s must be a number of at least %v", field.Name, idx, sub.Name, *sub.Min))
			}
		}
	}

	return errs
}
