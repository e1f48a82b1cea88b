package validator

import (
	"errors"
	"strings"

	"homecare/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"notblank": "{field} must not be blank",
		"gt":       "{field} must be greater than {param}",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param}",
		"min":      "{field} must be at least {param}",
		"email":    "{field} must be a valid email address",
		"e164":     "{field} must be a valid phone number",
	}
)

func render(valErr val.FieldError) string {
	template, ok := messages[valErr.Tag()]
	if !ok {
		return valErr.Field() + " is invalid"
	}

	msg := strings.ReplaceAll(template, "{field}", valErr.Field())

	return strings.ReplaceAll(msg, "{param}", valErr.Param())
}

// fields lists one error per offending field, in struct order.
func fields(err error) []failure.FieldError {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return nil
	}

	fieldErrors := make([]failure.FieldError, 0, len(valErrors))
	for _, valErr := range valErrors {
		fieldErrors = append(fieldErrors, failure.FieldError{Field: valErr.Field(), Message: render(valErr)})
	}

	return fieldErrors
}

func message(err error) string {
	var valErrors val.ValidationErrors

	if errors.As(err, &valErrors) {
		if len(valErrors) > 0 {
			return render(valErrors[0])
		}

		return valErrors.Error()
	}

	return err.Error()
}
