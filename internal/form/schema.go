package form

import (
	"errors"
	"fmt"

	"homecare/internal/schema"
)

var ErrNoBookingForm = errors.New("service has no booking form")

// FromLayout extracts the intake form from the booking-form block of a layout.
func FromLayout(layout schema.Layout) ([]FieldSpec, error) {
	block, ok := layout.Find(schema.BlockBookingForm)
	if !ok {
		return nil, ErrNoBookingForm
	}

	var data struct {
		FormSchema []FieldSpec `json:"form_schema"`
	}

	if err := block.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid booking form: %w", err)
	}

	if len(data.FormSchema) == 0 {
		return nil, ErrNoBookingForm
	}

	return data.FormSchema, nil
}
