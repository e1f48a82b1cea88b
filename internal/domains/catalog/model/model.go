package model

import (
	"homecare/internal/schema"
	"homecare/shared/model"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "services"
	EntityName = "service"

	FieldID              = "id"
	FieldName            = "name"
	FieldDescription     = "description"
	FieldBasePrice       = "base_price"
	FieldDurationMinutes = "duration_minutes"
	FieldActive          = "active"
	FieldLayout          = "layout"
)

// Service is a bookable offering. Layout is stored as submitted by the page builder.
type Service struct {
	ID              string          `db:"id"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	BasePrice       decimal.Decimal `db:"base_price"`
	DurationMinutes int             `db:"duration_minutes"`
	Active          bool            `db:"active"`
	Layout          types.JSONText  `db:"layout"`
	model.Metadata
}

func (s Service) ParsedLayout() (schema.Layout, error) {
	return schema.ParseLayout(s.Layout)
}
