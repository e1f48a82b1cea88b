package dto

import (
	"encoding/json"

	"homecare/internal/domains/catalog/model"
	"homecare/shared"
	gDto "homecare/shared/dto"
	gModel "homecare/shared/model"
	"homecare/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	Name            string          `json:"name"             validate:"required,max=255"`
	Description     string          `json:"description"      validate:"omitempty,max=2000"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,min=15,max=1440"`
	Active          *bool           `json:"active"`
	Layout          json.RawMessage `json:"layout"           validate:"required"`
}

func (c *CreateServiceRequest) ToModel(user string) model.Service {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Service{
		ID:              uuid.NewString(),
		Name:            c.Name,
		Description:     c.Description,
		BasePrice:       c.BasePrice,
		DurationMinutes: c.DurationMinutes,
		Active:          active,
		Layout:          types.JSONText(c.Layout),
		Metadata:        gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateServiceRequest struct {
	Name            string           `db:"name"             json:"name"             validate:"omitempty,max=255"`
	Description     *string          `db:"description"      json:"description"      validate:"omitempty,max=2000"`
	BasePrice       *decimal.Decimal `db:"base_price"       json:"base_price"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes" validate:"omitempty,min=15,max=1440"`
	Active          *bool            `db:"active"           json:"active"`
	Layout          types.JSONText   `db:"layout"           json:"layout"`
}

func (u UpdateServiceRequest) Empty() bool {
	return u.Name == "" && u.Description == nil && u.BasePrice == nil &&
		u.DurationMinutes == 0 && u.Active == nil && len(u.Layout) == 0
}

type ServiceResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          bool            `json:"active"`
	Layout          json.RawMessage `json:"layout,omitempty"`
	gDto.Metadata
}

func (r *ServiceResponse) FromModel(m model.Service) {
	r.ID = m.ID
	r.Name = m.Name
	r.Description = m.Description
	r.BasePrice = m.BasePrice
	r.DurationMinutes = m.DurationMinutes
	r.Active = m.Active
	r.Layout = json.RawMessage(m.Layout)
	r.Metadata.FromModel(m.Metadata)
}

type GetServicesResponse struct {
	Services  []ServiceResponse `json:"services"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

// FromModels builds the listing without layouts, which are only served on detail.
func (r *GetServicesResponse) FromModels(models []model.Service, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Services = make([]ServiceResponse, len(models))
	for i, mod := range models {
		r.Services[i].FromModel(mod)
		r.Services[i].Layout = nil
	}
}
