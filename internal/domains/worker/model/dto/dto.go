package dto

import (
	"strings"

	"homecare/internal/domains/worker/model"
	"homecare/shared"
	gDto "homecare/shared/dto"
	gModel "homecare/shared/model"
	"homecare/shared/timezone"

	"github.com/google/uuid"
)

type CreateWorkerRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,min=8,max=20"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (c *CreateWorkerRequest) ToModel(user string) model.Worker {
	worker := model.Worker{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(c.Name),
		Phone:    strings.TrimSpace(c.Phone),
		Status:   model.StatusActive,
		Metadata: gModel.NewMetadata(user, timezone.Now()),
	}

	if c.Email != "" {
		worker.Email = &c.Email
	}

	return worker
}

type UpdateWorkerStatusRequest struct {
	Status model.Status `json:"status" validate:"required,oneof=ACTIVE INACTIVE ON_LEAVE"`
}

type WorkerResponse struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Phone  string       `json:"phone"`
	Email  *string      `json:"email,omitempty"`
	Status model.Status `json:"status"`
	gDto.Metadata
}

func (r *WorkerResponse) FromModel(m model.Worker) {
	r.ID = m.ID
	r.Name = m.Name
	r.Phone = m.Phone
	r.Email = m.Email
	r.Status = m.Status
	r.Metadata.FromModel(m.Metadata)
}

type GetWorkersResponse struct {
	Workers   []WorkerResponse `json:"workers"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetWorkersResponse) FromModels(models []model.Worker, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Workers = make([]WorkerResponse, len(models))
	for i, mod := range models {
		r.Workers[i].FromModel(mod)
	}
}
