package dto

import (
	"encoding/json"

	"homecare/internal/domains/booking/model"
	"homecare/internal/lifecycle"
	"homecare/shared"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/timezone"

	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	ServiceID   string         `json:"service_id"   validate:"required,max=64"`
	Note        *string        `json:"note"         validate:"omitempty,max=1000"`
	BookingData map[string]any `json:"booking_data" validate:"required"`
}

type CancelBookingRequest struct {
	CancelReason string `json:"cancel_reason" validate:"omitempty,max=500"`
}

type AssignWorkerRequest struct {
	BookingID string `json:"booking_id" validate:"required,max=64"`
	WorkerID  string `json:"worker_id"  validate:"required,max=64"`
}

type UpdateStatusRequest struct {
	Status       lifecycle.Status `json:"status"        validate:"required,oneof=CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
	CancelReason string           `json:"cancel_reason" validate:"omitempty,max=500"`
}

type BookingResponse struct {
	ID            string           `json:"id"`
	CustomerID    string           `json:"customer_id"`
	ServiceID     string           `json:"service_id"`
	WorkerID      *string          `json:"worker_id"`
	Status        lifecycle.Status `json:"status"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
	Location      string           `json:"location"`
	Note          *string          `json:"note,omitempty"`
	BookingData   json.RawMessage  `json:"booking_data"`
	TotalPrice    decimal.Decimal  `json:"total_price"`
	PaymentStatus string           `json:"payment_status"`
	CancelReason  *string          `json:"cancel_reason,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.CustomerID = m.CustomerID
	r.ServiceID = m.ServiceID
	r.WorkerID = m.WorkerID
	r.Status = m.Status
	r.StartTime = timezone.Format(m.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(m.EndTime, constant.DateFormat)
	r.Location = m.Location
	r.Note = m.Note
	r.BookingData = json.RawMessage(m.BookingData)
	r.TotalPrice = m.TotalPrice
	r.PaymentStatus = m.PaymentStatus
	r.CancelReason = m.CancelReason
	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// AdminFilter narrows the operator booking list. Day is a calendar date in the app timezone.
type AdminFilter struct {
	Status lifecycle.Status
	Day    string
	Search string
}

type WorkerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AvailableWorkersResponse is advisory; assignment checks the schedule again.
type AvailableWorkersResponse struct {
	BookingID string          `json:"booking_id"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Workers   []WorkerSummary `json:"workers"`
}
