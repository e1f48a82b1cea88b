package model

import (
	"time"

	"homecare/internal/availability"
	"homecare/internal/lifecycle"
	"homecare/shared/model"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldCustomerID    = "customer_id"
	FieldServiceID     = "service_id"
	FieldWorkerID      = "worker_id"
	FieldStatus        = "status"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldLocation      = "location"
	FieldNote          = "note"
	FieldBookingData   = "booking_data"
	FieldTotalPrice    = "total_price"
	FieldPaymentStatus = "payment_status"
	FieldCancelReason  = "cancel_reason"
)

const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// Booking is one appointment. BookingData and TotalPrice are fixed at creation.
type Booking struct {
	ID            string           `db:"id"`
	CustomerID    string           `db:"customer_id"`
	ServiceID     string           `db:"service_id"`
	WorkerID      *string          `db:"worker_id"`
	Status        lifecycle.Status `db:"status"`
	StartTime     time.Time        `db:"start_time"`
	EndTime       time.Time        `db:"end_time"`
	Location      string           `db:"location"`
	Note          *string          `db:"note"`
	BookingData   types.JSONText   `db:"booking_data"`
	TotalPrice    decimal.Decimal  `db:"total_price"`
	PaymentStatus string           `db:"payment_status"`
	CancelReason  *string          `db:"cancel_reason"`
	model.Metadata
}

func (b Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) Subject() lifecycle.Subject {
	return lifecycle.Subject{Status: b.Status, CustomerID: b.CustomerID, StartTime: b.StartTime}
}
