package service

import (
	"context"
	"time"

	"homecare/infras/kafka"
	"homecare/infras/metrics"
	"homecare/internal/domains/booking/model"
	"homecare/internal/lifecycle"
	"homecare/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	EventCreated       = "booking.created"
	EventAssigned      = "booking.assigned"
	EventStatusChanged = "booking.status_changed"
	EventCancelled     = "booking.cancelled"
)

// Event is the payload published for every booking change, keyed by booking id.
type Event struct {
	Type           string           `json:"type"`
	BookingID      string           `json:"booking_id"`
	CustomerID     string           `json:"customer_id"`
	ServiceID      string           `json:"service_id"`
	WorkerID       *string          `json:"worker_id,omitempty"`
	Status         lifecycle.Status `json:"status"`
	PreviousStatus lifecycle.Status `json:"previous_status,omitempty"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// publish never fails the caller; the booking is already committed.
func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking, previous lifecycle.Status) {
	ctx, scope := s.otel.NewScope(context.WithoutCancel(ctx), constant.OtelEventScopeName, constant.OtelEventScopeName+"."+eventType)
	defer scope.End()

	if previous != "" && previous != booking.Status {
		metrics.IncTransition(string(previous), string(booking.Status))
	}

	event := Event{
		Type:           eventType,
		BookingID:      booking.ID,
		CustomerID:     booking.CustomerID,
		ServiceID:      booking.ServiceID,
		WorkerID:       booking.WorkerID,
		Status:         booking.Status,
		PreviousStatus: previous,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		OccurredAt:     s.now(),
	}

	err := s.producer.SendMessages(ctx, s.cfg.Kafka.Topic.BookingEvents, kafka.Message{Key: booking.ID, Value: event})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("event", eventType).Str("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}
