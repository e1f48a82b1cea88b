package service_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	kafkaMocks "homecare/infras/kafka/mocks"
	"homecare/infras/otel/mocks"
	"homecare/internal/availability"
	"homecare/internal/domains/booking/model"
	"homecare/internal/domains/booking/model/dto"
	"homecare/internal/domains/booking/service"
	catalogMocks "homecare/internal/domains/catalog/mocks"
	workerModel "homecare/internal/domains/worker/model"
	"homecare/internal/lifecycle"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// lockingTx serializes transactions the way the booking and worker row locks do.
type lockingTx struct {
	mu sync.Mutex
}

func (l *lockingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(ctx)
}

func filterID(filter gDto.FilterGroup) string {
	for _, raw := range filter.Filters {
		if f, ok := raw.(gDto.Filter); ok {
			id, _ := f.Value.(string)

			return id
		}
	}

	return ""
}

type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
}

func (m *memoryBookings) Insert(_ context.Context, booking model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bookings[booking.ID] = booking

	return nil
}

func (m *memoryBookings) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bookings[filterID(filter)], nil
}

func (m *memoryBookings) GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error) {
	return m.Get(ctx, filter)
}

func (m *memoryBookings) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := make([]model.Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (m *memoryBookings) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.bookings), nil
}

func (m *memoryBookings) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking := m.bookings[filterID(filter)]

	if status, ok := fields[model.FieldStatus].(lifecycle.Status); ok {
		booking.Status = status
	}

	if workerID, ok := fields[model.FieldWorkerID].(string); ok {
		booking.WorkerID = &workerID
	}

	m.bookings[booking.ID] = booking

	return nil
}

func (m *memoryBookings) Search(ctx context.Context, params gDto.QueryParams, _ dto.AdminFilter) ([]model.Booking, int, error) {
	bookings, err := m.GetAll(ctx, params, gDto.FilterGroup{})

	return bookings, len(bookings), err
}

func (m *memoryBookings) ActiveCommitments(_ context.Context, workerID string, window availability.Interval) ([]availability.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var commitments []availability.Commitment

	for _, booking := range m.bookings {
		if booking.WorkerID == nil || *booking.WorkerID != workerID {
			continue
		}

		if booking.Status != lifecycle.StatusPending && booking.Status != lifecycle.StatusConfirmed {
			continue
		}

		if booking.StartTime.Before(window.End) && booking.EndTime.After(window.Start) {
			commitments = append(commitments, availability.Commitment{BookingID: booking.ID, Interval: booking.Interval()})
		}
	}

	return commitments, nil
}

func (m *memoryBookings) ExistForService(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (m *memoryBookings) CountUpcoming(_ context.Context, _ string, _ time.Time) (int, error) {
	return 0, nil
}

func (m *memoryBookings) workerOf(id string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bookings[id].WorkerID
}

type memoryWorkers struct {
	workers map[string]workerModel.Worker
}

func (m *memoryWorkers) Insert(_ context.Context, worker workerModel.Worker) error {
	m.workers[worker.ID] = worker

	return nil
}

func (m *memoryWorkers) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (workerModel.Worker, error) {
	return m.workers[filterID(filter)], nil
}

func (m *memoryWorkers) GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (workerModel.Worker, error) {
	return m.Get(ctx, filter)
}

func (m *memoryWorkers) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]workerModel.Worker, error) {
	workers := make([]workerModel.Worker, 0, len(m.workers))
	for _, worker := range m.workers {
		workers = append(workers, worker)
	}

	return workers, nil
}

func (m *memoryWorkers) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	_, ok := m.workers[filterID(filter)]

	return ok, nil
}

func (m *memoryWorkers) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	return len(m.workers), nil
}

func (m *memoryWorkers) Update(_ context.Context, _ map[string]any, _ gDto.FilterGroup) error {
	return nil
}

func slot(id string, start time.Time, duration time.Duration) model.Booking {
	return model.Booking{
		ID:         id,
		CustomerID: "customer-" + id,
		ServiceID:  "svc-1",
		Status:     lifecycle.StatusPending,
		StartTime:  start,
		EndTime:    start.Add(duration),
	}
}

func newMemoryService(t *testing.T, bookings ...model.Booking) (service.Booking, *memoryBookings) {
	t.Helper()

	ctrl := gomock.NewController(t)
	producer := kafkaMocks.NewMockClient(ctrl)
	producer.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	store := &memoryBookings{bookings: map[string]model.Booking{}}
	for _, booking := range bookings {
		store.bookings[booking.ID] = booking
	}

	workers := &memoryWorkers{workers: map[string]workerModel.Worker{
		"worker-1": {ID: "worker-1", Name: "Lan", Status: workerModel.StatusActive},
	}}

	svc := service.NewWithClock(store, catalogMocks.NewMockService(ctrl), workers, &lockingTx{}, producer,
		testConfig(), mocks.NewOtel(), func() time.Time { return now })

	return svc, store
}

func TestBookingService_Assign_ConcurrentOverlap(t *testing.T) {
	start := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	for range 20 {
		svc, store := newMemoryService(t,
			slot("a", start, 2*time.Hour),
			slot("b", start.Add(time.Hour), 2*time.Hour),
		)

		var (
			wg      sync.WaitGroup
			ready   = make(chan struct{})
			results = make([]error, 2)
		)

		for i, id := range []string{"a", "b"} {
			wg.Add(1)

			go func() {
				defer wg.Done()
				<-ready

				_, results[i] = svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: id, WorkerID: "worker-1"})
			}()
		}

		close(ready)
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++

				continue
			}

			assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		}

		require.Equal(t, 1, succeeded)
		assert.True(t, (store.workerOf("a") == nil) != (store.workerOf("b") == nil))
	}
}

func TestBookingService_Assign_Buffer(t *testing.T) {
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		second   time.Time
		wantCode int
	}{
		{name: "one minute past the buffer", second: start.Add(2*time.Hour + 31*time.Minute)},
		{name: "exactly at the buffer edge", second: start.Add(2*time.Hour + 30*time.Minute)},
		{name: "one minute inside the buffer", second: start.Add(2*time.Hour + 29*time.Minute), wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newMemoryService(t, slot("a", start, 2*time.Hour), slot("b", tt.second, 2*time.Hour))

			_, err := svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: "a", WorkerID: "worker-1"})
			require.NoError(t, err)

			_, err = svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: "b", WorkerID: "worker-1"})

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_Assign_CancelledFreesTheSlot(t *testing.T) {
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newMemoryService(t, slot("a", start, 2*time.Hour), slot("b", start, 2*time.Hour))

	_, err := svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: "a", WorkerID: "worker-1"})
	require.NoError(t, err)

	_, err = svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: "b", WorkerID: "worker-1"})
	require.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = svc.UpdateStatus(adminContext(), "a", dto.UpdateStatusRequest{Status: lifecycle.StatusCancelled})
	require.NoError(t, err)

	_, err = svc.Assign(adminContext(), dto.AssignWorkerRequest{BookingID: "b", WorkerID: "worker-1"})
	assert.NoError(t, err)
}
