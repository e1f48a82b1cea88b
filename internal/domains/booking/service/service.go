package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"homecare/config"
	"homecare/infras/kafka"
	"homecare/infras/metrics"
	"homecare/infras/otel"
	"homecare/infras/postgres"
	"homecare/internal/availability"
	"homecare/internal/domains/booking/model"
	"homecare/internal/domains/booking/model/dto"
	"homecare/internal/domains/booking/repository"
	catalogModel "homecare/internal/domains/catalog/model"
	catalogRepo "homecare/internal/domains/catalog/repository"
	workerModel "homecare/internal/domains/worker/model"
	workerRepo "homecare/internal/domains/worker/repository"
	"homecare/internal/form"
	"homecare/internal/lifecycle"
	"homecare/internal/pricing"
	"homecare/internal/schema"
	"homecare/shared"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"
	gModel "homecare/shared/model"
	"homecare/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
)

const (
	FieldBookingDate = "booking_date"
	FieldBookingTime = "booking_time"
)

var sortableColumns = []string{
	model.FieldStartTime,
	model.FieldStatus,
	model.FieldTotalPrice,
	constant.FieldCreatedAt,
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams, status lifecycle.Status) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	Assign(ctx context.Context, req dto.AssignWorkerRequest) (dto.BookingResponse, error)
	AvailableWorkers(ctx context.Context, id string) (dto.AvailableWorkersResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.AdminFilter) (dto.GetBookingsResponse, error)
}

type serviceImpl struct {
	repo     repository.Booking
	services catalogRepo.Service
	workers  workerRepo.Worker
	tx       postgres.Transactor
	producer kafka.Client
	engine   *availability.Engine
	machine  *lifecycle.Machine
	cfg      *config.Config
	otel     otel.Otel
	now      func() time.Time
}

func New(
	repo repository.Booking,
	services catalogRepo.Service,
	workers workerRepo.Worker,
	tx postgres.Transactor,
	producer kafka.Client,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return NewWithClock(repo, services, workers, tx, producer, cfg, otel, timezone.Now)
}

// NewWithClock is New with an injected clock for the booking window and cancellation rules.
func NewWithClock(
	repo repository.Booking,
	services catalogRepo.Service,
	workers workerRepo.Worker,
	tx postgres.Transactor,
	producer kafka.Client,
	cfg *config.Config,
	otel otel.Otel,
	now func() time.Time,
) Booking {
	return &serviceImpl{
		repo:     repo,
		services: services,
		workers:  workers,
		tx:       tx,
		producer: producer,
		engine:   availability.New(repo, time.Duration(cfg.Booking.BufferMinutes)*time.Minute),
		machine:  lifecycle.New(time.Duration(cfg.Booking.CancelBufferMinutes)*time.Minute, now),
		cfg:      cfg,
		otel:     otel,
		now:      now,
	}
}

func actorFrom(ctx context.Context) lifecycle.Actor {
	user, role := shared.UserFromContext(ctx)
	if shared.IsOperator(role) {
		return lifecycle.Actor{ID: user, Role: lifecycle.RoleOperator}
	}

	return lifecycle.Actor{ID: user, Role: lifecycle.RoleCustomer}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

// Create validates booking_data against the service's own booking form, prices it and
// stores it as PENDING without a worker.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := shared.UserFromContext(ctx)

	svc, err := s.services.Get(ctx, shared.FilterByID(req.ServiceID, catalogModel.FieldID, catalogModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get service")

		return res, fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ID == "" || !svc.Active {
		return res, failure.NotFound("service not found") // nolint:wrapcheck
	}

	layout, err := svc.ParsedLayout()
	if err != nil {
		log.Error().Err(err).Str("service_id", svc.ID).Msg("failed to parse service layout")

		return res, fmt.Errorf("failed to parse service layout: %w", err)
	}

	specs, err := form.FromLayout(layout)
	if err != nil {
		if errors.Is(err, form.ErrNoBookingForm) {
			return res, failure.BadRequestFromString("service is not open for booking") // nolint:wrapcheck
		}

		log.Error().Err(err).Str("service_id", svc.ID).Msg("failed to read booking form")

		return res, fmt.Errorf("failed to read booking form: %w", err)
	}

	errs := form.Validate(specs, req.BookingData)
	start, errs := s.startTime(req.BookingData, errs)
	errs = s.checkPackage(layout, req.BookingData, errs)

	if len(errs) > 0 {
		return res, failure.Validation("invalid booking data", errs) // nolint:wrapcheck
	}

	stored := maps.Clone(req.BookingData)
	delete(stored, FieldBookingDate)
	delete(stored, FieldBookingTime)

	data, err := json.Marshal(stored)
	if err != nil {
		return res, fmt.Errorf("failed to encode booking data: %w", err)
	}

	booking := model.Booking{
		ID:            uuid.NewString(),
		CustomerID:    user,
		ServiceID:     svc.ID,
		Status:        lifecycle.StatusPending,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Location:      locationSummary(req.BookingData),
		Note:          req.Note,
		BookingData:   types.JSONText(data),
		TotalPrice:    pricing.Resolve(svc.BasePrice, layout, req.BookingData),
		PaymentStatus: model.PaymentUnpaid,
		Metadata:      gModel.NewMetadata(user, s.now()),
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.IncBookingCreated(svc.ID)
	s.publish(ctx, EventCreated, booking, "")

	res.FromModel(booking)

	return res, nil
}

func hasFieldError(errs []failure.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}

	return false
}

// startTime combines booking_date and booking_time into one instant in the app timezone
// and applies the booking window. Forms that do not declare the two fields still need them.
func (s *serviceImpl) startTime(data map[string]any, errs []failure.FieldError) (time.Time, []failure.FieldError) {
	date, clock := text(data, FieldBookingDate), text(data, FieldBookingTime)

	if date == "" && !hasFieldError(errs, FieldBookingDate) {
		errs = append(errs, failure.FieldError{Field: FieldBookingDate, Message: FieldBookingDate + " is required"})
	}

	if clock == "" && !hasFieldError(errs, FieldBookingTime) {
		errs = append(errs, failure.FieldError{Field: FieldBookingTime, Message: FieldBookingTime + " is required"})
	}

	if hasFieldError(errs, FieldBookingDate) || hasFieldError(errs, FieldBookingTime) {
		return time.Time{}, errs
	}

	start, err := timezone.Parse(constant.DayTimeFormat, date+" "+clock)
	if err != nil {
		return time.Time{}, append(errs, failure.FieldError{
			Field:   FieldBookingTime,
			Message: "booking_date and booking_time must form a valid date and time",
		})
	}

	if msg := s.checkWindow(start); msg != "" {
		errs = append(errs, failure.FieldError{Field: FieldBookingTime, Message: msg})
	}

	return start, errs
}

// checkWindow enforces notice, horizon and working hours. A zero setting disables its rule.
func (s *serviceImpl) checkWindow(start time.Time) string {
	policy := s.cfg.Booking
	now := s.now()

	if policy.MinNoticeMinutes > 0 && start.Before(now.Add(time.Duration(policy.MinNoticeMinutes)*time.Minute)) {
		return fmt.Sprintf("booking must start at least %d minutes from now", policy.MinNoticeMinutes)
	}

	if policy.AdvanceDays > 0 && start.After(now.AddDate(0, 0, policy.AdvanceDays)) {
		return fmt.Sprintf("booking cannot be made more than %d days ahead", policy.AdvanceDays)
	}

	if policy.WorkEndHour > policy.WorkStartHour {
		hour := timezone.ToAppTime(start).Hour()
		if hour < policy.WorkStartHour || hour >= policy.WorkEndHour {
			return fmt.Sprintf("bookings are only taken between %02d:00 and %02d:00", policy.WorkStartHour, policy.WorkEndHour)
		}
	}

	return ""
}

// checkPackage rejects a subservice_id the pricing block does not list when strict packages are on.
func (s *serviceImpl) checkPackage(layout schema.Layout, data map[string]any, errs []failure.FieldError) []failure.FieldError {
	if !s.cfg.Booking.StrictPackages {
		return errs
	}

	if _, selected := pricing.Selection(data); !selected {
		return errs
	}

	packages, err := pricing.Packages(layout)
	if err != nil || len(packages) == 0 {
		return errs
	}

	if _, ok := pricing.Lookup(layout, data); ok {
		return errs
	}

	return append(errs, failure.FieldError{
		Field:   pricing.SelectionKey,
		Message: pricing.SelectionKey + " does not match any package of this service",
	})
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams, status lifecycle.Status) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if status != "" && !status.Valid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown status %q", status)) // nolint:wrapcheck
	}

	user, _ := shared.UserFromContext(ctx)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldCustomerID, Value: user, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	if status != "" {
		filter.Filters = append(filter.Filters,
			gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	req.Sortable(sortableColumns...)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// Get hides other customers' bookings behind a 404.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	actor := actorFrom(ctx)
	if booking.ID == "" || (actor.Role == lifecycle.RoleCustomer && booking.CustomerID != actor.ID) {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, previous, err := s.transition(ctx, id, lifecycle.EventCancel, req.CancelReason)
	if err != nil {
		return res, err
	}

	s.publish(ctx, EventCancelled, booking, previous)

	res.FromModel(booking)

	return res, nil
}

// UpdateStatus moves a booking along start, complete or cancel. Confirmation needs a
// worker and therefore goes through Assign.
func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Status == lifecycle.StatusConfirmed {
		return res, failure.BadRequestFromString("a booking is confirmed by assigning a worker") // nolint:wrapcheck
	}

	event, ok := lifecycle.EventFor(req.Status)
	if !ok {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown status %q", req.Status)) // nolint:wrapcheck
	}

	booking, previous, err := s.transition(ctx, id, event, req.CancelReason)
	if err != nil {
		return res, err
	}

	eventType := EventStatusChanged
	if booking.Status == lifecycle.StatusCancelled {
		eventType = EventCancelled
	}

	s.publish(ctx, eventType, booking, previous)

	res.FromModel(booking)

	return res, nil
}

// transition applies a worker-independent event to a locked booking.
func (s *serviceImpl) transition(ctx context.Context, id string, event lifecycle.Event, reason string) (booking model.Booking, previous lifecycle.Status, err error) {
	actor := actorFrom(ctx)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err = s.repo.GetForUpdate(ctx, byID(id))
		if err != nil {
			log.Error().Err(err).Msg("failed to lock booking")

			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == "" {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		next, err := s.machine.Transition(booking.Subject(), event, actor)
		if err != nil {
			return mapTransitionError(err)
		}

		fields := map[string]any{
			model.FieldStatus:        next,
			constant.FieldModifiedAt: s.now(),
			constant.FieldModifiedBy: actor.ID,
		}

		if next == lifecycle.StatusCancelled && reason != "" {
			fields[model.FieldCancelReason] = reason
			booking.CancelReason = &reason
		}

		if err := s.repo.Update(ctx, fields, byID(booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to update booking status")

			return fmt.Errorf("failed to update booking status: %w", err)
		}

		previous = booking.Status
		booking.Status = next

		return nil
	})

	return booking, previous, err
}

// Assign claims the worker for the booking. The booking row and then the worker row are
// locked, so two assignments of one worker serialize and the second sees the first's
// commitment when it re-checks the schedule.
func (s *serviceImpl) Assign(ctx context.Context, req dto.AssignWorkerRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Assign")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := actorFrom(ctx)

	var (
		booking  model.Booking
		previous lifecycle.Status
	)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err = s.repo.GetForUpdate(ctx, byID(req.BookingID))
		if err != nil {
			log.Error().Err(err).Msg("failed to lock booking")

			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == "" {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		next, err := s.machine.Transition(booking.Subject(), lifecycle.EventAssign, actor)
		if err != nil {
			return mapTransitionError(err)
		}

		worker, err := s.workers.GetForUpdate(ctx, shared.FilterByID(req.WorkerID, workerModel.FieldID, workerModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to lock worker")

			return fmt.Errorf("failed to lock worker: %w", err)
		}

		if worker.ID == "" {
			return failure.NotFound("worker not found") // nolint:wrapcheck
		}

		if worker.Status != workerModel.StatusActive {
			return failure.BadRequestFromString(fmt.Sprintf("worker is not active (status %s)", worker.Status)) // nolint:wrapcheck
		}

		conflicts, err := s.engine.Conflicts(ctx, worker.ID, booking.ID, booking.Interval())
		if err != nil {
			log.Error().Err(err).Msg("failed to check worker schedule")

			return fmt.Errorf("failed to check worker schedule: %w", err)
		}

		if len(conflicts) > 0 {
			return failure.Conflict(fmt.Sprintf( // nolint:wrapcheck
				"schedule conflict: worker %s is committed to booking %s from %s to %s",
				worker.Name,
				conflicts[0].BookingID,
				timezone.Format(conflicts[0].Start, constant.DayTimeFormat),
				timezone.Format(conflicts[0].End, constant.ClockFormat),
			))
		}

		fields := map[string]any{
			model.FieldWorkerID:      worker.ID,
			model.FieldStatus:        next,
			constant.FieldModifiedAt: s.now(),
			constant.FieldModifiedBy: actor.ID,
		}

		if err := s.repo.Update(ctx, fields, byID(booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to assign worker")

			return fmt.Errorf("failed to assign worker: %w", err)
		}

		previous = booking.Status
		booking.WorkerID = &worker.ID
		booking.Status = next

		return nil
	})

	metrics.IncAssignment(assignmentOutcome(err))

	if err != nil {
		return res, err
	}

	s.publish(ctx, EventAssigned, booking, previous)

	res.FromModel(booking)

	return res, nil
}

func assignmentOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAssigned
	case failure.GetCode(err) == http.StatusConflict:
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeRejected
	}
}

// AvailableWorkers lists active workers free for the booking's slot. Nothing is locked;
// Assign checks again.
func (s *serviceImpl) AvailableWorkers(ctx context.Context, id string) (res dto.AvailableWorkersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.AvailableWorkers")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == "" {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.Status != lifecycle.StatusPending && booking.Status != lifecycle.StatusConfirmed {
		return res, failure.BadRequestFromString(fmt.Sprintf("booking is %s, workers can no longer be assigned", booking.Status)) // nolint:wrapcheck
	}

	active := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: workerModel.FieldStatus, Value: workerModel.StatusActive, Operator: gDto.FilterOperatorEq, Table: workerModel.TableName},
		},
	}

	workers, err := s.workers.GetAll(ctx, gDto.QueryParams{SortBy: workerModel.FieldName, SortDir: gDto.SortDirAsc}, active)
	if err != nil {
		log.Error().Err(err).Msg("failed to get workers")

		return res, fmt.Errorf("failed to get workers: %w", err)
	}

	res.BookingID = booking.ID
	res.StartTime = timezone.Format(booking.StartTime, constant.DateFormat)
	res.EndTime = timezone.Format(booking.EndTime, constant.DateFormat)
	res.Workers = []dto.WorkerSummary{}

	for _, worker := range workers {
		free, err := s.engine.IsAvailableFor(ctx, worker.ID, booking.ID, booking.StartTime, booking.EndTime)
		if err != nil {
			log.Error().Err(err).Str("worker_id", worker.ID).Msg("failed to check worker schedule")

			return res, fmt.Errorf("failed to check worker schedule: %w", err)
		}

		if free {
			res.Workers = append(res.Workers, dto.WorkerSummary{ID: worker.ID, Name: worker.Name, Phone: worker.Phone})
		}
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.AdminFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if filter.Status != "" && !filter.Status.Valid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown status %q", filter.Status)) // nolint:wrapcheck
	}

	if filter.Day != "" {
		if _, _, err = timezone.Day(filter.Day); err != nil {
			return res, failure.BadRequestFromString("date must be in YYYY-MM-DD format") // nolint:wrapcheck
		}
	}

	req.Sortable(sortableColumns...)

	models, total, err := s.repo.Search(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to search bookings")

		return res, fmt.Errorf("failed to search bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// mapTransitionError turns lifecycle guard failures into client errors that keep the guard's reason.
func mapTransitionError(err error) error {
	var transitionErr *lifecycle.TransitionError

	switch {
	case errors.Is(err, lifecycle.ErrNotOwner):
		return failure.Forbidden("not your booking")
	case errors.Is(err, lifecycle.ErrForbiddenRole):
		return failure.Forbidden(err.Error())
	case errors.Is(err, lifecycle.ErrTerminal),
		errors.Is(err, lifecycle.ErrCancelWindowClosed),
		errors.Is(err, lifecycle.ErrUnknownEvent),
		errors.As(err, &transitionErr):
		return failure.BadRequest(err)
	}

	return err
}
