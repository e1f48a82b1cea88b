package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Worker=MockWorkerService

import (
	"context"
	"fmt"
	"time"

	"homecare/infras/otel"
	"homecare/infras/postgres"
	"homecare/internal/domains/worker/model"
	"homecare/internal/domains/worker/model/dto"
	"homecare/internal/domains/worker/repository"
	"homecare/shared"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"
	"homecare/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Schedule counts the active bookings a worker holds from a point in time.
type Schedule interface {
	CountUpcoming(ctx context.Context, workerID string, from time.Time) (int, error)
}

type Worker interface {
	Create(ctx context.Context, req dto.CreateWorkerRequest) (dto.WorkerResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetWorkersResponse, error)
	Get(ctx context.Context, id string) (dto.WorkerResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateWorkerStatusRequest, id string) error
}

type serviceImpl struct {
	repo     repository.Worker
	schedule Schedule
	tx       postgres.Transactor
	otel     otel.Otel
}

func New(repo repository.Worker, schedule Schedule, tx postgres.Transactor, otel otel.Otel) Worker {
	return &serviceImpl{
		repo:     repo,
		schedule: schedule,
		tx:       tx,
		otel:     otel,
	}
}

func phoneFilter(phone string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldPhone, Value: phone, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateWorkerRequest) (res dto.WorkerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".worker.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := shared.UserFromContext(ctx)
	worker := req.ToModel(user)

	taken, err := s.repo.Exist(ctx, phoneFilter(worker.Phone))
	if err != nil {
		log.Error().Err(err).Msg("failed to check worker phone")

		return res, fmt.Errorf("failed to check worker phone: %w", err)
	}

	if taken {
		return res, failure.Conflict("a worker with this phone number already exists") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, worker); err != nil {
		if shared.IsUniqueViolation(err) {
			return res, failure.Conflict("a worker with this phone number already exists") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create worker")

		return res, fmt.Errorf("failed to create worker: %w", err)
	}

	res.FromModel(worker)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetWorkersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".worker.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count workers")

		return res, fmt.Errorf("failed to count workers: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get workers")

		return res, fmt.Errorf("failed to get workers: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.WorkerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".worker.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	worker, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get worker")

		return res, fmt.Errorf("failed to get worker: %w", err)
	}

	if worker.ID == "" {
		return res, failure.NotFound("worker not found") // nolint:wrapcheck
	}

	res.FromModel(worker)

	return res, nil
}

// UpdateStatus takes a worker off duty only when nothing is left on their schedule.
// The worker row stays locked so no assignment can slip in between the check and the write.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateWorkerStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".worker.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := shared.UserFromContext(ctx)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		worker, err := s.repo.GetForUpdate(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock worker")

			return fmt.Errorf("failed to lock worker: %w", err)
		}

		if worker.ID == "" {
			return failure.NotFound("worker not found") // nolint:wrapcheck
		}

		if worker.Status == req.Status {
			return nil
		}

		if req.Status != model.StatusActive {
			upcoming, err := s.schedule.CountUpcoming(ctx, id, timezone.Now())
			if err != nil {
				log.Error().Err(err).Msg("failed to count upcoming bookings")

				return fmt.Errorf("failed to count upcoming bookings: %w", err)
			}

			if upcoming > 0 {
				return failure.Conflict(fmt.Sprintf("worker still has %d upcoming bookings", upcoming)) // nolint:wrapcheck
			}
		}

		fields := map[string]any{
			model.FieldStatus:        req.Status,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.Update(ctx, fields, filter); err != nil {
			log.Error().Err(err).Msg("failed to update worker status")

			return fmt.Errorf("failed to update worker status: %w", err)
		}

		return nil
	})
}
