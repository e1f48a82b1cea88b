package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"homecare/config"
	"homecare/infras/otel"
	"homecare/internal/domains/catalog/model"
	"homecare/internal/domains/catalog/model/dto"
	"homecare/internal/domains/catalog/repository"
	"homecare/internal/schema"
	"homecare/shared"
	"homecare/shared/cache"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"
	"homecare/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetService    = "catalog:get"
	cacheGetAllService = "catalog:gets"
)

const fieldLayout = "layout"

// Bookings answers whether a service is still referenced by bookings.
type Bookings interface {
	ExistForService(ctx context.Context, serviceID string) (bool, error)
}

type Catalog interface {
	Create(ctx context.Context, req dto.CreateServiceRequest) (dto.ServiceResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetServicesResponse, error)
	Get(ctx context.Context, id string, activeOnly bool) (dto.ServiceResponse, error)
	Update(ctx context.Context, req dto.UpdateServiceRequest, id string) error
	Toggle(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	BlockSchemas(ctx context.Context) []schema.BlockSchema
}

type serviceImpl struct {
	repo     repository.Service
	bookings Bookings
	registry *schema.Registry
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Service, bookings Bookings, registry *schema.Registry, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Catalog {
	return &serviceImpl{
		repo:     repo,
		bookings: bookings,
		registry: registry,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

// checkLayout validates every block and requires a single booking form on services
// open for booking.
func (s *serviceImpl) checkLayout(raw []byte, active bool) error {
	layout, err := schema.ParseLayout(raw)
	if err != nil {
		return failure.Validation("invalid layout", []failure.FieldError{{Field: fieldLayout, Message: err.Error()}})
	}

	fieldErrors := []failure.FieldError{}
	for _, msg := range s.registry.ValidateLayout(layout) {
		fieldErrors = append(fieldErrors, failure.FieldError{Field: fieldLayout, Message: msg})
	}

	counts := map[schema.BlockType]int{}
	for _, block := range layout {
		counts[block.Kind()]++
	}

	for _, single := range []schema.BlockType{schema.BlockPricing, schema.BlockBookingForm} {
		if counts[single] > 1 {
			fieldErrors = append(fieldErrors, failure.FieldError{
				Field:   fieldLayout,
				Message: fmt.Sprintf("only one %s block is allowed", single),
			})
		}
	}

	if active && counts[schema.BlockBookingForm] == 0 {
		fieldErrors = append(fieldErrors, failure.FieldError{
			Field:   fieldLayout,
			Message: "an active service needs a booking-form block",
		})
	}

	if len(fieldErrors) > 0 {
		return failure.Validation("invalid layout", fieldErrors)
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != "" {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetService, id)); err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to delete service cache")
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllService)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateServiceRequest) (res dto.ServiceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !req.BasePrice.IsPositive() {
		return res, failure.Validation("invalid service", []failure.FieldError{{Field: model.FieldBasePrice, Message: "base_price must be greater than zero"}})
	}

	user, _ := shared.UserFromContext(ctx)
	service := req.ToModel(user)

	if err = s.checkLayout(service.Layout, service.Active); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, service); err != nil {
		log.Error().Err(err).Msg("failed to create service")

		return res, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidate(ctx, "")

	res.FromModel(service)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetServicesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllService, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for services")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count services")

		return res, fmt.Errorf("failed to count services: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get services")

		return res, fmt.Errorf("failed to get services: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save services to cache")
	}

	return res, nil
}

// Get serves the detail with its layout. Inactive services are hidden when activeOnly is set.
func (s *serviceImpl) Get(ctx context.Context, id string, activeOnly bool) (res dto.ServiceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetService, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		service, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get service")

			return res, fmt.Errorf("failed to get service: %w", err)
		}

		if service.ID == "" {
			return res, failure.NotFound("service not found") // nolint:wrapcheck
		}

		res.FromModel(service)

		if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save service to cache")
		}
	}

	if activeOnly && !res.Active {
		return dto.ServiceResponse{}, failure.NotFound("service not found") // nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateServiceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Empty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if req.BasePrice != nil && !req.BasePrice.IsPositive() {
		return failure.Validation("invalid service", []failure.FieldError{{Field: model.FieldBasePrice, Message: "base_price must be greater than zero"}})
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get service")

		return fmt.Errorf("failed to get service: %w", err)
	}

	if current.ID == "" {
		return failure.NotFound("service not found") // nolint:wrapcheck
	}

	if len(req.Layout) > 0 || req.Active != nil {
		layout, active := current.Layout, current.Active
		if len(req.Layout) > 0 {
			layout = req.Layout
		}

		if req.Active != nil {
			active = *req.Active
		}

		if err = s.checkLayout(layout, active); err != nil {
			return err
		}
	}

	user, _ := shared.UserFromContext(ctx)

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Msg("failed to update service")

		return fmt.Errorf("failed to update service: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Toggle flips the active flag and returns the new value.
func (s *serviceImpl) Toggle(ctx context.Context, id string) (active bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Toggle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get service")

		return false, fmt.Errorf("failed to get service: %w", err)
	}

	if current.ID == "" {
		return false, failure.NotFound("service not found") // nolint:wrapcheck
	}

	active = !current.Active
	if active {
		if err = s.checkLayout(current.Layout, true); err != nil {
			return false, err
		}
	}

	user, _ := shared.UserFromContext(ctx)
	fields := map[string]any{
		model.FieldActive:        active,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Msg("failed to toggle service")

		return false, fmt.Errorf("failed to toggle service: %w", err)
	}

	s.invalidate(ctx, id)

	return active, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if service exists")

		return fmt.Errorf("failed to check if service exists: %w", err)
	}

	if !exist {
		return failure.NotFound("service not found") // nolint:wrapcheck
	}

	referenced, err := s.bookings.ExistForService(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to check service bookings")

		return fmt.Errorf("failed to check service bookings: %w", err)
	}

	if referenced {
		return failure.Conflict("service has bookings, deactivate it instead") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete service")

		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) BlockSchemas(_ context.Context) []schema.BlockSchema {
	return s.registry.Schemas()
}
