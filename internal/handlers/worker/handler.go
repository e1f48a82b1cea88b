package worker

import (
	"net/http"

	"homecare/infras/otel"
	"homecare/internal/domains/worker/model"
	"homecare/internal/domains/worker/model/dto"
	"homecare/internal/domains/worker/service"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/validator"
	"homecare/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const statusRule = "omitempty,oneof=ACTIVE INACTIVE ON_LEAVE"

type Handler struct {
	service service.Worker
	otel    otel.Otel
}

func New(service service.Worker, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin/workers", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateWorker)
		routerGroup.Get("/", handler.GetWorkers)
		routerGroup.Get("/{id}", handler.GetWorkerByID)
		routerGroup.Put("/{id}/status", handler.UpdateWorkerStatus)
	})
}

// CreateWorker registers a new worker. Workers start ACTIVE.
// @Summary Create a worker
// @Tags Worker Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateWorkerRequest true "Create Worker Request"
// @Success 201 {object} response.Data[dto.WorkerResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/workers [post]
// @Security BearerAuth
func (handler *Handler) CreateWorker(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateWorker")
	defer scope.End()

	req := dto.CreateWorkerRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	worker, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create worker")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, worker)
}

// GetWorkers lists workers.
// @Summary Get all workers
// @Tags Worker Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Param search query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetWorkersResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/workers [get]
// @Security BearerAuth
func (handler *Handler) GetWorkers(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWorkers")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	query := request.URL.Query()
	status := query.Get(constant.RequestParamStatus)

	if err := validator.ValidateVar(status, statusRule); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if name := query.Get(constant.RequestParamSearch); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	workers, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get workers")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, workers)
}

// GetWorkerByID returns one worker.
// @Summary Get a worker by ID
// @Tags Worker Admin
// @Produce json
// @Param id path string true "Worker ID"
// @Success 200 {object} response.Data[dto.WorkerResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/workers/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetWorkerByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWorkerByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	worker, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get worker")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, worker)
}

// UpdateWorkerStatus changes a worker's availability status.
// @Summary Update worker status
// @Tags Worker Admin
// @Accept json
// @Produce json
// @Param id path string true "Worker ID"
// @Param request body dto.UpdateWorkerStatusRequest true "Status"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/workers/{id}/status [put]
// @Security BearerAuth
func (handler *Handler) UpdateWorkerStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateWorkerStatus")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	req := dto.UpdateWorkerStatusRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.UpdateStatus(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update worker status")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Worker " + id + " is now " + string(req.Status))

	response.WithMessage(writer, http.StatusOK, "Worker status updated successfully")
}
