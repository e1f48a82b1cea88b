package catalog

import (
	"net/http"

	"homecare/infras/otel"
	"homecare/internal/domains/catalog/model"
	"homecare/internal/domains/catalog/model/dto"
	"homecare/internal/domains/catalog/service"
	"homecare/shared"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/validator"
	"homecare/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Catalog
	otel    otel.Otel
}

func New(service service.Catalog, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/services", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetActiveServices)
		routerGroup.Get("/{id}", handler.GetActiveServiceByID)
	})

	router.Route("/admin/services", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateService)
		routerGroup.Get("/", handler.GetServices)
		routerGroup.Get("/block-schemas", handler.GetBlockSchemas)
		routerGroup.Get("/{id}", handler.GetServiceByID)
		routerGroup.Put("/{id}", handler.UpdateService)
		routerGroup.Put("/{id}/toggle", handler.ToggleService)
		routerGroup.Delete("/{id}", handler.DeleteService)
	})
}

// filterFromRequest narrows the listing by name and, for operators, by the active flag.
func filterFromRequest(request *http.Request, activeOnly bool) gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if name := request.URL.Query().Get(constant.RequestParamSearch); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	active := shared.ConvertStringToBool(request.URL.Query().Get(model.FieldActive))
	if activeOnly {
		yes := true
		active = &yes
	}

	if active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	return filterGroup
}

// GetActiveServices lists the services open for booking.
// @Summary Get active services
// @Tags Service
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetServicesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/services [get]
func (handler *Handler) GetActiveServices(writer http.ResponseWriter, request *http.Request) {
	handler.getServices(writer, request, true, "GetActiveServices")
}

// GetServices lists every service including inactive ones.
// @Summary Get all services
// @Tags Service Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Filter by name"
// @Param active query boolean false "Filter by active flag"
// @Success 200 {object} response.Data[dto.GetServicesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/admin/services [get]
// @Security BearerAuth
func (handler *Handler) GetServices(writer http.ResponseWriter, request *http.Request) {
	handler.getServices(writer, request, false, "GetServices")
}

func (handler *Handler) getServices(writer http.ResponseWriter, request *http.Request, activeOnly bool, span string) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+span)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	services, err := handler.service.GetAll(ctx, queryParams, filterFromRequest(request, activeOnly))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get services")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, services)
}

// GetActiveServiceByID returns an active service with its page layout.
// @Summary Get a service by ID
// @Tags Service
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Data[dto.ServiceResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/services/{id} [get]
func (handler *Handler) GetActiveServiceByID(writer http.ResponseWriter, request *http.Request) {
	handler.getService(writer, request, true, "GetActiveServiceByID")
}

// GetServiceByID returns a service regardless of its active flag.
// @Summary Get a service by ID
// @Tags Service Admin
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Data[dto.ServiceResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/services/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetServiceByID(writer http.ResponseWriter, request *http.Request) {
	handler.getService(writer, request, false, "GetServiceByID")
}

func (handler *Handler) getService(writer http.ResponseWriter, request *http.Request, activeOnly bool, span string) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+span)
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	service, err := handler.service.Get(ctx, id, activeOnly)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get service")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, service)
}

// CreateService handles the creation of a new service.
// @Summary Create a new service
// @Description Create a service with its page-builder layout. Active services need exactly one booking form.
// @Tags Service Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateServiceRequest true "Create Service Request"
// @Success 201 {object} response.Data[dto.ServiceResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/services [post]
// @Security BearerAuth
func (handler *Handler) CreateService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateService")
	defer scope.End()

	req := dto.CreateServiceRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	service, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create service")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Service created by user " + user)

	response.WithJSON(writer, http.StatusCreated, service)
}

// UpdateService updates an existing service.
// @Summary Update a service
// @Tags Service Admin
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body dto.UpdateServiceRequest true "Update Service Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/services/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateService")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	req := dto.UpdateServiceRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update service")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Service updated successfully")
}

// ToggleService flips the active flag.
// @Summary Toggle a service
// @Tags Service Admin
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Data[map[string]bool]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/services/{id}/toggle [put]
// @Security BearerAuth
func (handler *Handler) ToggleService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleService")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	active, err := handler.service.Toggle(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to toggle service")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, map[string]bool{model.FieldActive: active})
}

// DeleteService removes a service that no booking references.
// @Summary Delete a service
// @Tags Service Admin
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/services/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteService")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete service")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Service deleted successfully")
}

// GetBlockSchemas lists the block types the page builder offers.
// @Summary Get block schemas
// @Tags Service Admin
// @Produce json
// @Success 200 {object} response.Data[[]schema.BlockSchema]
// @Router /v1/admin/services/block-schemas [get]
// @Security BearerAuth
func (handler *Handler) GetBlockSchemas(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBlockSchemas")
	defer scope.End()

	response.WithJSON(writer, http.StatusOK, handler.service.BlockSchemas(ctx))
}
