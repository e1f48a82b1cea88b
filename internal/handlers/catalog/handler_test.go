package catalog_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homecare/infras/otel/mocks"
	catalogMocks "homecare/internal/domains/catalog/mocks"
	"homecare/internal/domains/catalog/model"
	"homecare/internal/domains/catalog/model/dto"
	"homecare/internal/handlers/catalog"
	"homecare/internal/schema"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (http.Handler, *catalogMocks.MockCatalog) {
	t.Helper()

	svc := catalogMocks.NewMockCatalog(gomock.NewController(t))

	handler := catalog.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func activeFilter(t *testing.T, filter gDto.FilterGroup) *bool {
	t.Helper()

	for _, f := range filter.Filters {
		if fl, ok := f.(gDto.Filter); ok && fl.Field == model.FieldActive {
			active, _ := fl.Value.(bool)

			return &active
		}
	}

	return nil
}

func TestHandler_GetActiveServices(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetServicesResponse, error) {
			active := activeFilter(t, filter)
			if assert.NotNil(t, active) {
				assert.True(t, *active)
			}

			return dto.GetServicesResponse{Services: []dto.ServiceResponse{{ID: "svc-1"}}, TotalData: 1, TotalPage: 1}, nil
		})

	recorder := serve(router, http.MethodGet, "/services?active=false", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"svc-1"`)
}

func TestHandler_GetServices_AdminFilters(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantActive *bool
	}{
		{name: "no active filter", url: "/admin/services"},
		{name: "inactive only", url: "/admin/services?active=false", wantActive: new(bool)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)

			svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ any, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetServicesResponse, error) {
					assert.Equal(t, tt.wantActive, activeFilter(t, filter))

					return dto.GetServicesResponse{}, nil
				})

			recorder := serve(router, http.MethodGet, tt.url, "")

			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}

func TestHandler_GetServiceByID(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Get(gomock.Any(), "svc-1", true).Return(dto.ServiceResponse{}, failure.NotFound("service not found"))
	svc.EXPECT().Get(gomock.Any(), "svc-1", false).Return(dto.ServiceResponse{ID: "svc-1"}, nil)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/services/svc-1", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/admin/services/svc-1", "").Code)
}

func TestHandler_CreateService(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *catalogMocks.MockCatalog)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"Deep cleaning","base_price":"400000","duration_minutes":120,"layout":[{"type":"booking-form","data":{}}]}`,
			setupMock: func(svc *catalogMocks.MockCatalog) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, req dto.CreateServiceRequest) (dto.ServiceResponse, error) {
						assert.Equal(t, "400000", req.BasePrice.String())
						assert.Equal(t, 120, req.DurationMinutes)

						return dto.ServiceResponse{ID: "svc-1"}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duration too short",
			body:       `{"name":"Quick","base_price":"1","duration_minutes":5,"layout":[]}`,
			setupMock:  func(_ *catalogMocks.MockCatalog) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid layout",
			body: `{"name":"Deep cleaning","base_price":"400000","duration_minutes":120,"layout":[]}`,
			setupMock: func(svc *catalogMocks.MockCatalog) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.ServiceResponse{}, failure.Validation("invalid layout", nil))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)
			tt.setupMock(svc)

			assert.Equal(t, tt.wantStatus, serve(router, http.MethodPost, "/admin/services", tt.body).Code)
		})
	}
}

func TestHandler_UpdateService(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Update(gomock.Any(), gomock.Any(), "svc-1").DoAndReturn(
		func(_ any, req dto.UpdateServiceRequest, _ string) error {
			assert.Equal(t, "Regular cleaning", req.Name)

			return nil
		})

	recorder := serve(router, http.MethodPut, "/admin/services/svc-1", `{"name":"Regular cleaning"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_ToggleService(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Toggle(gomock.Any(), "svc-1").Return(false, nil)

	recorder := serve(router, http.MethodPut, "/admin/services/svc-1/toggle", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"active":false}}`, recorder.Body.String())
}

func TestHandler_DeleteService(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Delete(gomock.Any(), "svc-1").Return(failure.Conflict("service has bookings, deactivate it instead"))

	assert.Equal(t, http.StatusConflict, serve(router, http.MethodDelete, "/admin/services/svc-1", "").Code)
}

func TestHandler_GetBlockSchemas(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().BlockSchemas(gomock.Any()).Return([]schema.BlockSchema{{Type: "hero", Name: "Hero"}})

	recorder := serve(router, http.MethodGet, "/admin/services/block-schemas", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"type":"hero"`)
}
