package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"homecare/config"
	"homecare/infras/otel/mocks"
	catalogMocks "homecare/internal/domains/catalog/mocks"
	"homecare/internal/domains/catalog/model"
	"homecare/internal/domains/catalog/model/dto"
	"homecare/internal/domains/catalog/service"
	"homecare/internal/schema"
	"homecare/shared/cache"
	cacheMocks "homecare/shared/cache/mocks"
	"homecare/shared/constant"
	"homecare/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const validLayout = `[
	{"type":"pricing","order":1,"data":{"service_title":"Cleaning","subservices":[{"id":"2br","subservice_title":"Two bedrooms","price":550000}]}},
	{"type":"booking-form","order":2,"data":{"title":"Book","image_url":"b.png","form_schema":[
		{"field_name":"address","field_type":"text","label":"Address","required":true},
		{"field_name":"booking_date","field_type":"date","label":"Date","required":true},
		{"field_name":"booking_time","field_type":"time","label":"Time","required":true}
	]}}
]`

type fixture struct {
	repo     *catalogMocks.MockService
	bookings *catalogMocks.MockBookings
	cache    *cacheMocks.MockRedisCache
	svc      service.Catalog
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	registry, err := schema.Load()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := fixture{
		repo:     catalogMocks.NewMockService(ctrl),
		bookings: catalogMocks.NewMockBookings(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}
	f.svc = service.New(f.repo, f.bookings, registry, cfg, f.cache, mocks.NewOtel())

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func TestCatalogService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateServiceRequest
		setupMock func(f fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "successful creation",
			req: dto.CreateServiceRequest{
				Name:            "Apartment cleaning",
				BasePrice:       decimal.NewFromInt(400000),
				DurationMinutes: 120,
				Layout:          json.RawMessage(validLayout),
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.cache.EXPECT().Clear(gomock.Any(), "catalog:gets:*").Return(nil)
			},
		},
		{
			name: "active service without booking form",
			req: dto.CreateServiceRequest{
				Name:            "Moving",
				BasePrice:       decimal.NewFromInt(400000),
				DurationMinutes: 120,
				Layout:          json.RawMessage(`[{"type":"intro","data":{"heading":"Hi","content":"x","image_url":"a.png","layout":"text-only"}}]`),
			},
			setupMock: func(fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "invalid block payload",
			req: dto.CreateServiceRequest{
				Name:            "Moving",
				BasePrice:       decimal.NewFromInt(400000),
				DurationMinutes: 120,
				Layout:          json.RawMessage(`[{"type":"booking-form","data":{"title":"Book"}}]`),
			},
			setupMock: func(fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "negative price",
			req: dto.CreateServiceRequest{
				Name:            "Moving",
				BasePrice:       decimal.NewFromInt(-1),
				DurationMinutes: 120,
				Layout:          json.RawMessage(validLayout),
			},
			setupMock: func(fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "repository error",
			req: dto.CreateServiceRequest{
				Name:            "Apartment cleaning",
				BasePrice:       decimal.NewFromInt(400000),
				DurationMinutes: 120,
				Layout:          json.RawMessage(validLayout),
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(userContext(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.True(t, res.Active)
			assert.Equal(t, "admin-1", res.CreatedBy)
		})
	}
}

func TestCatalogService_Get(t *testing.T) {
	stored := model.Service{ID: "svc-1", Name: "Cleaning", Active: true, BasePrice: decimal.NewFromInt(400000)}
	hidden := model.Service{ID: "svc-2", Name: "Old", Active: false}

	tests := []struct {
		name       string
		id         string
		activeOnly bool
		setupMock  func(f fixture)
		wantCode   int
		wantName   string
	}{
		{
			name: "cache hit",
			id:   "svc-1",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "catalog:get:svc-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						*value.(*dto.ServiceResponse) = dto.ServiceResponse{ID: "svc-1", Name: "Cached", Active: true}

						return nil
					})
			},
			wantName: "Cached",
		},
		{
			name: "cache miss loads and stores",
			id:   "svc-1",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "catalog:get:svc-1", gomock.Any()).Return(cache.Nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.cache.EXPECT().Save(gomock.Any(), "catalog:get:svc-1", gomock.Any(), 3600).Return(nil)
			},
			wantName: "Cleaning",
		},
		{
			name: "not found",
			id:   "svc-9",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Service{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:       "inactive hidden from customers",
			id:         "svc-2",
			activeOnly: true,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(hidden, nil)
				f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), tt.id, tt.activeOnly)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantName, res.Name)
		})
	}
}

func TestCatalogService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "successful deletion",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.bookings.EXPECT().ExistForService(gomock.Any(), "svc-1").Return(false, nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
				f.cache.EXPECT().Delete(gomock.Any(), "catalog:get:svc-1").Return(nil)
				f.cache.EXPECT().Clear(gomock.Any(), "catalog:gets:*").Return(nil)
			},
		},
		{
			name: "service has bookings",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.bookings.EXPECT().ExistForService(gomock.Any(), "svc-1").Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "not found",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(userContext(), "svc-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestCatalogService_Toggle(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Service{ID: "svc-1", Active: false, Layout: []byte(validLayout)}, nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Equal(t, true, fields[model.FieldActive])
			assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

			return nil
		})
	f.cache.EXPECT().Delete(gomock.Any(), "catalog:get:svc-1").Return(nil)
	f.cache.EXPECT().Clear(gomock.Any(), "catalog:gets:*").Return(nil)

	active, err := f.svc.Toggle(userContext(), "svc-1")

	assert.NoError(t, err)
	assert.True(t, active)
}

func TestCatalogService_UpdateEmpty(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Update(userContext(), dto.UpdateServiceRequest{}, "svc-1")

	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestCatalogService_BlockSchemas(t *testing.T) {
	f := newFixture(t)

	schemas := f.svc.BlockSchemas(context.Background())

	assert.Len(t, schemas, 6)
}
