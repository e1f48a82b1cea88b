package booking_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homecare/infras/otel/mocks"
	bookingMocks "homecare/internal/domains/booking/mocks"
	"homecare/internal/domains/booking/model/dto"
	"homecare/internal/handlers/booking"
	"homecare/internal/lifecycle"
	gDto "homecare/shared/dto"
	"homecare/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type errorBody struct {
	Error  string               `json:"error"`
	Errors []failure.FieldError `json:"errors"`
}

func newRouter(t *testing.T) (http.Handler, *bookingMocks.MockBookingService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := bookingMocks.NewMockBookingService(ctrl)

	handler := booking.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func TestHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *bookingMocks.MockBookingService)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: `{"service_id":"svc-1","booking_data":{"address":"Jl. Melati 5","booking_date":"2026-03-03","booking_time":"09:00"}}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, req dto.CreateBookingRequest) (dto.BookingResponse, error) {
						assert.Equal(t, "svc-1", req.ServiceID)
						assert.Equal(t, "Jl. Melati 5", req.BookingData["address"])

						return dto.BookingResponse{ID: "b-1", Status: lifecycle.StatusPending}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing booking data",
			body:       `{"service_id":"svc-1"}`,
			setupMock:  func(_ *bookingMocks.MockBookingService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request",
		},
		{
			name:       "empty body",
			body:       "",
			setupMock:  func(_ *bookingMocks.MockBookingService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "request body is required",
		},
		{
			name: "form errors surface per field",
			body: `{"service_id":"svc-1","booking_data":{}}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, failure.Validation("invalid booking data", []failure.FieldError{
					{Field: "address", Message: "Address is required"},
					{Field: "booking_date", Message: "Booking date is required"},
				}))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid booking data",
		},
		{
			name: "service not found",
			body: `{"service_id":"missing","booking_data":{"a":1}}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, failure.NotFound("service not found"))
			},
			wantStatus: http.StatusNotFound,
			wantError:  "service not found",
		},
		{
			name: "internal error is hidden",
			body: `{"service_id":"svc-1","booking_data":{"a":1}}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, errors.New("pq: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)
			tt.setupMock(svc)

			recorder := serve(router, http.MethodPost, "/bookings", tt.body)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, recorder).Error)
			}
		})
	}
}

func TestHandler_CreateBooking_FieldErrors(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, failure.Validation("invalid booking data", []failure.FieldError{
		{Field: "address", Message: "Address is required"},
		{Field: "phone", Message: "Phone has an invalid format"},
	}))

	recorder := serve(router, http.MethodPost, "/bookings", `{"service_id":"svc-1","booking_data":{"phone":"x"}}`)

	body := decodeError(t, recorder)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "address", body.Errors[0].Field)
	assert.Equal(t, "phone", body.Errors[1].Field)
}

func TestHandler_GetMyBookings(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetMine(gomock.Any(), gomock.Any(), lifecycle.StatusPending).DoAndReturn(
		func(_ any, params gDto.QueryParams, _ lifecycle.Status) (dto.GetBookingsResponse, error) {
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 5, params.Limit)

			return dto.GetBookingsResponse{Bookings: []dto.BookingResponse{{ID: "b-1"}}, TotalData: 6, TotalPage: 2}, nil
		})

	recorder := serve(router, http.MethodGet, "/bookings?status=PENDING&page=2&limit=5", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total_data":6`)
}

func TestHandler_GetBookingByID(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Get(gomock.Any(), "b-1").Return(dto.BookingResponse{ID: "b-1"}, nil)
	svc.EXPECT().Get(gomock.Any(), "b-2").Return(dto.BookingResponse{}, failure.NotFound("booking not found"))

	recorder := serve(router, http.MethodGet, "/bookings/b-1", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"b-1"`)

	recorder = serve(router, http.MethodGet, "/bookings/b-2", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_CancelBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *bookingMocks.MockBookingService)
		wantStatus int
	}{
		{
			name: "without a body",
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Cancel(gomock.Any(), "b-1", dto.CancelBookingRequest{}).
					Return(dto.BookingResponse{ID: "b-1", Status: lifecycle.StatusCancelled}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "with a reason",
			body: `{"cancel_reason":"plans changed"}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Cancel(gomock.Any(), "b-1", dto.CancelBookingRequest{CancelReason: "plans changed"}).
					Return(dto.BookingResponse{ID: "b-1", Status: lifecycle.StatusCancelled}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not the owner",
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Cancel(gomock.Any(), "b-1", gomock.Any()).Return(dto.BookingResponse{}, failure.Forbidden("not your booking"))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "cancel window closed",
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Cancel(gomock.Any(), "b-1", gomock.Any()).
					Return(dto.BookingResponse{}, failure.BadRequestFromString("too late to cancel"))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)
			tt.setupMock(svc)

			recorder := serve(router, http.MethodPut, "/bookings/b-1/cancel", tt.body)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestHandler_GetBookings(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), dto.AdminFilter{
		Status: lifecycle.StatusConfirmed,
		Day:    "2026-03-03",
		Search: "melati",
	}).Return(dto.GetBookingsResponse{}, nil)

	recorder := serve(router, http.MethodGet, "/admin/bookings?status=CONFIRMED&date=2026-03-03&search=melati", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_AssignWorker(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *bookingMocks.MockBookingService)
		wantStatus int
	}{
		{
			name: "assigned",
			body: `{"booking_id":"b-1","worker_id":"w-1"}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Assign(gomock.Any(), dto.AssignWorkerRequest{BookingID: "b-1", WorkerID: "w-1"}).
					Return(dto.BookingResponse{ID: "b-1", Status: lifecycle.StatusConfirmed}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "worker id required",
			body:       `{"booking_id":"b-1"}`,
			setupMock:  func(_ *bookingMocks.MockBookingService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "schedule conflict",
			body: `{"booking_id":"b-1","worker_id":"w-1"}`,
			setupMock: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().Assign(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, failure.Conflict("schedule conflict"))
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)
			tt.setupMock(svc)

			recorder := serve(router, http.MethodPost, "/admin/bookings/assign", tt.body)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestHandler_GetAvailableWorkers(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().AvailableWorkers(gomock.Any(), "b-1").Return(dto.AvailableWorkersResponse{
		BookingID: "b-1",
		Workers:   []dto.WorkerSummary{{ID: "w-1", Name: "Ayu"}},
	}, nil)

	recorder := serve(router, http.MethodGet, "/admin/bookings/b-1/available-workers", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"name":"Ayu"`)
}

func TestHandler_UpdateStatus(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().UpdateStatus(gomock.Any(), "b-1", dto.UpdateStatusRequest{Status: lifecycle.StatusInProgress}).
		Return(dto.BookingResponse{ID: "b-1", Status: lifecycle.StatusInProgress}, nil)

	recorder := serve(router, http.MethodPut, "/admin/bookings/b-1/status", `{"status":"IN_PROGRESS"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(router, http.MethodPut, "/admin/bookings/b-1/status", `{"status":"PENDING"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_AssignWorker_Traced(t *testing.T) {
	svc := bookingMocks.NewMockBookingService(gomock.NewController(t))
	tracer, recorder := mocks.NewRecordingOtel()

	handler := booking.New(svc, tracer)
	router := chi.NewRouter()
	handler.Router(router)

	conflict := failure.Conflict("schedule conflict")

	svc.EXPECT().Assign(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{ID: "b-1"}, nil)
	svc.EXPECT().Assign(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, conflict)

	serve(router, http.MethodPost, "/admin/bookings/assign", `{"booking_id":"b-1","worker_id":"w-1"}`)
	serve(router, http.MethodPost, "/admin/bookings/assign", `{"booking_id":"b-1","worker_id":"w-2"}`)

	assert.Equal(t, []string{"handler.AssignWorker", "handler.AssignWorker"}, recorder.Spans())
	assert.Equal(t, []string{"Worker w-1 assigned to booking b-1"}, recorder.Events())
	assert.Equal(t, []error{conflict}, recorder.Errors())
}
