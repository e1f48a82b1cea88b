package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"homecare/internal/handlers/health"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func serve(handler health.Handler, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	handler.Router(router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	return recorder
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     health.Checks
		wantStatus int
		wantBody   string
	}{
		{
			name: "all dependencies up",
			checks: health.Checks{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"data":{"status":"ok","dependencies":{"postgres":"ok","redis":"ok"}}}`,
		},
		{
			name: "redis down",
			checks: health.Checks{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"data":{"status":"unhealthy","dependencies":{"postgres":"ok","redis":"connection refused"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(health.New(tt.checks), "/health/ready")

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestHandler_Drain(t *testing.T) {
	handler := health.New(health.Checks{})

	assert.Equal(t, http.StatusOK, serve(handler, "/health").Code)

	handler.Drain()

	assert.Equal(t, http.StatusServiceUnavailable, serve(handler, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(handler, "/health/ready").Code)
}
