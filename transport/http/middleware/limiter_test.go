package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"homecare/config"
	"homecare/infras/otel/mocks"
	"homecare/shared/cache"
	"homecare/shared/constant"
	"homecare/transport/http/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func limited(t *testing.T, server *miniredis.Miniredis) http.Handler {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))

	return app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, ip string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/v1/services", nil)
	request.RemoteAddr = ip + ":5000"

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestRateLimit(t *testing.T) {
	handler := limited(t, miniredis.RunT(t))

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1").Code)

	second := hit(handler, "10.0.0.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get(constant.RequestHeaderRateLimitRemaining))

	third := hit(handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2").Code)
}

func TestRateLimit_CacheDownLetsTrafficThrough(t *testing.T) {
	server := miniredis.RunT(t)
	handler := limited(t, server)

	server.Close()

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1").Code)
}
