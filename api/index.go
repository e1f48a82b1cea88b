package handler

import (
	"net/http"
	"sync"

	"homecare/config"
	"homecare/di"
	"homecare/shared/logger"
	httpTransport "homecare/transport/http"
)

var (
	server *httpTransport.HTTP
	once   sync.Once
)

// Handler is the serverless entry point. The dependency graph is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		logger.InitLogger()
		logger.SetLogLevel(config.Get())

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
