package handler

import (
	"net/http"
	"sync"

	"resort/config"
	"resort/di"
	"resort/shared/logger"
)

var app = sync.OnceValue(func() http.Handler {
	logger.Init(config.Get())

	return di.InitializeService()
})

// Handler is the serverless entrypoint. The container is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	app().ServeHTTP(w, r)
}
