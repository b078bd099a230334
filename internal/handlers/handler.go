package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/develevate.net/internal/handlers/response"
)

// RegisterHealth registers the unauthenticated liveness route
func RegisterHealth(router *mux.Router, serviceName string) {
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteSuccess(w, map[string]string{"status": "ok", "service": serviceName})
	}).Methods(http.MethodGet)
}
