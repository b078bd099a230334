package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/history"
	"gitlab.com/develevate.net/internal/handlers"
	"gitlab.com/develevate.net/internal/handlers/response"
	"gitlab.com/develevate.net/internal/static/errs"
)

// HistoryHandler serves the run history of the authenticated user
type HistoryHandler struct {
	history history.IHistoryService
	logger  primary.Logger
}

func NewHistoryHandler(historyService history.IHistoryService, logger primary.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: historyService,
		logger:  logger,
	}
}

func (h *HistoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/problems/{problemId}/history", h.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/history/{runId}", h.GetRun).Methods(http.MethodGet)
}

// ListRuns lists the caller's runs of a problem. Optional query: limit
func (h *HistoryHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	userID, _ := handlers.UserIDFromContext(r.Context())
	problemID := mux.Vars(r)["problemId"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid limit", StatusCode: http.StatusBadRequest})
			return
		}
		limit = n
	}

	records, err := h.history.ListRuns(r.Context(), userID, problemID, limit)
	if err != nil {
		h.logger.Error("Failed to list runs", "problemId", problemID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list runs", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, records)
}

func (h *HistoryHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	userID, _ := handlers.UserIDFromContext(r.Context())
	runID, err := uuid.Parse(mux.Vars(r)["runId"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid run ID", StatusCode: http.StatusBadRequest})
		return
	}

	record, err := h.history.GetRun(r.Context(), userID, runID)
	if err != nil {
		if errors.Is(err, errs.ErrRunNotFound) {
			response.WriteError(w, response.ErrorMessage{Message: "Run not found", StatusCode: http.StatusNotFound})
			return
		}
		h.logger.Error("Failed to get run", "runId", runID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get run", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, record)
}
