package runs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/presenter"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/handlers"
	"gitlab.com/develevate.net/internal/handlers/response"
	"gitlab.com/develevate.net/internal/static/errs"
)

const (
	maxCodeBytes = 256 << 10

	hiddenErrorMessage = "runtime error"
)

// RunHandler exposes run sessions to the practice UI
type RunHandler struct {
	sessions presenter.IRunSessionService
	logger   primary.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(sessions presenter.IRunSessionService, logger primary.Logger) *RunHandler {
	return &RunHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers the API routes for RunHandler
func (h *RunHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/problems/{problemId}/runs", h.CreateRun).Methods(http.MethodPost)
	router.HandleFunc("/runs/{sessionId}", h.GetRun).Methods(http.MethodGet)
	router.HandleFunc("/runs/{sessionId}/rerun", h.RunAgain).Methods(http.MethodPost)
	router.HandleFunc("/runs/{sessionId}/close", h.Close).Methods(http.MethodPost)
	router.HandleFunc("/runs/{sessionId}", h.DeleteRun).Methods(http.MethodDelete)
}

// CreateRun opens a session for the submitted code and starts the first run
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	userID, _ := handlers.UserIDFromContext(r.Context())
	problemID := mux.Vars(r)["problemId"]

	var req CreateRunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCodeBytes)).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	submission := domain.NewSubmission(userID, req.Code, req.Language, problemID)
	session, err := h.sessions.Open(r.Context(), submission)
	if err != nil {
		h.writeServiceError(w, "Failed to open run", err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, CreateRunResponse{SessionID: session.ID})
}

// GetRun returns the latest view of a session
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.WriteSuccess(w, redact(session.View()))
}

// RunAgain re-runs the session's submission
func (h *RunHandler) RunAgain(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := session.RunAgain(); err != nil {
		h.writeServiceError(w, "Failed to re-run", err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, redact(session.View()))
}

// Close hides the session's results
func (h *RunHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := session.Close(); err != nil {
		h.writeServiceError(w, "Failed to close results", err)
		return
	}
	response.WriteSuccess(w, redact(session.View()))
}

// DeleteRun cancels and forgets a session
func (h *RunHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Remove(session.ID); err != nil {
		h.writeServiceError(w, "Failed to delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves the session of the request and checks it belongs to the caller
func (h *RunHandler) lookup(w http.ResponseWriter, r *http.Request) (*presenter.Session, bool) {
	sessionIDStr := mux.Vars(r)["sessionId"]
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		h.logger.Error("Invalid session ID", "id", sessionIDStr)
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	session, err := h.sessions.Get(sessionID)
	if err != nil {
		h.writeServiceError(w, "Failed to get run", err)
		return nil, false
	}

	userID, _ := handlers.UserIDFromContext(r.Context())
	if session.Submission().UserID != userID {
		writeError(w, http.StatusNotFound, "Run not found")
		return nil, false
	}
	return session, true
}

func (h *RunHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, errs.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Run not found")
	case errors.Is(err, errs.ErrProblemNotFound):
		writeError(w, http.StatusNotFound, "Problem not found")
	case errors.Is(err, errs.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrEmptySubmission), errors.Is(err, errs.ErrNoTestCases):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrJudgeUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	response.WriteError(w, response.ErrorMessage{Message: msg, StatusCode: status})
}

// redact hides the data of hidden test cases from the view. Error text may
// echo the input through stderr, so it is replaced as well.
func redact(view domain.RunView) domain.RunView {
	if view.Result == nil {
		return view
	}
	result := *view.Result
	result.Verdicts = make([]domain.Verdict, len(view.Result.Verdicts))
	for i, v := range view.Result.Verdicts {
		if v.TestCase.IsHidden {
			v.TestCase.Input = ""
			v.TestCase.ExpectedOutput = ""
			v.Result.ActualOutput = nil
			if v.Result.Error != nil {
				msg := hiddenErrorMessage
				v.Result.Error = &msg
			}
		}
		result.Verdicts[i] = v
	}
	view.Result = &result
	return view
}
