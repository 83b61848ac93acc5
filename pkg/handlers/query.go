package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/models"
	"github.com/quipu-ai/quipu-engine/pkg/services"
)

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Question       string   `json:"question"`
	SelectedTables []string `json:"selected_tables,omitempty"`
}

// QueryHandler serves the question pipeline and the session's history and
// debug log.
type QueryHandler struct {
	engine  *services.Engine
	session *models.Session
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler bound to one session.
func NewQueryHandler(engine *services.Engine, session *models.Session, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{engine: engine, session: session, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/debug/logs", h.DebugLogs)
}

// Ask handles POST /api/ask requests. Runs the full pipeline for one
// question and returns the result.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	result, err := h.engine.Ask(r.Context(), h.session, req.Question, req.SelectedTables)
	if err != nil {
		h.logger.Error("pipeline failed", zap.String("question", req.Question), zap.Error(err))
		status, code := statusForError(err)
		_ = ErrorResponse(w, status, code, apperrors.UserMessage(err))
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode ask response", zap.Error(err))
	}
}

// History handles GET /api/history requests.
func (h *QueryHandler) History(w http.ResponseWriter, r *http.Request) {
	history := h.session.History()
	if history == nil {
		history = []*models.QueryResult{}
	}

	if err := WriteJSON(w, http.StatusOK, history); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}

// DebugLogs handles GET /api/debug/logs requests. Exposes the session's
// per-interaction records (question, SQL, raw model output, flags).
func (h *QueryHandler) DebugLogs(w http.ResponseWriter, r *http.Request) {
	logs := h.session.DebugLog()
	if logs == nil {
		logs = []*models.DebugRecord{}
	}

	if err := WriteJSON(w, http.StatusOK, logs); err != nil {
		h.logger.Error("Failed to encode debug log response", zap.Error(err))
	}
}

// statusForError maps pipeline error kinds to HTTP status and error codes.
func statusForError(err error) (int, string) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}

	switch kind {
	case apperrors.KindConnectivity:
		return http.StatusServiceUnavailable, "database_unreachable"
	case apperrors.KindGeneration:
		return http.StatusBadGateway, "generation_failed"
	case apperrors.KindQueryExecution:
		return http.StatusUnprocessableEntity, "query_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
