package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/schema"
)

// TablesResponse is the response body for GET /api/schema/tables.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// SchemaHandler serves table discovery for selection UIs.
type SchemaHandler struct {
	provider *schema.Provider
	logger   *zap.Logger
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(provider *schema.Provider, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{provider: provider, logger: logger}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema/tables", h.Tables)
}

// Tables handles GET /api/schema/tables requests. Returns the queryable
// table names with the ignore-list already applied.
func (h *SchemaHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.provider.ListTables(r.Context())
	if err != nil {
		h.logger.Error("table listing failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "database_unreachable", apperrors.UserMessage(err))
		return
	}
	if tables == nil {
		tables = []string{}
	}

	if err := WriteJSON(w, http.StatusOK, TablesResponse{Tables: tables}); err != nil {
		h.logger.Error("Failed to encode tables response", zap.Error(err))
	}
}
