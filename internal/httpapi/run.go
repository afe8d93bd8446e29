package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/httpapi/response"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// Handler exposes POST /run, the one entry point that turns a posted
// Workflow into an engine execution, per spec §6.
type Handler struct {
	engine *executor.Engine
	logger *slog.Logger
}

func NewHandler(engine *executor.Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Mount attaches /run behind RequireUser.
func (h *Handler) Mount(r chi.Router) {
	r.With(RequireUser).Post("/run", h.handleRun)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var wf workflow.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		response.BadRequest(w, h.logger, "invalid workflow body")
		return
	}
	if err := wf.Validate(); err != nil {
		response.BadRequest(w, h.logger, err.Error())
		return
	}

	userID := UserID(r.Context())
	ctx := executor.WithTrigger(r.Context(), "http")
	result, err := h.engine.Run(ctx, wf, userID)
	if err != nil {
		response.JSON(w, h.logger, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	response.Message(w, h.logger, http.StatusOK, result)
}
