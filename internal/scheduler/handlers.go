package scheduler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SHXZ7/autofloww/internal/httpapi/response"
	"github.com/SHXZ7/autofloww/internal/webhookstore"
)

// Handler exposes the scheduler's HTTP surface from spec §6, grounded
// on the teacher's chi-routed handlers.
type Handler struct {
	registry *Registry
	store    *webhookstore.Store
	logger   *slog.Logger
}

func NewHandler(registry *Registry, store *webhookstore.Store, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, store: store, logger: logger}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/schedule", h.handleRegister)
	r.Post("/schedule/stop/{workflow_id}", h.handleStop)
	r.Get("/schedule/list", h.handleList)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	workflowID := r.URL.Query().Get("workflow_id")
	cronExpr := r.URL.Query().Get("cron")
	if workflowID == "" || cronExpr == "" {
		response.BadRequest(w, h.logger, "workflow_id and cron are required")
		return
	}

	wf, ok := h.store.Get(workflowID)
	if !ok {
		response.NotFound(w, h.logger, "no workflow registered under this id")
		return
	}

	if err := h.registry.Register(workflowID, cronExpr, wf); err != nil {
		response.BadRequest(w, h.logger, err.Error())
		return
	}
	response.Message(w, h.logger, http.StatusOK, "schedule registered")
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflow_id")
	if err := h.registry.StopJob(workflowID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, h.logger, err.Error())
			return
		}
		response.InternalError(w, h.logger, err.Error())
		return
	}
	response.Message(w, h.logger, http.StatusOK, "schedule stopped")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	jobs := h.registry.List()
	response.JSON(w, h.logger, http.StatusOK, map[string]any{
		"scheduled_workflows": jobs,
		"count":               len(jobs),
	})
}
