package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/rbac"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler serves the audit log endpoint. Owner and admin only.
type Handler struct {
	logger   *slog.Logger
	recorder *Recorder
	policy   *rbac.Policy
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, recorder *Recorder, policy *rbac.Policy) *Handler {
	return &Handler{logger: logger, recorder: recorder, policy: policy}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.exportCSV)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	if decision := h.policy.Authorize(*actor, shared.ActionViewAuditLog, rbac.Target{}); !decision.Allowed {
		httpx.RespondError(w, decision.Err())
		return
	}

	h.recorder.Log(r.Context(), *actor, shared.ActionViewAuditLog, 0, "")

	entries, err := h.recorder.FindAll(r.Context())
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	if decision := h.policy.Authorize(*actor, shared.ActionViewAuditLog, rbac.Target{}); !decision.Allowed {
		httpx.RespondError(w, decision.Err())
		return
	}

	filters, err := exportFiltersFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	h.recorder.Log(r.Context(), *actor, shared.ActionViewAuditLog, 0, "export=csv")

	entries, err := h.recorder.FindAll(r.Context())
	if err != nil {
		h.logger.Error("export audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
	if err := WriteCSV(w, entries, filters); err != nil {
		h.logger.Error("write audit csv", slog.Any("error", err))
	}
}

func exportFiltersFromQuery(r *http.Request) (ExportFilters, error) {
	var filters ExportFilters
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, fmt.Errorf("from: %w", err)
		}
		filters.From = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, fmt.Errorf("to: %w", err)
		}
		filters.To = to
	}
	filters.Action = shared.Action(query.Get("action"))
	return filters, nil
}
