package tasks

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler manages task endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTaskRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  string  `json:"description" validate:"max=2000"`
	AssignedToID *int64  `json:"assignedToId" validate:"omitempty,gt=0"`
	Status       *Status `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

type updateTaskRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	AssignedToID *int64  `json:"assignedToId" validate:"omitempty,gt=0"`
	Status       *Status `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), *actor, CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		Status:       req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	tasks, err := h.service.List(r.Context(), *actor)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), *actor, id, UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		Status:       req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor := shared.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), *actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Task #"+strconv.FormatInt(id, 10)+" deleted successfully")
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid task id")
		return 0, false
	}
	return id, true
}
