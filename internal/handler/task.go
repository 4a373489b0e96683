package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/dashboard"
	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
	"github.com/BuzzLyutic/team-dashboard-api/pkg/respond"
)

type TaskHandler struct {
	client *dashboard.Client
	logger *zap.Logger
}

func NewTaskHandler(client *dashboard.Client, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		client: client,
		logger: logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.TaskFields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.client.CreateTask(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.client.Task(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	if task == nil {
		respond.Error(w, r, http.StatusNotFound, "task not found")
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.client.Tasks(r.Context(), filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) ListByAssignee(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.client.TasksByAssignee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.TaskStats(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.client.UpdateTask(r.Context(), id, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.client.UpdateTaskStatus(r.Context(), id, req.Status)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w)
}

func parseTaskFilter(r *http.Request) (model.TaskFilter, error) {
	var filter model.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" && v != "all" {
		status := model.Status(v)
		if !status.Valid() {
			return filter, fmt.Errorf("unknown status %q", v)
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" && v != "all" {
		priority := model.Priority(v)
		if !priority.Valid() {
			return filter, fmt.Errorf("unknown priority %q", v)
		}
		filter.Priority = &priority
	}
	if v := q.Get("assigneeId"); v != "" && v != "all" {
		filter.AssigneeID = &v
	}
	filter.Search = q.Get("search")
	return filter, nil
}
