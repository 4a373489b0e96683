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

type EmployeeHandler struct {
	client *dashboard.Client
	logger *zap.Logger
}

func NewEmployeeHandler(client *dashboard.Client, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{client: client, logger: logger}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.client.SearchEmployees(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, employees)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	employee, err := h.client.Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	if employee == nil {
		respond.Error(w, r, http.StatusNotFound, "employee not found")
		return
	}
	respond.JSON(w, r, http.StatusOK, employee)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.EmployeeFields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	employee, err := h.client.CreateEmployee(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/employees/"+employee.ID)
	respond.JSON(w, r, http.StatusCreated, employee)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.EmployeePatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	employee, err := h.client.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, employee)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w)
}

type DashboardHandler struct {
	client *dashboard.Client
	logger *zap.Logger
}

func NewDashboardHandler(client *dashboard.Client, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{client: client, logger: logger}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.client.Summary(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, summary)
}
