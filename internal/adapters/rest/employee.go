package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
)

type EmployeeDTO struct {
	BadgeID      string    `json:"badge_id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	DepartmentID string    `json:"department_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateEmployeeRequest struct {
	BadgeID      string  `json:"badge_id" validate:"required,max=64"`
	EmployeeCode string  `json:"employee_code" validate:"required,max=32"`
	Name         string  `json:"name" validate:"required,max=128"`
	DepartmentID string  `json:"department_id" validate:"required"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateEmployeeRequest struct {
	EmployeeCode *string `json:"employee_code" validate:"omitempty,max=32"`
	Name         *string `json:"name" validate:"omitempty,max=128"`
	DepartmentID *string `json:"department_id"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	in := employee.ListEmployeesInput{
		DepartmentID: r.URL.Query().Get("department_id"),
		PageSize:     page.size,
		PageToken:    page.token,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := employee.Status(raw)
		in.Status = &status
	}

	result, err := h.employees.ListEmployees(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]EmployeeDTO, 0, len(result.Employees))
	for _, e := range result.Employees {
		items = append(items, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, ListResponse[EmployeeDTO]{Items: items, NextPageToken: result.NextPageToken})
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	e, err := h.employees.CreateEmployee(r.Context(), employee.CreateEmployeeInput{
		BadgeID:      req.BadgeID,
		EmployeeCode: req.EmployeeCode,
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Status:       toEmployeeStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{BadgeID: chi.URLParam(r, "badgeID")})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	e, err := h.employees.UpdateEmployee(r.Context(), employee.UpdateEmployeeInput{
		BadgeID:      chi.URLParam(r, "badgeID"),
		EmployeeCode: req.EmployeeCode,
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Status:       toEmployeeStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.employees.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{BadgeID: chi.URLParam(r, "badgeID")}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toEmployeeStatus(raw *string) *employee.Status {
	if raw == nil {
		return nil
	}
	status := employee.Status(*raw)
	return &status
}

func toEmployeeDTO(e *employee.Employee) EmployeeDTO {
	return EmployeeDTO{
		BadgeID:      e.BadgeID,
		EmployeeCode: e.EmployeeCode,
		Name:         e.Name,
		DepartmentID: e.DepartmentID,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
