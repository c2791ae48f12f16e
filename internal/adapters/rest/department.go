package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
)

type DepartmentDTO struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDepartmentRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=128"`
}

type UpdateDepartmentRequest struct {
	Code *string `json:"code" validate:"omitempty,max=32"`
	Name *string `json:"name" validate:"omitempty,max=128"`
}

// RequiredConfigDTO は規則スナップショットの表現です。
type RequiredConfigDTO struct {
	ID            string    `json:"id"`
	DepartmentID  string    `json:"department_id"`
	ScheduleID    string    `json:"schedule_id"`
	FlexSettingID string    `json:"flex_setting_id,omitempty"`
	ActiveDay     string    `json:"active_day"`
	RequiredIn    string    `json:"required_in"`
	RequiredOut   string    `json:"required_out"`
	FlexMinutes   int       `json:"flex_minutes"`
	DayCutoff     string    `json:"day_cutoff"`
	EffectiveFrom string    `json:"effective_from"`
	EffectiveTo   *string   `json:"effective_to,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	result, err := h.departments.ListDepartments(r.Context(), department.ListDepartmentsInput{
		PageSize:  page.size,
		PageToken: page.token,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]DepartmentDTO, 0, len(result.Departments))
	for _, d := range result.Departments {
		items = append(items, toDepartmentDTO(d))
	}
	writeJSON(w, http.StatusOK, ListResponse[DepartmentDTO]{Items: items, NextPageToken: result.NextPageToken})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req CreateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.departments.CreateDepartment(r.Context(), department.CreateDepartmentInput{Code: req.Code, Name: req.Name})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDepartmentDTO(d))
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	d, err := h.departments.GetDepartment(r.Context(), department.GetDepartmentInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentDTO(d))
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req UpdateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.departments.UpdateDepartment(r.Context(), department.UpdateDepartmentInput{
		ID:   chi.URLParam(r, "id"),
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentDTO(d))
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.departments.DeleteDepartment(r.Context(), department.DeleteDepartmentInput{ID: chi.URLParam(r, "id")}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRequiredConfigs は部門の規則スナップショット履歴を返します。
func (h *Handler) ListRequiredConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]RequiredConfigDTO, 0, len(configs))
	for _, c := range configs {
		items = append(items, toRequiredConfigDTO(c))
	}
	writeJSON(w, http.StatusOK, ListResponse[RequiredConfigDTO]{Items: items})
}

func toDepartmentDTO(d *department.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toRequiredConfigDTO(c *ruleconfig.RequiredConfig) RequiredConfigDTO {
	dto := RequiredConfigDTO{
		ID:            c.ID,
		DepartmentID:  c.DepartmentID,
		ScheduleID:    c.ScheduleID,
		FlexSettingID: c.FlexSettingID,
		ActiveDay:     c.ActiveDay.String(),
		RequiredIn:    c.RequiredIn.String(),
		RequiredOut:   c.RequiredOut.String(),
		FlexMinutes:   c.FlexMinutes,
		DayCutoff:     c.DayCutoff.String(),
		EffectiveFrom: c.EffectiveFrom.Format(dateLayout),
		CreatedAt:     c.CreatedAt,
	}
	if c.EffectiveTo != nil {
		to := c.EffectiveTo.Format(dateLayout)
		dto.EffectiveTo = &to
	}
	return dto
}
