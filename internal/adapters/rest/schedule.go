package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// ScheduleDTO は班表の表現です。active_day は MON..SUN もしくは ALL です。
type ScheduleDTO struct {
	ID           string     `json:"id"`
	DepartmentID string     `json:"department_id"`
	Name         string     `json:"name"`
	ActiveDay    string     `json:"active_day"`
	RequiredIn   string     `json:"required_in"`
	RequiredOut  string     `json:"required_out"`
	DayCutoff    string     `json:"day_cutoff"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    string     `json:"deleted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateScheduleRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=128"`
	ActiveDay    string `json:"active_day" validate:"required"`
	RequiredIn   string `json:"required_in" validate:"required"`
	RequiredOut  string `json:"required_out" validate:"required"`
	DayCutoff    string `json:"day_cutoff" validate:"required"`
}

type UpdateScheduleRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	ActiveDay   *string `json:"active_day"`
	RequiredIn  *string `json:"required_in"`
	RequiredOut *string `json:"required_out"`
	DayCutoff   *string `json:"day_cutoff"`
}

type FlexSettingDTO struct {
	ID           string     `json:"id"`
	DepartmentID string     `json:"department_id"`
	FlexMinutes  int        `json:"flex_minutes"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    string     `json:"deleted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateFlexSettingRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	FlexMinutes  *int   `json:"flex_minutes" validate:"required,min=0,max=1440"`
}

type UpdateFlexSettingRequest struct {
	FlexMinutes *int `json:"flex_minutes" validate:"omitempty,min=0,max=1440"`
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	includeDeleted, err := parseBoolQuery(r, "include_deleted")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	result, err := h.schedules.ListSchedules(r.Context(), schedule.ListSchedulesInput{
		DepartmentID:   r.URL.Query().Get("department_id"),
		IncludeDeleted: includeDeleted,
		PageSize:       page.size,
		PageToken:      page.token,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ScheduleDTO, 0, len(result.Schedules))
	for _, s := range result.Schedules {
		items = append(items, toScheduleDTO(s))
	}
	writeJSON(w, http.StatusOK, ListResponse[ScheduleDTO]{Items: items, NextPageToken: result.NextPageToken})
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}

	day, err := workday.ParseActiveDay(req.ActiveDay)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	times, err := parseTimes(req.RequiredIn, req.RequiredOut, req.DayCutoff)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s, err := h.schedules.CreateSchedule(r.Context(), schedule.CreateScheduleInput{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		ActiveDay:    day,
		RequiredIn:   times[0],
		RequiredOut:  times[1],
		DayCutoff:    times[2],
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleDTO(s))
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	s, err := h.schedules.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(s))
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpdateScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes := schedule.ScheduleUpdate{Name: req.Name}
	if req.ActiveDay != nil {
		day, err := workday.ParseActiveDay(*req.ActiveDay)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		changes.ActiveDay = &day
	}
	var err error
	if changes.RequiredIn, err = parseOptionalTime(req.RequiredIn); err != nil {
		writeDomainError(w, err)
		return
	}
	if changes.RequiredOut, err = parseOptionalTime(req.RequiredOut); err != nil {
		writeDomainError(w, err)
		return
	}
	if changes.DayCutoff, err = parseOptionalTime(req.DayCutoff); err != nil {
		writeDomainError(w, err)
		return
	}

	s, err := h.schedules.UpdateSchedule(r.Context(), schedule.UpdateScheduleInput{
		ID:      chi.URLParam(r, "id"),
		Changes: changes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(s))
}

// DeleteSchedule は班表を論理削除します。削除者はクエリ deleted_by で指定します。
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	err := h.schedules.DeleteSchedule(r.Context(), schedule.DeleteInput{
		ID:        chi.URLParam(r, "id"),
		DeletedBy: r.URL.Query().Get("deleted_by"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListFlexSettings(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	includeDeleted, err := parseBoolQuery(r, "include_deleted")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	result, err := h.schedules.ListFlexSettings(r.Context(), schedule.ListFlexSettingsInput{
		DepartmentID:   r.URL.Query().Get("department_id"),
		IncludeDeleted: includeDeleted,
		PageSize:       page.size,
		PageToken:      page.token,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]FlexSettingDTO, 0, len(result.FlexSettings))
	for _, f := range result.FlexSettings {
		items = append(items, toFlexSettingDTO(f))
	}
	writeJSON(w, http.StatusOK, ListResponse[FlexSettingDTO]{Items: items, NextPageToken: result.NextPageToken})
}

func (h *Handler) CreateFlexSetting(w http.ResponseWriter, r *http.Request) {
	var req CreateFlexSettingRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := h.schedules.CreateFlexSetting(r.Context(), schedule.CreateFlexSettingInput{
		DepartmentID: req.DepartmentID,
		Minutes:      *req.FlexMinutes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFlexSettingDTO(f))
}

func (h *Handler) GetFlexSetting(w http.ResponseWriter, r *http.Request) {
	f, err := h.schedules.GetFlexSetting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlexSettingDTO(f))
}

func (h *Handler) UpdateFlexSetting(w http.ResponseWriter, r *http.Request) {
	var req UpdateFlexSettingRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := h.schedules.UpdateFlexSetting(r.Context(), schedule.UpdateFlexSettingInput{
		ID:      chi.URLParam(r, "id"),
		Changes: schedule.FlexSettingUpdate{Minutes: req.FlexMinutes},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlexSettingDTO(f))
}

// DeleteFlexSetting は弾性設定を論理削除します。
func (h *Handler) DeleteFlexSetting(w http.ResponseWriter, r *http.Request) {
	err := h.schedules.DeleteFlexSetting(r.Context(), schedule.DeleteInput{
		ID:        chi.URLParam(r, "id"),
		DeletedBy: r.URL.Query().Get("deleted_by"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTimes(raw ...string) ([]workday.TimeOfDay, error) {
	out := make([]workday.TimeOfDay, len(raw))
	for i, value := range raw {
		t, err := workday.ParseTimeOfDay(value)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func parseOptionalTime(raw *string) (*workday.TimeOfDay, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := workday.ParseTimeOfDay(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toScheduleDTO(s *schedule.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:           s.ID,
		DepartmentID: s.DepartmentID,
		Name:         s.Name,
		ActiveDay:    s.ActiveDay.String(),
		RequiredIn:   s.RequiredIn.String(),
		RequiredOut:  s.RequiredOut.String(),
		DayCutoff:    s.DayCutoff.String(),
		IsDeleted:    s.IsDeleted,
		DeletedAt:    s.DeletedAt,
		DeletedBy:    s.DeletedBy,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toFlexSettingDTO(f *schedule.FlexSetting) FlexSettingDTO {
	return FlexSettingDTO{
		ID:           f.ID,
		DepartmentID: f.DepartmentID,
		FlexMinutes:  f.Minutes,
		IsDeleted:    f.IsDeleted,
		DeletedAt:    f.DeletedAt,
		DeletedBy:    f.DeletedBy,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}
