package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
)

// ScanRequest は打刻要求です。
type ScanRequest struct {
	BadgeID   string     `json:"badge_id" validate:"required,max=64"`
	DeviceID  string     `json:"device_id" validate:"omitempty,max=64"`
	EventTime *time.Time `json:"event_time"`
}

// ScanResponse は打刻処理の結果です。
type ScanResponse struct {
	Accepted        bool   `json:"accepted"`
	Reason          string `json:"reason,omitempty"`
	EmployeeName    string `json:"employee_name,omitempty"`
	AttendanceID    string `json:"attendance_id,omitempty"`
	WorkDate        string `json:"work_date,omitempty"`
	ScanKind        string `json:"scan_kind,omitempty"`
	ArrivalStatus   string `json:"arrival_status,omitempty"`
	DepartureStatus string `json:"departure_status,omitempty"`
}

// AttendanceDailyDTO は勤怠集計の表現です。
type AttendanceDailyDTO struct {
	ID               string     `json:"id"`
	BadgeID          string     `json:"badge_id"`
	WorkDate         string     `json:"work_date"`
	RequiredConfigID string     `json:"required_config_id,omitempty"`
	FirstIn          *time.Time `json:"first_in,omitempty"`
	LastOut          *time.Time `json:"last_out,omitempty"`
	ArrivalStatus    string     `json:"arrival_status"`
	DepartureStatus  string     `json:"departure_status"`
	ExceptionFlags   string     `json:"exception_flags,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UpdateAttendanceDailyRequest は勤怠集計の手動修正です。省略したフィールドは変更しません。
type UpdateAttendanceDailyRequest struct {
	FirstIn         *time.Time `json:"first_in"`
	LastOut         *time.Time `json:"last_out"`
	ArrivalStatus   *string    `json:"arrival_status" validate:"omitempty,oneof=NORMAL FLEX LATE"`
	DepartureStatus *string    `json:"departure_status" validate:"omitempty,oneof=NORMAL EARLY MISSING"`
	ExceptionFlags  *string    `json:"exception_flags" validate:"omitempty,max=255"`
}

// ScanEventDTO は打刻の生記録です。
type ScanEventDTO struct {
	ID        string    `json:"id"`
	BadgeID   string    `json:"badge_id"`
	DeviceID  string    `json:"device_id"`
	EventTime time.Time `json:"event_time"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse はページング付き一覧の応答です。
type ListResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// ProcessScan は打刻を処理します。拒否された打刻も 200 で結果を返します。
func (h *Handler) ProcessScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !h.decode(w, r, &req) {
		return
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = h.defaultDeviceID
	}
	eventTime := h.now()
	if req.EventTime != nil {
		eventTime = *req.EventTime
	}

	outcome, err := h.scanner.ProcessScan(r.Context(), attendance.ScanInput{
		BadgeID:   req.BadgeID,
		DeviceID:  deviceID,
		EventTime: eventTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := ScanResponse{
		Accepted:     outcome.Accepted,
		Reason:       string(outcome.Reason),
		EmployeeName: outcome.EmployeeName,
	}
	if outcome.Accepted {
		resp.AttendanceID = outcome.AttendanceID
		resp.WorkDate = outcome.WorkDate.Format(dateLayout)
		resp.ScanKind = string(outcome.Kind)
		resp.ArrivalStatus = outcome.ArrivalStatus.String()
		resp.DepartureStatus = outcome.DepartureStatus.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAttendanceDaily は勤怠集計の一覧を返します。
func (h *Handler) ListAttendanceDaily(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	workDate, err := parseDateQuery(r, "work_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	result, err := h.attendance.ListDaily(r.Context(), attendance.ListDailyInput{
		BadgeID:   r.URL.Query().Get("badge_id"),
		WorkDate:  workDate,
		From:      from,
		To:        to,
		PageSize:  page.size,
		PageToken: page.token,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]AttendanceDailyDTO, 0, len(result.Records))
	for _, d := range result.Records {
		items = append(items, toAttendanceDailyDTO(d))
	}
	writeJSON(w, http.StatusOK, ListResponse[AttendanceDailyDTO]{Items: items, NextPageToken: result.NextPageToken})
}

// GetAttendanceDaily は勤怠集計を 1 件返します。
func (h *Handler) GetAttendanceDaily(w http.ResponseWriter, r *http.Request) {
	d, err := h.attendance.GetDaily(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDailyDTO(d))
}

// UpdateAttendanceDaily は勤怠集計を手動修正します。
func (h *Handler) UpdateAttendanceDaily(w http.ResponseWriter, r *http.Request) {
	var req UpdateAttendanceDailyRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes := attendance.DailyUpdate{
		FirstIn:        req.FirstIn,
		LastOut:        req.LastOut,
		ExceptionFlags: req.ExceptionFlags,
	}
	if req.ArrivalStatus != nil {
		s, ok := parseArrivalStatus(*req.ArrivalStatus)
		if !ok {
			writeDomainError(w, attendance.ErrInvalidArrivalStatus)
			return
		}
		changes.ArrivalStatus = &s
	}
	if req.DepartureStatus != nil {
		s, ok := parseDepartureStatus(*req.DepartureStatus)
		if !ok {
			writeDomainError(w, attendance.ErrInvalidDepartureStatus)
			return
		}
		changes.DepartureStatus = &s
	}

	d, err := h.attendance.UpdateDaily(r.Context(), attendance.UpdateDailyInput{
		ID:      chi.URLParam(r, "id"),
		Changes: changes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDailyDTO(d))
}

// DeleteAttendanceDaily は勤怠集計を削除します。
func (h *Handler) DeleteAttendanceDaily(w http.ResponseWriter, r *http.Request) {
	if err := h.attendance.DeleteDaily(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListScanEvents は打刻記録の一覧を返します。from/to は RFC3339 形式です。
func (h *Handler) ListScanEvents(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	result, err := h.attendance.ListScanEvents(r.Context(), attendance.ListScanEventsInput{
		BadgeID:   r.URL.Query().Get("badge_id"),
		From:      from,
		To:        to,
		PageSize:  page.size,
		PageToken: page.token,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ScanEventDTO, 0, len(result.Events))
	for _, e := range result.Events {
		items = append(items, ScanEventDTO{
			ID:        e.ID,
			BadgeID:   e.BadgeID,
			DeviceID:  e.DeviceID,
			EventTime: e.EventTime,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ListResponse[ScanEventDTO]{Items: items, NextPageToken: result.NextPageToken})
}

func toAttendanceDailyDTO(d *attendance.Daily) AttendanceDailyDTO {
	return AttendanceDailyDTO{
		ID:               d.ID,
		BadgeID:          d.BadgeID,
		WorkDate:         d.WorkDate.Format(dateLayout),
		RequiredConfigID: d.RequiredConfigID,
		FirstIn:          d.FirstIn,
		LastOut:          d.LastOut,
		ArrivalStatus:    d.ArrivalStatus.String(),
		DepartureStatus:  d.DepartureStatus.String(),
		ExceptionFlags:   d.ExceptionFlags,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func parseArrivalStatus(raw string) (attendance.ArrivalStatus, bool) {
	for _, s := range []attendance.ArrivalStatus{attendance.ArrivalNormal, attendance.ArrivalFlex, attendance.ArrivalLate} {
		if s.String() == raw {
			return s, true
		}
	}
	return 0, false
}

func parseDepartureStatus(raw string) (attendance.DepartureStatus, bool) {
	for _, s := range []attendance.DepartureStatus{attendance.DepartureNormal, attendance.DepartureEarly, attendance.DepartureMissing} {
		if s.String() == raw {
			return s, true
		}
	}
	return 0, false
}
