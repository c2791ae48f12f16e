package handler

import "time"

const dateLayout = "2006-01-02"

// ProcessScanRequest は打刻要求です。EventTime を省略した場合はサーバーの現在時刻を用います。
type ProcessScanRequest struct {
	BadgeID   string     `json:"badge_id"`
	DeviceID  string     `json:"device_id,omitempty"`
	EventTime *time.Time `json:"event_time,omitempty"`
}

// ProcessScanResponse は打刻処理の結果です。
type ProcessScanResponse struct {
	Accepted        bool   `json:"accepted"`
	Reason          string `json:"reason,omitempty"`
	EmployeeName    string `json:"employee_name,omitempty"`
	AttendanceID    string `json:"attendance_id,omitempty"`
	WorkDate        string `json:"work_date,omitempty"`
	ScanKind        string `json:"scan_kind,omitempty"`
	ArrivalStatus   string `json:"arrival_status,omitempty"`
	DepartureStatus string `json:"departure_status,omitempty"`
}

// AttendanceDaily は勤怠集計の表現です。
type AttendanceDaily struct {
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

type GetAttendanceDailyRequest struct {
	ID string `json:"id"`
}

type GetAttendanceDailyResponse struct {
	Record *AttendanceDaily `json:"record"`
}

// ListAttendanceDailyRequest の日付は YYYY-MM-DD 形式です。
type ListAttendanceDailyRequest struct {
	BadgeID   string `json:"badge_id,omitempty"`
	WorkDate  string `json:"work_date,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

type ListAttendanceDailyResponse struct {
	Records       []*AttendanceDaily `json:"records"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// ScanEvent は打刻の生記録です。
type ScanEvent struct {
	ID        string    `json:"id"`
	BadgeID   string    `json:"badge_id"`
	DeviceID  string    `json:"device_id"`
	EventTime time.Time `json:"event_time"`
	CreatedAt time.Time `json:"created_at"`
}

type ListScanEventsRequest struct {
	BadgeID   string     `json:"badge_id,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	PageSize  int        `json:"page_size,omitempty"`
	PageToken string     `json:"page_token,omitempty"`
}

type ListScanEventsResponse struct {
	Events        []*ScanEvent `json:"events"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}
