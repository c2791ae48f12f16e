package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
)

// Scanner は打刻を処理するエンジンの抽象です。
type Scanner interface {
	ProcessScan(ctx context.Context, in attendance.ScanInput) (*attendance.Outcome, error)
}

// AttendanceGrpcHandler は AttendanceService の gRPC 実装です。
type AttendanceGrpcHandler struct {
	scanner         Scanner
	svc             attendance.UseCase
	defaultDeviceID string
	now             func() time.Time
}

var _ AttendanceServiceServer = (*AttendanceGrpcHandler)(nil)

// NewAttendanceGrpcHandler は AttendanceGrpcHandler を生成します。
// defaultDeviceID は device_id が省略された打刻に用いられます。
func NewAttendanceGrpcHandler(scanner Scanner, svc attendance.UseCase, defaultDeviceID string) *AttendanceGrpcHandler {
	return &AttendanceGrpcHandler{
		scanner:         scanner,
		svc:             svc,
		defaultDeviceID: defaultDeviceID,
		now:             time.Now,
	}
}

// ProcessScan は打刻を処理します。拒否された打刻もエラーではなく結果として返します。
func (h *AttendanceGrpcHandler) ProcessScan(ctx context.Context, req *ProcessScanRequest) (*ProcessScanResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.BadgeID) == "" {
		return nil, status.Error(codes.InvalidArgument, "badge_id is required")
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = h.defaultDeviceID
	}
	eventTime := h.now()
	if req.EventTime != nil {
		eventTime = *req.EventTime
	}

	outcome, err := h.scanner.ProcessScan(ctx, attendance.ScanInput{
		BadgeID:   req.BadgeID,
		DeviceID:  deviceID,
		EventTime: eventTime,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return toProcessScanResponse(outcome), nil
}

// GetAttendanceDaily は勤怠集計を取得します。
func (h *AttendanceGrpcHandler) GetAttendanceDaily(ctx context.Context, req *GetAttendanceDailyRequest) (*GetAttendanceDailyResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	record, err := h.svc.GetDaily(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &GetAttendanceDailyResponse{Record: toAttendanceDaily(record)}, nil
}

// ListAttendanceDaily は勤怠集計の一覧を返します。
func (h *AttendanceGrpcHandler) ListAttendanceDaily(ctx context.Context, req *ListAttendanceDailyRequest) (*ListAttendanceDailyResponse, error) {
	if req == nil {
		req = &ListAttendanceDailyRequest{}
	}

	workDate, err := parseDate(req.WorkDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("work_date: %v", err))
	}
	from, err := parseDate(req.From)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("from: %v", err))
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("to: %v", err))
	}

	result, err := h.svc.ListDaily(ctx, attendance.ListDailyInput{
		BadgeID:   req.BadgeID,
		WorkDate:  workDate,
		From:      from,
		To:        to,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	records := make([]*AttendanceDaily, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, toAttendanceDaily(r))
	}

	return &ListAttendanceDailyResponse{Records: records, NextPageToken: result.NextPageToken}, nil
}

// ListScanEvents は打刻記録の一覧を返します。
func (h *AttendanceGrpcHandler) ListScanEvents(ctx context.Context, req *ListScanEventsRequest) (*ListScanEventsResponse, error) {
	if req == nil {
		req = &ListScanEventsRequest{}
	}

	result, err := h.svc.ListScanEvents(ctx, attendance.ListScanEventsInput{
		BadgeID:   req.BadgeID,
		From:      req.From,
		To:        req.To,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	events := make([]*ScanEvent, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, &ScanEvent{
			ID:        e.ID,
			BadgeID:   e.BadgeID,
			DeviceID:  e.DeviceID,
			EventTime: e.EventTime,
			CreatedAt: e.CreatedAt,
		})
	}

	return &ListScanEventsResponse{Events: events, NextPageToken: result.NextPageToken}, nil
}

func toProcessScanResponse(o *attendance.Outcome) *ProcessScanResponse {
	if o == nil {
		return &ProcessScanResponse{}
	}
	resp := &ProcessScanResponse{
		Accepted:     o.Accepted,
		Reason:       string(o.Reason),
		EmployeeName: o.EmployeeName,
	}
	if !o.Accepted {
		return resp
	}
	resp.AttendanceID = o.AttendanceID
	resp.WorkDate = o.WorkDate.Format(dateLayout)
	resp.ScanKind = string(o.Kind)
	resp.ArrivalStatus = o.ArrivalStatus.String()
	resp.DepartureStatus = o.DepartureStatus.String()
	return resp
}

func toAttendanceDaily(d *attendance.Daily) *AttendanceDaily {
	if d == nil {
		return nil
	}
	return &AttendanceDaily{
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

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
