package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
)

type stubScanner struct {
	input attendance.ScanInput
	out   *attendance.Outcome
	err   error
}

func (s *stubScanner) ProcessScan(ctx context.Context, in attendance.ScanInput) (*attendance.Outcome, error) {
	s.input = in
	return s.out, s.err
}

type stubAttendanceUseCase struct {
	getID  string
	getOut *attendance.Daily
	getErr error

	listInput attendance.ListDailyInput
	listOut   *attendance.ListDailyResult
	listErr   error

	eventsInput attendance.ListScanEventsInput
	eventsOut   *attendance.ListScanEventsResult
	eventsErr   error
}

func (s *stubAttendanceUseCase) GetDaily(ctx context.Context, id string) (*attendance.Daily, error) {
	s.getID = id
	return s.getOut, s.getErr
}

func (s *stubAttendanceUseCase) ListDaily(ctx context.Context, in attendance.ListDailyInput) (*attendance.ListDailyResult, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubAttendanceUseCase) ListScanEvents(ctx context.Context, in attendance.ListScanEventsInput) (*attendance.ListScanEventsResult, error) {
	s.eventsInput = in
	return s.eventsOut, s.eventsErr
}

func (s *stubAttendanceUseCase) UpdateDaily(ctx context.Context, in attendance.UpdateDailyInput) (*attendance.Daily, error) {
	return nil, nil
}

func (s *stubAttendanceUseCase) DeleteDaily(ctx context.Context, id string) error {
	return nil
}

func TestAttendanceGrpcHandler_ProcessScan_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 9, 10, 0, 0, time.UTC)
	scanner := &stubScanner{out: &attendance.Outcome{
		Accepted:        true,
		EmployeeName:    "Employee E",
		AttendanceID:    "att-1",
		WorkDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Kind:            attendance.ScanArrival,
		ArrivalStatus:   attendance.ArrivalFlex,
		DepartureStatus: attendance.DepartureMissing,
	}}
	h := NewAttendanceGrpcHandler(scanner, &stubAttendanceUseCase{}, "GATE-DEFAULT")
	h.now = func() time.Time { return now }

	resp, err := h.ProcessScan(context.Background(), &ProcessScanRequest{BadgeID: "CARD-E"})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if scanner.input.DeviceID != "GATE-DEFAULT" {
		t.Errorf("expected default device id, got %s", scanner.input.DeviceID)
	}
	if !scanner.input.EventTime.Equal(now) {
		t.Errorf("expected event time to default to now, got %v", scanner.input.EventTime)
	}
	if !resp.Accepted || resp.ArrivalStatus != "FLEX" || resp.DepartureStatus != "MISSING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.WorkDate != "2025-01-01" || resp.ScanKind != "arrival" {
		t.Fatalf("unexpected work date or kind: %+v", resp)
	}
}

func TestAttendanceGrpcHandler_ProcessScan_Rejected(t *testing.T) {
	t.Parallel()

	scanner := &stubScanner{out: &attendance.Outcome{Reason: attendance.ReasonUnknownBadge}}
	h := NewAttendanceGrpcHandler(scanner, &stubAttendanceUseCase{}, "GATE-DEFAULT")

	eventTime := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	resp, err := h.ProcessScan(context.Background(), &ProcessScanRequest{BadgeID: "NOPE", DeviceID: "GATE-2", EventTime: &eventTime})
	if err != nil {
		t.Fatalf("rejected scan should not be an error: %v", err)
	}
	if resp.Accepted || resp.Reason != "UNKNOWN_BADGE" || resp.WorkDate != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if scanner.input.DeviceID != "GATE-2" || !scanner.input.EventTime.Equal(eventTime) {
		t.Fatalf("explicit values should pass through, got %+v", scanner.input)
	}
}

func TestAttendanceGrpcHandler_ProcessScan_MissingBadge(t *testing.T) {
	t.Parallel()

	h := NewAttendanceGrpcHandler(&stubScanner{}, &stubAttendanceUseCase{}, "")
	_, err := h.ProcessScan(context.Background(), &ProcessScanRequest{BadgeID: "  "})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", status.Code(err))
	}
}

func TestAttendanceGrpcHandler_ListAttendanceDaily(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{listOut: &attendance.ListDailyResult{
		Records: []*attendance.Daily{{
			ID:              "att-1",
			BadgeID:         "CARD-E",
			WorkDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			ArrivalStatus:   attendance.ArrivalLate,
			DepartureStatus: attendance.DepartureEarly,
		}},
		NextPageToken: "50",
	}}
	h := NewAttendanceGrpcHandler(&stubScanner{}, stub, "")

	resp, err := h.ListAttendanceDaily(context.Background(), &ListAttendanceDailyRequest{BadgeID: "CARD-E", WorkDate: "2025-01-01", PageSize: 10})
	if err != nil {
		t.Fatalf("ListAttendanceDaily returned error: %v", err)
	}
	if stub.listInput.WorkDate == nil || stub.listInput.WorkDate.Format(dateLayout) != "2025-01-01" {
		t.Errorf("expected work date parsed, got %+v", stub.listInput.WorkDate)
	}
	if stub.listInput.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", stub.listInput.PageSize)
	}
	if len(resp.Records) != 1 || resp.Records[0].ArrivalStatus != "LATE" || resp.Records[0].DepartureStatus != "EARLY" {
		t.Fatalf("unexpected records: %+v", resp.Records)
	}
	if resp.NextPageToken != "50" {
		t.Fatalf("expected next token 50, got %s", resp.NextPageToken)
	}
}

func TestAttendanceGrpcHandler_ListAttendanceDaily_InvalidDate(t *testing.T) {
	t.Parallel()

	h := NewAttendanceGrpcHandler(&stubScanner{}, &stubAttendanceUseCase{}, "")
	_, err := h.ListAttendanceDaily(context.Background(), &ListAttendanceDailyRequest{From: "2025/01/01"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", status.Code(err))
	}
}

func TestAttendanceGrpcHandler_GetAttendanceDaily_NotFound(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{getErr: attendance.ErrAttendanceNotFound}
	h := NewAttendanceGrpcHandler(&stubScanner{}, stub, "")

	_, err := h.GetAttendanceDaily(context.Background(), &GetAttendanceDailyRequest{ID: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", status.Code(err))
	}
	if stub.getID != "missing" {
		t.Fatalf("expected id to pass through, got %s", stub.getID)
	}
}

func TestAttendanceService_JSONCodecRoundTrip(t *testing.T) {
	t.Parallel()

	scanner := &stubScanner{out: &attendance.Outcome{
		Accepted:        true,
		EmployeeName:    "Employee E",
		WorkDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Kind:            attendance.ScanDeparture,
		ArrivalStatus:   attendance.ArrivalNormal,
		DepartureStatus: attendance.DepartureNormal,
	}}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterAttendanceServiceServer(srv, NewAttendanceGrpcHandler(scanner, &stubAttendanceUseCase{}, "GATE-1"))
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eventTime := time.Date(2025, 1, 1, 18, 5, 0, 0, time.UTC)
	var resp ProcessScanResponse
	if err := conn.Invoke(ctx, FullMethodName("ProcessScan"), &ProcessScanRequest{BadgeID: "CARD-E", EventTime: &eventTime}, &resp); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	if !resp.Accepted || resp.ScanKind != "departure" || resp.DepartureStatus != "NORMAL" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !scanner.input.EventTime.Equal(eventTime) {
		t.Fatalf("expected event time to survive the codec, got %v", scanner.input.EventTime)
	}
}
