package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/adapters/repository/memory"
	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
)

func seedDaily(t *testing.T, store *memory.Store, badgeID string, workDate time.Time) *attendance.Daily {
	t.Helper()
	row, err := store.AttendanceDaily().Create(context.Background(), &attendance.Daily{
		BadgeID:          badgeID,
		WorkDate:         workDate,
		RequiredConfigID: "rc-1",
		DepartureStatus:  attendance.DepartureMissing,
	})
	if err != nil {
		t.Fatalf("seed daily: %v", err)
	}
	return row
}

func TestService_ListDaily_Filters(t *testing.T) {
	store := memory.NewStore()
	clock := &stubClock{now: time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)}
	svc := attendance.NewService(store.AttendanceDaily(), store.ScanEvents(), clock, nil)
	ctx := context.Background()

	seedDaily(t, store, "B1", day(2025, 1, 15))
	seedDaily(t, store, "B1", day(2025, 3, 20))
	seedDaily(t, store, "B2", day(2025, 3, 20))

	recent, err := svc.ListDaily(ctx, attendance.ListDailyInput{BadgeID: "B1"})
	if err != nil {
		t.Fatalf("ListDaily returned error: %v", err)
	}
	if len(recent.Records) != 1 || !recent.Records[0].WorkDate.Equal(day(2025, 3, 20)) {
		t.Fatalf("expected only the last 30 days for badge-only query, got %+v", recent.Records)
	}

	workDate := day(2025, 3, 20)
	byDate, err := svc.ListDaily(ctx, attendance.ListDailyInput{WorkDate: &workDate})
	if err != nil {
		t.Fatalf("ListDaily returned error: %v", err)
	}
	if len(byDate.Records) != 2 {
		t.Fatalf("expected 2 records on work date, got %d", len(byDate.Records))
	}

	all, err := svc.ListDaily(ctx, attendance.ListDailyInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListDaily returned error: %v", err)
	}
	if len(all.Records) != 2 || all.NextPageToken != "2" {
		t.Fatalf("unexpected first page: %d records, token %q", len(all.Records), all.NextPageToken)
	}

	from, to := day(2025, 3, 1), day(2025, 2, 1)
	if _, err := svc.ListDaily(ctx, attendance.ListDailyInput{From: &from, To: &to}); !errors.Is(err, attendance.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestService_UpdateDaily(t *testing.T) {
	store := memory.NewStore()
	svc := attendance.NewService(store.AttendanceDaily(), store.ScanEvents(), nil, nil)
	ctx := context.Background()
	row := seedDaily(t, store, "B1", day(2025, 3, 10))

	normal := attendance.DepartureNormal
	flags := " MANUAL "
	updated, err := svc.UpdateDaily(ctx, attendance.UpdateDailyInput{ID: row.ID, Changes: attendance.DailyUpdate{DepartureStatus: &normal, ExceptionFlags: &flags}})
	if err != nil {
		t.Fatalf("UpdateDaily returned error: %v", err)
	}
	if updated.DepartureStatus != attendance.DepartureNormal || updated.ExceptionFlags != "MANUAL" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.RequiredConfigID != "rc-1" {
		t.Fatalf("config reference must be preserved, got %q", updated.RequiredConfigID)
	}

	bogus := attendance.ArrivalStatus(7)
	if _, err := svc.UpdateDaily(ctx, attendance.UpdateDailyInput{ID: row.ID, Changes: attendance.DailyUpdate{ArrivalStatus: &bogus}}); !errors.Is(err, attendance.ErrInvalidArrivalStatus) {
		t.Fatalf("expected ErrInvalidArrivalStatus, got %v", err)
	}

	if _, err := svc.UpdateDaily(ctx, attendance.UpdateDailyInput{ID: "missing"}); !errors.Is(err, attendance.ErrAttendanceNotFound) {
		t.Fatalf("expected ErrAttendanceNotFound, got %v", err)
	}
}

func TestService_DeleteDaily(t *testing.T) {
	store := memory.NewStore()
	svc := attendance.NewService(store.AttendanceDaily(), store.ScanEvents(), nil, nil)
	ctx := context.Background()
	row := seedDaily(t, store, "B1", day(2025, 3, 10))

	if err := svc.DeleteDaily(ctx, row.ID); err != nil {
		t.Fatalf("DeleteDaily returned error: %v", err)
	}
	if _, err := svc.GetDaily(ctx, row.ID); !errors.Is(err, attendance.ErrAttendanceNotFound) {
		t.Fatalf("expected ErrAttendanceNotFound, got %v", err)
	}
	if err := svc.DeleteDaily(ctx, ""); !errors.Is(err, attendance.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_ListScanEvents(t *testing.T) {
	store := memory.NewStore()
	svc := attendance.NewService(store.AttendanceDaily(), store.ScanEvents(), nil, nil)
	ctx := context.Background()
	log := attendance.NewEventLog(store.ScanEvents())

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := log.Record(ctx, attendance.ScanEvent{BadgeID: "B1", DeviceID: "GATE", EventTime: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	from := base.Add(30 * time.Minute)
	result, err := svc.ListScanEvents(ctx, attendance.ListScanEventsInput{BadgeID: "B1", From: &from})
	if err != nil {
		t.Fatalf("ListScanEvents returned error: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}

	if _, err := svc.ListScanEvents(ctx, attendance.ListScanEventsInput{PageToken: "x"}); !errors.Is(err, attendance.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
