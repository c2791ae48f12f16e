package workday

import (
	"errors"
	"testing"
	"time"
)

func TestWorkDate_Boundaries(t *testing.T) {
	t.Parallel()

	taipei := time.FixedZone("Asia/Taipei", 8*60*60)
	cases := []struct {
		name   string
		event  time.Time
		cutoff TimeOfDay
		want   time.Time
	}{
		{
			name:   "night shift before cutoff belongs to previous day",
			event:  time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC),
			cutoff: MustTimeOfDay(4, 0, 0),
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "exactly at cutoff belongs to same day",
			event:  time.Date(2025, 3, 11, 4, 0, 0, 0, time.UTC),
			cutoff: MustTimeOfDay(4, 0, 0),
			want:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "one second before cutoff",
			event:  time.Date(2025, 3, 11, 3, 59, 59, 0, time.UTC),
			cutoff: MustTimeOfDay(4, 0, 0),
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "midnight cutoff keeps calendar date",
			event:  time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			cutoff: MustTimeOfDay(0, 0, 0),
			want:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "near maximal cutoff carries back almost the whole day",
			event:  time.Date(2025, 3, 11, 23, 59, 58, 0, time.UTC),
			cutoff: MustTimeOfDay(23, 59, 59),
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year boundary",
			event:  time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
			cutoff: MustTimeOfDay(4, 0, 0),
			want:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "wall clock of the event location is used",
			event:  time.Date(2025, 3, 11, 1, 0, 0, 0, taipei),
			cutoff: MustTimeOfDay(4, 0, 0),
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := WorkDate(tc.event, tc.cutoff)
			if !got.Equal(tc.want) {
				t.Fatalf("WorkDate(%s, %s) = %s, want %s", tc.event, tc.cutoff, got, tc.want)
			}
		})
	}
}

func TestWorkDate_MidnightCutoffAlwaysCalendarDate(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for minute := 0; minute < 24*60; minute += 7 {
		event := start.Add(time.Duration(minute) * time.Minute)
		if got := WorkDate(event, 0); !got.Equal(start) {
			t.Fatalf("minute %d: expected %s, got %s", minute, start, got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	got, err := ParseTimeOfDay(" 09:15 ")
	if err != nil {
		t.Fatalf("ParseTimeOfDay returned error: %v", err)
	}
	if got.String() != "09:15:00" {
		t.Fatalf("expected 09:15:00, got %s", got)
	}

	withSeconds, err := ParseTimeOfDay("23:59:59")
	if err != nil {
		t.Fatalf("ParseTimeOfDay returned error: %v", err)
	}
	if withSeconds != MustTimeOfDay(23, 59, 59) {
		t.Fatalf("unexpected value %s", withSeconds)
	}

	if _, err := ParseTimeOfDay("24:00"); err == nil {
		t.Fatal("expected error for 24:00")
	}
}

func TestTimeOfDay_AddMinutesStaysWithinDay(t *testing.T) {
	t.Parallel()

	if got := MustTimeOfDay(9, 0, 0).AddMinutes(15); got != MustTimeOfDay(9, 15, 0) {
		t.Fatalf("expected 09:15:00, got %s", got)
	}
	if got := MustTimeOfDay(23, 50, 0).AddMinutes(30); got != MustTimeOfDay(23, 59, 59) {
		t.Fatalf("expected clamp at 23:59:59, got %s", got)
	}
}

func TestTimeOfDay_Compare(t *testing.T) {
	t.Parallel()

	nine := MustTimeOfDay(9, 0, 0)
	if nine.Compare(MustTimeOfDay(9, 0, 1)) != -1 || nine.Compare(nine) != 0 || MustTimeOfDay(18, 0, 0).Compare(nine) != 1 {
		t.Fatalf("unexpected Compare ordering")
	}
}

func TestLookupOrder_SpecificBeforeEveryDay(t *testing.T) {
	t.Parallel()

	order := LookupOrder(time.Sunday)
	if len(order) != 2 || order[0] != Sunday || order[1] != EveryDay {
		t.Fatalf("unexpected lookup order %v", order)
	}
	if ActiveDayOf(time.Monday) != Monday {
		t.Fatalf("expected monday to map to 1")
	}
	if ActiveDay(9).Valid() || ActiveDay(0).Valid() {
		t.Fatalf("out of range codes must be invalid")
	}
}

func TestParseActiveDay(t *testing.T) {
	cases := []struct {
		raw     string
		want    ActiveDay
		wantErr bool
	}{
		{raw: "mon", want: Monday},
		{raw: "SUN", want: Sunday},
		{raw: " all ", want: EveryDay},
		{raw: "8", want: EveryDay},
		{raw: "3", want: Wednesday},
		{raw: "0", wantErr: true},
		{raw: "9", wantErr: true},
		{raw: "holiday", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseActiveDay(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidActiveDay) {
				t.Fatalf("%q: expected ErrInvalidActiveDay, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: expected %v, got %v (err=%v)", tc.raw, tc.want, got, err)
		}
	}
}
