//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	repo "github.com/penguin789456/rfid-attendance-system/internal/adapters/repository/postgres"
	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
	"github.com/penguin789456/rfid-attendance-system/internal/platform/config"
	pg "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

type fixture struct {
	departments *department.Service
	employees   *employee.Service
	schedules   *schedule.Service
	attendance  *attendance.Service
	engine      *attendance.Engine
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	clock := stubClock{now: now}
	tx := pg.NewTransactionManager(pool)

	departmentRepo := repo.NewDepartmentRepository(pool)
	employeeRepo := repo.NewEmployeeRepository(pool)
	scheduleRepo := repo.NewScheduleRepository(pool)
	flexRepo := repo.NewFlexSettingRepository(pool)
	configRepo := repo.NewRequiredConfigRepository(pool)
	dailyRepo := repo.NewDailyRepository(pool)
	eventRepo := repo.NewScanEventRepository(pool)

	publisher := ruleconfig.NewPublisher(configRepo, scheduleRepo, flexRepo, clock)
	scheduleSvc := schedule.NewService(scheduleRepo, flexRepo, departmentRepo, publisher, clock, tx)

	return &fixture{
		departments: department.NewService(departmentRepo, clock, tx),
		employees:   employee.NewService(employeeRepo, departmentRepo, clock, tx),
		schedules:   scheduleSvc,
		attendance:  attendance.NewService(dailyRepo, eventRepo, clock, tx),
		engine: attendance.NewEngine(attendance.EngineDeps{
			Employees: employeeRepo,
			Schedules: scheduleSvc,
			Resolver:  ruleconfig.NewResolver(configRepo),
			Daily:     dailyRepo,
			Events:    attendance.NewEventLog(eventRepo),
			Clock:     clock,
			Tx:        tx,
		}),
	}
}

func TestAttendanceScanIntegration(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, day.Add(7*time.Hour))
	ctx := context.Background()

	dept, err := f.departments.CreateDepartment(ctx, department.CreateDepartmentInput{Code: "OPS", Name: "Operations"})
	if err != nil {
		t.Fatalf("CreateDepartment error: %v", err)
	}
	for _, badge := range []string{"CARD-E", "CARD-F"} {
		if _, err := f.employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
			BadgeID:      badge,
			EmployeeCode: "E-" + badge,
			Name:         "Employee " + badge,
			DepartmentID: dept.ID,
		}); err != nil {
			t.Fatalf("CreateEmployee(%s) error: %v", badge, err)
		}
	}
	if _, err := f.schedules.CreateSchedule(ctx, schedule.CreateScheduleInput{
		DepartmentID: dept.ID,
		Name:         "Office",
		ActiveDay:    workday.EveryDay,
		RequiredIn:   workday.MustTimeOfDay(9, 0, 0),
		RequiredOut:  workday.MustTimeOfDay(18, 0, 0),
		DayCutoff:    workday.MustTimeOfDay(4, 0, 0),
	}); err != nil {
		t.Fatalf("CreateSchedule error: %v", err)
	}
	if _, err := f.schedules.CreateFlexSetting(ctx, schedule.CreateFlexSettingInput{DepartmentID: dept.ID, Minutes: 15}); err != nil {
		t.Fatalf("CreateFlexSetting error: %v", err)
	}

	arrival, err := f.engine.ProcessScan(ctx, attendance.ScanInput{BadgeID: "CARD-E", DeviceID: "GATE-1", EventTime: day.Add(9*time.Hour + 10*time.Minute)})
	if err != nil {
		t.Fatalf("arrival scan error: %v", err)
	}
	if !arrival.Accepted || arrival.Kind != attendance.ScanArrival || arrival.ArrivalStatus != attendance.ArrivalFlex {
		t.Fatalf("unexpected arrival outcome: %+v", arrival)
	}

	departure, err := f.engine.ProcessScan(ctx, attendance.ScanInput{BadgeID: "CARD-E", DeviceID: "GATE-1", EventTime: day.Add(18*time.Hour + 5*time.Minute)})
	if err != nil {
		t.Fatalf("departure scan error: %v", err)
	}
	if departure.Kind != attendance.ScanDeparture || departure.DepartureStatus != attendance.DepartureNormal {
		t.Fatalf("unexpected departure outcome: %+v", departure)
	}
	if departure.AttendanceID != arrival.AttendanceID {
		t.Fatalf("expected same attendance id, got %s and %s", arrival.AttendanceID, departure.AttendanceID)
	}

	stored, err := f.attendance.GetDaily(ctx, arrival.AttendanceID)
	if err != nil {
		t.Fatalf("GetDaily error: %v", err)
	}
	if stored.RequiredConfigID == "" {
		t.Fatalf("expected required config reference, got %+v", stored)
	}
	if stored.FirstIn == nil || stored.LastOut == nil {
		t.Fatalf("expected first_in and last_out, got %+v", stored)
	}

	// 同一 (バッジ, 勤務日) への並行打刻でも集計は 1 行だけ作成されます。
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.ProcessScan(ctx, attendance.ScanInput{
				BadgeID:   "CARD-F",
				DeviceID:  "GATE-2",
				EventTime: day.Add(8*time.Hour + time.Duration(i)*time.Minute),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent scan error: %v", err)
		}
	}

	list, err := f.attendance.ListDaily(ctx, attendance.ListDailyInput{BadgeID: "CARD-F", WorkDate: &day})
	if err != nil {
		t.Fatalf("ListDaily error: %v", err)
	}
	if len(list.Records) != 1 {
		t.Fatalf("expected 1 daily record for CARD-F, got %d", len(list.Records))
	}

	events, err := f.attendance.ListScanEvents(ctx, attendance.ListScanEventsInput{BadgeID: "CARD-F"})
	if err != nil {
		t.Fatalf("ListScanEvents error: %v", err)
	}
	if len(events.Events) != 8 {
		t.Fatalf("expected 8 scan events, got %d", len(events.Events))
	}

	if err := f.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{BadgeID: "CARD-F"}); !errors.Is(err, employee.ErrEmployeeHasAttendance) {
		t.Fatalf("expected ErrEmployeeHasAttendance, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
