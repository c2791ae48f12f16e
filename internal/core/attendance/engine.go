package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Reason は打刻が受理されなかった理由です。
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonUnknownBadge         Reason = "UNKNOWN_BADGE"
	ReasonInactiveEmployee     Reason = "INACTIVE_EMPLOYEE"
	ReasonNoApplicableSchedule Reason = "NO_APPLICABLE_SCHEDULE"
)

// ScanInput は 1 回の打刻です。EventTime の既定値はトランスポート層で補完します。
type ScanInput struct {
	BadgeID   string
	DeviceID  string
	EventTime time.Time
}

// Outcome は打刻処理の結果です。
type Outcome struct {
	Accepted        bool
	Reason          Reason
	EmployeeName    string
	AttendanceID    string
	WorkDate        time.Time
	Kind            ScanKind
	ArrivalStatus   ArrivalStatus
	DepartureStatus DepartureStatus
}

// EngineDeps は Engine の依存関係です。Clock・Tx・Location は省略できます。
type EngineDeps struct {
	Employees EmployeeLookup
	Schedules ScheduleLookup
	Resolver  ConfigResolver
	Daily     DailyRepository
	Events    EventSink
	Clock     Clock
	Tx        TransactionManager
	// Location は曜日と壁時計時刻を評価するタイムゾーンです。既定は UTC です。
	Location *time.Location
}

// Engine は打刻を勤務日ごとの勤怠集計へ反映します。
type Engine struct {
	employees EmployeeLookup
	schedules ScheduleLookup
	resolver  ConfigResolver
	daily     DailyRepository
	events    EventSink
	clock     Clock
	tx        TransactionManager
	loc       *time.Location
	locks     *keyedLock
}

// NewEngine は Engine を生成します。
func NewEngine(deps EngineDeps) *Engine {
	e := &Engine{
		employees: deps.Employees,
		schedules: deps.Schedules,
		resolver:  deps.Resolver,
		daily:     deps.Daily,
		events:    deps.Events,
		clock:     deps.Clock,
		tx:        deps.Tx,
		loc:       deps.Location,
		locks:     newKeyedLock(),
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	if e.tx == nil {
		e.tx = noopTransactionManager{}
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	return e
}

// scanContext は集計の作成・更新に必要な解決済みの値です。
type scanContext struct {
	employee *employee.Employee
	schedule *schedule.Schedule
	flex     int
	event    time.Time
	weekday  time.Weekday
	workDate time.Time
}

// ProcessScan は打刻を処理します。
// 未登録・無効な従業員や適用班表が無い場合は Accepted=false の Outcome を返し、エラーにはしません。
// エラーは入力不正と永続化層の失敗に限られます。
func (e *Engine) ProcessScan(ctx context.Context, in ScanInput) (*Outcome, error) {
	if strings.TrimSpace(in.BadgeID) == "" {
		return nil, ErrInvalidBadgeID
	}
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		return nil, ErrInvalidDeviceID
	}
	if in.EventTime.IsZero() {
		return nil, ErrMissingEventTime
	}
	event := in.EventTime.In(e.loc)

	// 形式に合わない識別子は登録され得ないため未登録として扱う
	badgeID, err := employee.NormalizeBadgeID(in.BadgeID)
	if err != nil {
		return &Outcome{Reason: ReasonUnknownBadge}, nil
	}

	emp, err := e.employees.FindByBadge(ctx, badgeID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return &Outcome{Reason: ReasonUnknownBadge}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attendance: find employee: %w", err)
	}
	if !emp.Active() {
		return &Outcome{Reason: ReasonInactiveEmployee, EmployeeName: emp.Name}, nil
	}

	weekday := event.Weekday()
	sched, err := e.lookupSchedule(ctx, emp.DepartmentID, weekday)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		e.record(ctx, badgeID, deviceID, event)
		return &Outcome{Reason: ReasonNoApplicableSchedule, EmployeeName: emp.Name}, nil
	}

	flex, err := e.schedules.ActiveFlexMinutes(ctx, emp.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("attendance: find flex minutes: %w", err)
	}

	sc := scanContext{
		employee: emp,
		schedule: sched,
		flex:     flex,
		event:    event,
		weekday:  weekday,
		workDate: workday.WorkDate(event, sched.DayCutoff),
	}

	unlock := e.locks.Lock(lockKey(badgeID, sc.workDate))
	daily, kind, err := e.upsert(ctx, sc)
	unlock()
	if err != nil {
		return nil, err
	}

	e.record(ctx, badgeID, deviceID, event)

	return &Outcome{
		Accepted:        true,
		EmployeeName:    emp.Name,
		AttendanceID:    daily.ID,
		WorkDate:        daily.WorkDate,
		Kind:            kind,
		ArrivalStatus:   daily.ArrivalStatus,
		DepartureStatus: daily.DepartureStatus,
	}, nil
}

// lookupSchedule は特定曜日、全曜日の順に有効な班表を探します。
func (e *Engine) lookupSchedule(ctx context.Context, departmentID string, weekday time.Weekday) (*schedule.Schedule, error) {
	for _, day := range workday.LookupOrder(weekday) {
		found, err := e.schedules.ActiveSchedule(ctx, departmentID, day)
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("attendance: find schedule: %w", err)
		}
		return found, nil
	}
	return nil, nil
}

// upsert は集計が無ければ作成し、あれば退勤として更新します。
// 並行する作成と競合した場合は更新として再試行します。
func (e *Engine) upsert(ctx context.Context, sc scanContext) (*Daily, ScanKind, error) {
	var (
		result *Daily
		kind   ScanKind
	)
	err := e.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := e.daily.FindForUpdate(txCtx, sc.employee.BadgeID, sc.workDate)
		if err != nil && !errors.Is(err, ErrAttendanceNotFound) {
			return fmt.Errorf("attendance: find daily: %w", err)
		}

		if existing == nil {
			created, err := e.create(txCtx, sc)
			if err == nil {
				result, kind = created, ScanArrival
				return nil
			}
			if !errors.Is(err, ErrAttendanceAlreadyExists) {
				return err
			}
			existing, err = e.daily.FindForUpdate(txCtx, sc.employee.BadgeID, sc.workDate)
			if err != nil {
				return fmt.Errorf("attendance: find daily after conflict: %w", err)
			}
		}

		updated, err := e.depart(txCtx, existing, sc)
		if err != nil {
			return err
		}
		result, kind = updated, ScanDeparture
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, kind, nil
}

func (e *Engine) create(ctx context.Context, sc scanContext) (*Daily, error) {
	now := e.clock.Now()
	firstIn := sc.event
	daily := &Daily{
		BadgeID:         sc.employee.BadgeID,
		WorkDate:        sc.workDate,
		FirstIn:         &firstIn,
		ArrivalStatus:   ClassifyArrival(workday.TimeOfDayOf(sc.event), sc.schedule.RequiredIn, sc.flex),
		DepartureStatus: DepartureMissing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	config, err := e.resolver.Resolve(ctx, sc.employee.DepartmentID, sc.weekday, sc.workDate)
	if err != nil {
		return nil, fmt.Errorf("attendance: resolve required config: %w", err)
	}
	if config != nil {
		daily.RequiredConfigID = config.ID
	} else {
		log.Printf("attendance: no required config for department=%s weekday=%s work_date=%s", sc.employee.DepartmentID, sc.weekday, sc.workDate.Format(time.DateOnly))
		daily.addFlag(FlagNoRequiredConfig)
	}

	return e.daily.Create(ctx, daily)
}

func (e *Engine) depart(ctx context.Context, existing *Daily, sc scanContext) (*Daily, error) {
	lastOut := sc.event
	existing.LastOut = &lastOut
	existing.DepartureStatus = ClassifyDeparture(workday.TimeOfDayOf(sc.event), sc.schedule.RequiredOut)
	existing.UpdatedAt = e.clock.Now()

	updated, err := e.daily.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("attendance: update daily: %w", err)
	}
	return updated, nil
}

func (e *Engine) record(ctx context.Context, badgeID, deviceID string, event time.Time) {
	if e.events == nil {
		return
	}
	err := e.events.Record(ctx, ScanEvent{
		BadgeID:   badgeID,
		DeviceID:  deviceID,
		EventTime: event,
		CreatedAt: e.clock.Now(),
	})
	if err != nil {
		log.Printf("attendance: record scan event badge=%s device=%s: %v", badgeID, deviceID, err)
	}
}

func lockKey(badgeID string, workDate time.Time) string {
	return badgeID + "|" + workDate.Format(time.DateOnly)
}
