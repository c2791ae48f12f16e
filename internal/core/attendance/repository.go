package attendance

import (
	"context"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// DailyRepository は勤怠集計の永続化を行うインターフェースです。
type DailyRepository interface {
	// Create は (BadgeID, WorkDate) が重複する場合 ErrAttendanceAlreadyExists を返します。
	Create(ctx context.Context, daily *Daily) (*Daily, error)
	Update(ctx context.Context, daily *Daily) (*Daily, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Daily, error)
	// FindForUpdate は (バッジ, 勤務日) の集計を行ロック付きで取得します。
	FindForUpdate(ctx context.Context, badgeID string, workDate time.Time) (*Daily, error)
	List(ctx context.Context, filter ListDailyFilter) ([]*Daily, string, error)
}

// ScanEventRepository は打刻記録の永続化を行うインターフェースです。
type ScanEventRepository interface {
	Append(ctx context.Context, event *ScanEvent) (*ScanEvent, error)
	List(ctx context.Context, filter ListScanEventsFilter) ([]*ScanEvent, string, error)
}

// ListDailyFilter は勤怠集計一覧の検索条件です。日付は両端を含みます。
type ListDailyFilter struct {
	BadgeID string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// ListScanEventsFilter は打刻記録一覧の検索条件です。時刻は両端を含みます。
type ListScanEventsFilter struct {
	BadgeID string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// EmployeeLookup はバッジ ID から従業員を取得します。
// 存在しない場合は employee.ErrEmployeeNotFound を返します。
type EmployeeLookup interface {
	FindByBadge(ctx context.Context, badgeID string) (*employee.Employee, error)
}

// ScheduleLookup は有効な班表と弾性分数を取得します。
type ScheduleLookup interface {
	ActiveSchedule(ctx context.Context, departmentID string, day workday.ActiveDay) (*schedule.Schedule, error)
	ActiveFlexMinutes(ctx context.Context, departmentID string) (int, error)
}

// ConfigResolver は勤務日に適用される規則スナップショットを解決します。見つからない場合は nil, nil です。
type ConfigResolver interface {
	Resolve(ctx context.Context, departmentID string, weekday time.Weekday, date time.Time) (*ruleconfig.RequiredConfig, error)
}

// EventSink は打刻の生記録を受け取ります。失敗しても打刻処理の結果には影響しません。
type EventSink interface {
	Record(ctx context.Context, event ScanEvent) error
}

// EventLog は ScanEventRepository を EventSink として利用するためのアダプタです。
type EventLog struct {
	repo ScanEventRepository
}

// NewEventLog は EventLog を生成します。
func NewEventLog(repo ScanEventRepository) *EventLog {
	return &EventLog{repo: repo}
}

// Record は打刻記録を追記します。
func (l *EventLog) Record(ctx context.Context, event ScanEvent) error {
	_, err := l.repo.Append(ctx, &event)
	return err
}
