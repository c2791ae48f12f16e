package schedule

import (
	"context"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// ScheduleRepository は班表の永続化を行うインターフェースです。
// Update は論理削除の列も含めて全項目を書き戻します。
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *Schedule) (*Schedule, error)
	Update(ctx context.Context, schedule *Schedule) (*Schedule, error)
	FindByID(ctx context.Context, id string) (*Schedule, error)
	// FindActive は未削除の班表を返します。存在しない場合は ErrScheduleNotFound です。
	FindActive(ctx context.Context, departmentID string, day workday.ActiveDay) (*Schedule, error)
	List(ctx context.Context, filter ListSchedulesFilter) ([]*Schedule, string, error)
}

// FlexSettingRepository は弾性設定の永続化を行うインターフェースです。
type FlexSettingRepository interface {
	Create(ctx context.Context, setting *FlexSetting) (*FlexSetting, error)
	Update(ctx context.Context, setting *FlexSetting) (*FlexSetting, error)
	FindByID(ctx context.Context, id string) (*FlexSetting, error)
	// FindActive は未削除の弾性設定を返します。存在しない場合は ErrFlexSettingNotFound です。
	FindActive(ctx context.Context, departmentID string) (*FlexSetting, error)
	List(ctx context.Context, filter ListFlexSettingsFilter) ([]*FlexSetting, string, error)
}

// DepartmentFinder は部門の存在確認に利用します。
type DepartmentFinder interface {
	Exists(ctx context.Context, departmentID string) (bool, error)
}

// SnapshotPublisher は班表・弾性設定の変更を規則スナップショットへ反映します。
type SnapshotPublisher interface {
	Publish(ctx context.Context, departmentID string, day workday.ActiveDay, effectiveFrom time.Time) error
	PublishDepartment(ctx context.Context, departmentID string, effectiveFrom time.Time) error
}

// ListSchedulesFilter は班表一覧の検索条件です。
type ListSchedulesFilter struct {
	DepartmentID   string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListFlexSettingsFilter は弾性設定一覧の検索条件です。
type ListFlexSettingsFilter struct {
	DepartmentID   string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
