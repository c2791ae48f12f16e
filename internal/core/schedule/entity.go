package schedule

import (
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// DefaultDeletedBy は削除者が指定されなかった場合に記録される値です。
const DefaultDeletedBy = "SYSTEM"

// Schedule は部門ごと・曜日ごとの班表です。論理削除されても行は残ります。
type Schedule struct {
	ID           string
	DepartmentID string
	Name         string
	ActiveDay    workday.ActiveDay
	RequiredIn   workday.TimeOfDay
	RequiredOut  workday.TimeOfDay
	DayCutoff    workday.TimeOfDay
	IsDeleted    bool
	DeletedAt    *time.Time
	DeletedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FlexSetting は部門の弾性 (猶予) 分数設定です。
type FlexSetting struct {
	ID           string
	DepartmentID string
	Minutes      int
	IsDeleted    bool
	DeletedAt    *time.Time
	DeletedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Schedule) markDeleted(at time.Time, by string) {
	s.IsDeleted = true
	s.DeletedAt = &at
	s.DeletedBy = by
	s.UpdatedAt = at
}

func (f *FlexSetting) markDeleted(at time.Time, by string) {
	f.IsDeleted = true
	f.DeletedAt = &at
	f.DeletedBy = by
	f.UpdatedAt = at
}
