package schedule

import "errors"

var (
	// ErrScheduleNotFound は班表が存在しない場合に返却されます。
	ErrScheduleNotFound = errors.New("schedule: not found")
	// ErrFlexSettingNotFound は弾性設定が存在しない場合に返却されます。
	ErrFlexSettingNotFound = errors.New("schedule: flex setting not found")
	// ErrScheduleConflict は同じ部門・曜日に有効な班表が既にある場合に返却されます。
	ErrScheduleConflict = errors.New("schedule: active schedule already exists for department and day")
	// ErrFlexSettingConflict は部門に有効な弾性設定が既にある場合に返却されます。
	ErrFlexSettingConflict = errors.New("schedule: active flex setting already exists for department")
	// ErrAlreadyDeleted は削除済みの行を更新・削除しようとした場合に返却されます。
	ErrAlreadyDeleted = errors.New("schedule: already deleted")
	// ErrDepartmentNotFound は部門が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("schedule: department not found")
	ErrInvalidID          = errors.New("schedule: invalid id")
	ErrInvalidDepartment  = errors.New("schedule: invalid department id")
	ErrInvalidName        = errors.New("schedule: invalid name")
	ErrInvalidActiveDay   = errors.New("schedule: invalid active day")
	ErrInvalidTimeOfDay   = errors.New("schedule: invalid time of day")
	ErrInvalidFlexMinutes = errors.New("schedule: flex minutes must be non-negative")
	ErrInvalidPageSize    = errors.New("schedule: invalid page size")
	ErrInvalidPageToken   = errors.New("schedule: invalid page token")
)
