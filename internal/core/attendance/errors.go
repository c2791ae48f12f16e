package attendance

import "errors"

var (
	// ErrAttendanceNotFound は勤怠集計が存在しない場合に返却されます。
	ErrAttendanceNotFound = errors.New("attendance: not found")
	// ErrAttendanceAlreadyExists は (バッジ, 勤務日) の集計が既に存在する場合にリポジトリが返却します。
	// エンジン内部で更新として再試行されるため呼び出し側へは伝播しません。
	ErrAttendanceAlreadyExists = errors.New("attendance: daily record already exists")
	ErrInvalidID               = errors.New("attendance: invalid id")
	ErrInvalidBadgeID          = errors.New("attendance: invalid badge id")
	ErrInvalidDeviceID         = errors.New("attendance: invalid device id")
	ErrMissingEventTime        = errors.New("attendance: event time is required")
	ErrInvalidArrivalStatus    = errors.New("attendance: invalid arrival status")
	ErrInvalidDepartureStatus  = errors.New("attendance: invalid departure status")
	ErrInvalidDateRange        = errors.New("attendance: invalid date range")
	ErrInvalidPageSize         = errors.New("attendance: invalid page size")
	ErrInvalidPageToken        = errors.New("attendance: invalid page token")
)
