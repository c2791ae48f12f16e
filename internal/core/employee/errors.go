package employee

import "errors"

var (
	ErrInvalidBadgeID        = errors.New("employee: invalid badge id")
	ErrInvalidDepartmentID   = errors.New("employee: invalid department id")
	ErrInvalidEmployeeCode   = errors.New("employee: invalid employee code")
	ErrInvalidName           = errors.New("employee: invalid name")
	ErrInvalidStatus         = errors.New("employee: invalid status")
	ErrInvalidPageSize       = errors.New("employee: invalid page size")
	ErrInvalidPageToken      = errors.New("employee: invalid page token")
	ErrEmployeeNotFound      = errors.New("employee: not found")
	ErrDepartmentNotFound    = errors.New("employee: department not found")
	ErrBadgeAlreadyExists    = errors.New("employee: badge id already exists")
	ErrEmployeeHasAttendance = errors.New("employee: attendance records exist")
)
