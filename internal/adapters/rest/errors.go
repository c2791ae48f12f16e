package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

var badRequestErrors = []error{
	workday.ErrInvalidActiveDay,
	workday.ErrInvalidTimeOfDay,
	department.ErrInvalidID,
	department.ErrInvalidCode,
	department.ErrInvalidName,
	department.ErrInvalidPageSize,
	department.ErrInvalidPageToken,
	employee.ErrInvalidBadgeID,
	employee.ErrInvalidDepartmentID,
	employee.ErrInvalidEmployeeCode,
	employee.ErrInvalidName,
	employee.ErrInvalidStatus,
	employee.ErrInvalidPageSize,
	employee.ErrInvalidPageToken,
	schedule.ErrInvalidID,
	schedule.ErrInvalidDepartment,
	schedule.ErrInvalidName,
	schedule.ErrInvalidActiveDay,
	schedule.ErrInvalidTimeOfDay,
	schedule.ErrInvalidFlexMinutes,
	schedule.ErrInvalidPageSize,
	schedule.ErrInvalidPageToken,
	ruleconfig.ErrInvalidDepartment,
	ruleconfig.ErrInvalidActiveDay,
	attendance.ErrInvalidID,
	attendance.ErrInvalidBadgeID,
	attendance.ErrInvalidDeviceID,
	attendance.ErrMissingEventTime,
	attendance.ErrInvalidArrivalStatus,
	attendance.ErrInvalidDepartureStatus,
	attendance.ErrInvalidDateRange,
	attendance.ErrInvalidPageSize,
	attendance.ErrInvalidPageToken,
}

var notFoundErrors = []error{
	department.ErrDepartmentNotFound,
	employee.ErrEmployeeNotFound,
	employee.ErrDepartmentNotFound,
	schedule.ErrScheduleNotFound,
	schedule.ErrFlexSettingNotFound,
	schedule.ErrDepartmentNotFound,
	ruleconfig.ErrRequiredConfigNotFound,
	attendance.ErrAttendanceNotFound,
}

var conflictErrors = []error{
	department.ErrCodeAlreadyExists,
	department.ErrDepartmentInUse,
	employee.ErrBadgeAlreadyExists,
	employee.ErrEmployeeHasAttendance,
	schedule.ErrScheduleConflict,
	schedule.ErrFlexSettingConflict,
	schedule.ErrAlreadyDeleted,
	attendance.ErrAttendanceAlreadyExists,
}

// statusFor はドメインエラーを HTTP ステータスへ変換します。
func statusFor(err error) int {
	switch {
	case matchesAny(err, badRequestErrors):
		return http.StatusBadRequest
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
