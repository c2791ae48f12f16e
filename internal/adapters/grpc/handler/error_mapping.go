package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, attendance.ErrInvalidID),
		errors.Is(err, attendance.ErrInvalidBadgeID),
		errors.Is(err, attendance.ErrInvalidDeviceID),
		errors.Is(err, attendance.ErrMissingEventTime),
		errors.Is(err, attendance.ErrInvalidArrivalStatus),
		errors.Is(err, attendance.ErrInvalidDepartureStatus),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, attendance.ErrInvalidPageSize),
		errors.Is(err, attendance.ErrInvalidPageToken):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, attendance.ErrAttendanceAlreadyExists):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
