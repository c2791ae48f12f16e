package ruleconfig

import "errors"

var (
	// ErrRequiredConfigNotFound は条件に一致するスナップショットが無い場合に返却されます。
	ErrRequiredConfigNotFound = errors.New("ruleconfig: not found")
	// ErrInvalidDepartment は部門 ID が空の場合に返却されます。
	ErrInvalidDepartment = errors.New("ruleconfig: invalid department id")
	// ErrInvalidActiveDay は曜日コードが不正な場合に返却されます。
	ErrInvalidActiveDay = errors.New("ruleconfig: invalid active day")
)
