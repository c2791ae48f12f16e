package department

import "errors"

var (
	// ErrDepartmentNotFound は部門が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("department: not found")
	// ErrCodeAlreadyExists は部門コード重複時に返却されます。
	ErrCodeAlreadyExists = errors.New("department: code already exists")
	// ErrDepartmentInUse は従業員や班表が紐づいた部門を削除しようとした場合に返却されます。
	ErrDepartmentInUse = errors.New("department: still referenced")
	// ErrInvalidName は部門名が不正な場合に返却されます。
	ErrInvalidName = errors.New("department: invalid name")
	// ErrInvalidCode は部門コードが不正な場合に返却されます。
	ErrInvalidCode = errors.New("department: invalid code")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("department: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("department: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("department: invalid page token")
)
