package employee

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

var (
	badgePattern        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	employeeCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]*$`)
)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	departments DepartmentFinder
	clock       Clock
	tx          TransactionManager
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, departments DepartmentFinder, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, departments: departments, clock: clock, tx: tx}
}

// CreateEmployeeInput は従業員作成時の入力です。
type CreateEmployeeInput struct {
	BadgeID      string
	EmployeeCode string
	Name         string
	DepartmentID string
	Status       *Status
}

// UpdateEmployeeInput は従業員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	BadgeID      string
	EmployeeCode *string
	Name         *string
	DepartmentID *string
	Status       *Status
}

// DeleteEmployeeInput は従業員削除時の入力です。
type DeleteEmployeeInput struct {
	BadgeID string
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	BadgeID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	DepartmentID string
	PageSize     int
	PageToken    string
	Status       *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい従業員を登録します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	badgeID, err := NormalizeBadgeID(in.BadgeID)
	if err != nil {
		return nil, err
	}

	code, err := normalizeEmployeeCode(in.EmployeeCode)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	departmentID, err := normalizeDepartmentID(in.DepartmentID)
	if err != nil {
		return nil, err
	}

	status := StatusActive
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureBadgeNotExists(txCtx, badgeID); err != nil {
			return err
		}
		if err := s.ensureDepartmentExists(txCtx, departmentID); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			BadgeID:      badgeID,
			EmployeeCode: code,
			Name:         name,
			DepartmentID: departmentID,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は従業員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	badgeID, err := NormalizeBadgeID(in.BadgeID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByBadge(txCtx, badgeID)
		if err != nil {
			return err
		}

		merged, err := applyUpdate(existing, in)
		if err != nil {
			return err
		}

		if merged.DepartmentID != existing.DepartmentID {
			if err := s.ensureDepartmentExists(txCtx, merged.DepartmentID); err != nil {
				return err
			}
		}

		merged.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, merged)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は従業員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	badgeID, err := NormalizeBadgeID(in.BadgeID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, badgeID)
	})
}

// GetEmployee はバッジ ID で従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	badgeID, err := NormalizeBadgeID(in.BadgeID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByBadge(txCtx, badgeID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は従業員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			DepartmentID: strings.TrimSpace(in.DepartmentID),
			Status:       statusPtr,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// applyUpdate は UpdateEmployeeInput を既存エンティティに適用した複製を返します。
func applyUpdate(existing *Employee, in UpdateEmployeeInput) (*Employee, error) {
	merged := *existing

	if in.EmployeeCode != nil {
		code, err := normalizeEmployeeCode(*in.EmployeeCode)
		if err != nil {
			return nil, err
		}
		merged.EmployeeCode = code
	}

	if in.Name != nil {
		name, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		merged.Name = name
	}

	if in.DepartmentID != nil {
		departmentID, err := normalizeDepartmentID(*in.DepartmentID)
		if err != nil {
			return nil, err
		}
		merged.DepartmentID = departmentID
	}

	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		merged.Status = *in.Status
	}

	return &merged, nil
}

func (s *Service) ensureBadgeNotExists(ctx context.Context, badgeID string) error {
	emp, err := s.repo.FindByBadge(ctx, badgeID)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrBadgeAlreadyExists
	}
	return nil
}

func (s *Service) ensureDepartmentExists(ctx context.Context, departmentID string) error {
	if s.departments == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, departmentID)
	if err != nil {
		return fmt.Errorf("employee: check department: %w", err)
	}
	if !ok {
		return ErrDepartmentNotFound
	}
	return nil
}

// NormalizeBadgeID はバッジ ID の前後空白を除去し形式を検証します。
func NormalizeBadgeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !badgePattern.MatchString(trimmed) {
		return "", ErrInvalidBadgeID
	}
	return trimmed, nil
}

func normalizeEmployeeCode(raw string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" || !employeeCodePattern.MatchString(upper) {
		return "", ErrInvalidEmployeeCode
	}
	return upper, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeDepartmentID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDepartmentID
	}
	return trimmed, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
