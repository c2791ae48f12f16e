package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (badge_id, employee_code, name, department_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING badge_id, employee_code, name, department_id, status, created_at, updated_at
    `, e.BadgeID, e.EmployeeCode, e.Name, e.DepartmentID, string(e.Status), e.CreatedAt, e.UpdatedAt)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET employee_code = $1,
               name = $2,
               department_id = $3,
               status = $4,
               updated_at = $5
         WHERE badge_id = $6
        RETURNING badge_id, employee_code, name, department_id, status, created_at, updated_at
    `, e.EmployeeCode, e.Name, e.DepartmentID, string(e.Status), e.UpdatedAt, e.BadgeID)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。勤怠集計が残っている場合は ErrEmployeeHasAttendance です。
func (r *EmployeeRepository) Delete(ctx context.Context, badgeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE badge_id = $1`, badgeID)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolationCode {
			return employee.ErrEmployeeHasAttendance
		}
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByBadge はバッジ ID で従業員を取得します。
func (r *EmployeeRepository) FindByBadge(ctx context.Context, badgeID string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT badge_id, employee_code, name, department_id, status, created_at, updated_at
          FROM employees
         WHERE badge_id = $1
         LIMIT 1
    `, badgeID)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は従業員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, "department_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT badge_id, employee_code, name, department_id, status, created_at, updated_at
          FROM employees` + whereClause + `
         ORDER BY employee_code ASC, badge_id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		employees = employees[:filter.Limit]
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		badgeID, code, name, departmentID, status string
		createdAt, updatedAt                      time.Time
	)

	if err := row.Scan(&badgeID, &code, &name, &departmentID, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		BadgeID:      badgeID,
		EmployeeCode: code,
		Name:         name,
		DepartmentID: departmentID,
		Status:       employee.Status(status),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return employee.ErrBadgeAlreadyExists
	case foreignKeyViolationCode:
		return employee.ErrDepartmentNotFound
	case checkViolationCode:
		return employee.ErrInvalidStatus
	case invalidTextRepresentationCode:
		return employee.ErrDepartmentNotFound
	}
	return err
}
