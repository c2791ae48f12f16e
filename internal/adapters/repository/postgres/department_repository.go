package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

// DepartmentRepository は PostgreSQL を利用した部門永続化の実装です。
type DepartmentRepository struct {
	pool pgdb.Queryer
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(pool pgdb.Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// Create は部門を新規作成します。
func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO departments (code, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, code, name, created_at, updated_at
    `, d.Code, d.Name, d.CreatedAt, d.UpdatedAt)

	created, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return created, nil
}

// Update は部門情報を更新します。
func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE departments
           SET code = $1,
               name = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING id, code, name, created_at, updated_at
    `, d.Code, d.Name, d.UpdatedAt, d.ID)

	updated, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return updated, nil
}

// Delete は部門を削除します。参照が残っている場合は ErrDepartmentInUse です。
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return translateDepartmentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// FindByID は ID で部門を取得します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, code, name, created_at, updated_at
          FROM departments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// FindByCode はコードで部門を取得します。
func (r *DepartmentRepository) FindByCode(ctx context.Context, code string) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, code, name, created_at, updated_at
          FROM departments
         WHERE code = $1
         LIMIT 1
    `, code)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// Exists は部門が存在するかを返します。UUID として解釈できない ID は存在しない扱いです。
func (r *DepartmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		if pgErrorCode(err) == invalidTextRepresentationCode {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

// List は部門の一覧をコード順に取得します。
func (r *DepartmentRepository) List(ctx context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error) {
	if filter.Limit <= 0 {
		return nil, "", department.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", department.ErrInvalidPageToken
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, code, name, created_at, updated_at
          FROM departments
         ORDER BY code ASC, id ASC
         LIMIT $1
        OFFSET $2
    `, filter.Limit+1, filter.Offset)
	if err != nil {
		return nil, "", translateDepartmentPgError(err)
	}
	defer rows.Close()

	var departments []*department.Department
	for rows.Next() {
		found, err := scanDepartment(rows)
		if err != nil {
			return nil, "", translateDepartmentPgError(err)
		}
		departments = append(departments, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateDepartmentPgError(err)
	}

	var nextToken string
	if len(departments) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		departments = departments[:filter.Limit]
	}

	return departments, nextToken, nil
}

func scanDepartment(row pgx.Row) (*department.Department, error) {
	var (
		id, code, name       string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &code, &name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}

	return &department.Department{
		ID:        id,
		Code:      code,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translateDepartmentPgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return department.ErrCodeAlreadyExists
	case foreignKeyViolationCode:
		return department.ErrDepartmentInUse
	case invalidTextRepresentationCode:
		return department.ErrDepartmentNotFound
	}
	return err
}
