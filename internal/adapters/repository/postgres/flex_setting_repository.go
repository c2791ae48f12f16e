package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

const flexSettingColumns = `id, department_id, flex_minutes, is_deleted, deleted_at, deleted_by, created_at, updated_at`

// FlexSettingRepository は PostgreSQL を利用した弾性設定永続化の実装です。
type FlexSettingRepository struct {
	pool pgdb.Queryer
}

// NewFlexSettingRepository は FlexSettingRepository を生成します。
func NewFlexSettingRepository(pool pgdb.Queryer) *FlexSettingRepository {
	return &FlexSettingRepository{pool: pool}
}

// Create は弾性設定を新規作成します。
func (r *FlexSettingRepository) Create(ctx context.Context, f *schedule.FlexSetting) (*schedule.FlexSetting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO flex_settings (department_id, flex_minutes, is_deleted, deleted_at, deleted_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+flexSettingColumns,
		f.DepartmentID, f.Minutes, f.IsDeleted, nullableTime(f.DeletedAt), nullableString(f.DeletedBy), f.CreatedAt, f.UpdatedAt)

	created, err := scanFlexSetting(row)
	if err != nil {
		return nil, translateFlexSettingPgError(err)
	}
	return created, nil
}

// Update は論理削除の列を含めて弾性設定を書き戻します。
func (r *FlexSettingRepository) Update(ctx context.Context, f *schedule.FlexSetting) (*schedule.FlexSetting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE flex_settings
           SET flex_minutes = $1,
               is_deleted = $2,
               deleted_at = $3,
               deleted_by = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+flexSettingColumns,
		f.Minutes, f.IsDeleted, nullableTime(f.DeletedAt), nullableString(f.DeletedBy), f.UpdatedAt, f.ID)

	updated, err := scanFlexSetting(row)
	if err != nil {
		return nil, translateFlexSettingPgError(err)
	}
	return updated, nil
}

// FindByID は ID で弾性設定を取得します。
func (r *FlexSettingRepository) FindByID(ctx context.Context, id string) (*schedule.FlexSetting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+flexSettingColumns+`
          FROM flex_settings
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanFlexSetting(row)
	if err != nil {
		return nil, translateFlexSettingPgError(err)
	}
	return found, nil
}

// FindActive は部門の未削除の弾性設定を取得します。
func (r *FlexSettingRepository) FindActive(ctx context.Context, departmentID string) (*schedule.FlexSetting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+flexSettingColumns+`
          FROM flex_settings
         WHERE department_id = $1
           AND NOT is_deleted
         LIMIT 1
    `, departmentID)

	found, err := scanFlexSetting(row)
	if err != nil {
		return nil, translateFlexSettingPgError(err)
	}
	return found, nil
}

// List は弾性設定の一覧を取得します。
func (r *FlexSettingRepository) List(ctx context.Context, filter schedule.ListFlexSettingsFilter) ([]*schedule.FlexSetting, string, error) {
	if filter.Limit <= 0 {
		return nil, "", schedule.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", schedule.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	conditions := make([]string, 0, 2)
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, "department_id = $"+strconv.Itoa(len(args)))
	}
	if !filter.IncludeDeleted {
		conditions = append(conditions, "NOT is_deleted")
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
        SELECT ` + flexSettingColumns + `
          FROM flex_settings` + whereClause + `
         ORDER BY department_id ASC, created_at ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateFlexSettingPgError(err)
	}
	defer rows.Close()

	var settings []*schedule.FlexSetting
	for rows.Next() {
		found, err := scanFlexSetting(rows)
		if err != nil {
			return nil, "", translateFlexSettingPgError(err)
		}
		settings = append(settings, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateFlexSettingPgError(err)
	}

	var nextToken string
	if len(settings) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		settings = settings[:filter.Limit]
	}

	return settings, nextToken, nil
}

func scanFlexSetting(row pgx.Row) (*schedule.FlexSetting, error) {
	var (
		id, departmentID     string
		minutes              int
		isDeleted            bool
		deletedAt            sql.NullTime
		deletedBy            sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &departmentID, &minutes, &isDeleted, &deletedAt, &deletedBy, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrFlexSettingNotFound
		}
		return nil, err
	}

	return &schedule.FlexSetting{
		ID:           id,
		DepartmentID: departmentID,
		Minutes:      minutes,
		IsDeleted:    isDeleted,
		DeletedAt:    timePtr(deletedAt),
		DeletedBy:    deletedBy.String,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateFlexSettingPgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return schedule.ErrFlexSettingConflict
	case foreignKeyViolationCode:
		return schedule.ErrDepartmentNotFound
	case checkViolationCode:
		return schedule.ErrInvalidFlexMinutes
	case invalidTextRepresentationCode:
		return schedule.ErrFlexSettingNotFound
	}
	return err
}
