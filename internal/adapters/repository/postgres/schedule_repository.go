package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

const scheduleColumns = `id, department_id, name, active_day,
               to_char(required_in, 'HH24:MI:SS'), to_char(required_out, 'HH24:MI:SS'), to_char(day_cutoff, 'HH24:MI:SS'),
               is_deleted, deleted_at, deleted_by, created_at, updated_at`

// ScheduleRepository は PostgreSQL を利用した班表永続化の実装です。
type ScheduleRepository struct {
	pool pgdb.Queryer
}

// NewScheduleRepository は ScheduleRepository を生成します。
func NewScheduleRepository(pool pgdb.Queryer) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// Create は班表を新規作成します。
func (r *ScheduleRepository) Create(ctx context.Context, s *schedule.Schedule) (*schedule.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO schedules (department_id, name, active_day, required_in, required_out, day_cutoff, is_deleted, deleted_at, deleted_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4::time, $5::time, $6::time, $7, $8, $9, $10, $11)
        RETURNING `+scheduleColumns,
		s.DepartmentID,
		s.Name,
		int(s.ActiveDay),
		s.RequiredIn.String(),
		s.RequiredOut.String(),
		s.DayCutoff.String(),
		s.IsDeleted,
		nullableTime(s.DeletedAt),
		nullableString(s.DeletedBy),
		s.CreatedAt,
		s.UpdatedAt,
	)

	created, err := scanSchedule(row)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	return created, nil
}

// Update は論理削除の列を含めて班表を書き戻します。
func (r *ScheduleRepository) Update(ctx context.Context, s *schedule.Schedule) (*schedule.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE schedules
           SET name = $1,
               active_day = $2,
               required_in = $3::time,
               required_out = $4::time,
               day_cutoff = $5::time,
               is_deleted = $6,
               deleted_at = $7,
               deleted_by = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING `+scheduleColumns,
		s.Name,
		int(s.ActiveDay),
		s.RequiredIn.String(),
		s.RequiredOut.String(),
		s.DayCutoff.String(),
		s.IsDeleted,
		nullableTime(s.DeletedAt),
		nullableString(s.DeletedBy),
		s.UpdatedAt,
		s.ID,
	)

	updated, err := scanSchedule(row)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	return updated, nil
}

// FindByID は ID で班表を取得します。
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+scheduleColumns+`
          FROM schedules
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanSchedule(row)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	return found, nil
}

// FindActive は部門・曜日コードに一致する未削除の班表を取得します。
func (r *ScheduleRepository) FindActive(ctx context.Context, departmentID string, day workday.ActiveDay) (*schedule.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+scheduleColumns+`
          FROM schedules
         WHERE department_id = $1
           AND active_day = $2
           AND NOT is_deleted
         LIMIT 1
    `, departmentID, int(day))

	found, err := scanSchedule(row)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	return found, nil
}

// List は班表の一覧を取得します。
func (r *ScheduleRepository) List(ctx context.Context, filter schedule.ListSchedulesFilter) ([]*schedule.Schedule, string, error) {
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
        SELECT ` + scheduleColumns + `
          FROM schedules` + whereClause + `
         ORDER BY department_id ASC, active_day ASC, created_at ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateSchedulePgError(err)
	}
	defer rows.Close()

	var schedules []*schedule.Schedule
	for rows.Next() {
		found, err := scanSchedule(rows)
		if err != nil {
			return nil, "", translateSchedulePgError(err)
		}
		schedules = append(schedules, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateSchedulePgError(err)
	}

	var nextToken string
	if len(schedules) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		schedules = schedules[:filter.Limit]
	}

	return schedules, nextToken, nil
}

func scanSchedule(row pgx.Row) (*schedule.Schedule, error) {
	var (
		id, departmentID, name             string
		activeDay                          int
		requiredIn, requiredOut, dayCutoff string
		isDeleted                          bool
		deletedAt                          sql.NullTime
		deletedBy                          sql.NullString
		createdAt, updatedAt               time.Time
	)

	if err := row.Scan(&id, &departmentID, &name, &activeDay, &requiredIn, &requiredOut, &dayCutoff, &isDeleted, &deletedAt, &deletedBy, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, err
	}

	times, err := parseTimesOfDay(requiredIn, requiredOut, dayCutoff)
	if err != nil {
		return nil, err
	}

	return &schedule.Schedule{
		ID:           id,
		DepartmentID: departmentID,
		Name:         name,
		ActiveDay:    workday.ActiveDay(activeDay),
		RequiredIn:   times[0],
		RequiredOut:  times[1],
		DayCutoff:    times[2],
		IsDeleted:    isDeleted,
		DeletedAt:    timePtr(deletedAt),
		DeletedBy:    deletedBy.String,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func parseTimesOfDay(raw ...string) ([]workday.TimeOfDay, error) {
	out := make([]workday.TimeOfDay, len(raw))
	for i, value := range raw {
		t, err := workday.ParseTimeOfDay(value)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan time column: %w", err)
		}
		out[i] = t
	}
	return out, nil
}

func translateSchedulePgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return schedule.ErrScheduleConflict
	case foreignKeyViolationCode:
		return schedule.ErrDepartmentNotFound
	case checkViolationCode:
		return schedule.ErrInvalidActiveDay
	case invalidTextRepresentationCode:
		return schedule.ErrScheduleNotFound
	}
	return err
}
