package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

const requiredConfigColumns = `id, department_id, schedule_id, flex_setting_id, active_day,
               to_char(required_in, 'HH24:MI:SS'), to_char(required_out, 'HH24:MI:SS'),
               flex_minutes, to_char(day_cutoff, 'HH24:MI:SS'),
               effective_from, effective_to, created_at`

// RequiredConfigRepository は PostgreSQL を利用した規則スナップショット永続化の実装です。
type RequiredConfigRepository struct {
	pool pgdb.Queryer
}

// NewRequiredConfigRepository は RequiredConfigRepository を生成します。
func NewRequiredConfigRepository(pool pgdb.Queryer) *RequiredConfigRepository {
	return &RequiredConfigRepository{pool: pool}
}

// FindEffective は date を有効期間に含むスナップショットのうち最も新しいものを返します。
func (r *RequiredConfigRepository) FindEffective(ctx context.Context, departmentID string, day workday.ActiveDay, date time.Time) (*ruleconfig.RequiredConfig, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+requiredConfigColumns+`
          FROM required_configs
         WHERE department_id = $1
           AND active_day = $2
           AND effective_from <= $3::date
           AND (effective_to IS NULL OR effective_to >= $3::date)
         ORDER BY effective_from DESC, created_at DESC
         LIMIT 1
    `, departmentID, int(day), workday.NormalizeDate(date))

	found, err := scanRequiredConfig(row)
	if err != nil {
		return nil, translateRequiredConfigPgError(err)
	}
	return found, nil
}

// FindOpen は終端が未設定のスナップショットを返します。
func (r *RequiredConfigRepository) FindOpen(ctx context.Context, departmentID string, day workday.ActiveDay) (*ruleconfig.RequiredConfig, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+requiredConfigColumns+`
          FROM required_configs
         WHERE department_id = $1
           AND active_day = $2
           AND effective_to IS NULL
         ORDER BY effective_from DESC
         LIMIT 1
    `, departmentID, int(day))

	found, err := scanRequiredConfig(row)
	if err != nil {
		return nil, translateRequiredConfigPgError(err)
	}
	return found, nil
}

// Create はスナップショットを新規作成します。
func (r *RequiredConfigRepository) Create(ctx context.Context, config *ruleconfig.RequiredConfig) (*ruleconfig.RequiredConfig, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO required_configs (department_id, schedule_id, flex_setting_id, active_day, required_in, required_out, flex_minutes, day_cutoff, effective_from, effective_to, created_at)
        VALUES ($1, $2, $3, $4, $5::time, $6::time, $7, $8::time, $9::date, $10::date, $11)
        RETURNING `+requiredConfigColumns,
		config.DepartmentID,
		config.ScheduleID,
		nullableString(config.FlexSettingID),
		int(config.ActiveDay),
		config.RequiredIn.String(),
		config.RequiredOut.String(),
		config.FlexMinutes,
		config.DayCutoff.String(),
		config.EffectiveFrom,
		nullableTime(config.EffectiveTo),
		config.CreatedAt,
	)

	created, err := scanRequiredConfig(row)
	if err != nil {
		return nil, translateRequiredConfigPgError(err)
	}
	return created, nil
}

// Close は effective_to のみを更新します。
func (r *RequiredConfigRepository) Close(ctx context.Context, id string, effectiveTo time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE required_configs
           SET effective_to = $1::date
         WHERE id = $2
    `, workday.NormalizeDate(effectiveTo), id)
	if err != nil {
		return translateRequiredConfigPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ruleconfig.ErrRequiredConfigNotFound
	}
	return nil
}

// ListByDepartment は部門のスナップショット履歴を曜日・開始日順に返します。
func (r *RequiredConfigRepository) ListByDepartment(ctx context.Context, departmentID string) ([]*ruleconfig.RequiredConfig, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+requiredConfigColumns+`
          FROM required_configs
         WHERE department_id = $1
         ORDER BY active_day ASC, effective_from ASC, created_at ASC
    `, departmentID)
	if err != nil {
		return nil, translateRequiredConfigPgError(err)
	}
	defer rows.Close()

	var configs []*ruleconfig.RequiredConfig
	for rows.Next() {
		found, err := scanRequiredConfig(rows)
		if err != nil {
			return nil, translateRequiredConfigPgError(err)
		}
		configs = append(configs, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateRequiredConfigPgError(err)
	}
	return configs, nil
}

func scanRequiredConfig(row pgx.Row) (*ruleconfig.RequiredConfig, error) {
	var (
		id, departmentID, scheduleID       string
		flexSettingID                      sql.NullString
		activeDay, flexMinutes             int
		requiredIn, requiredOut, dayCutoff string
		effectiveFrom                      time.Time
		effectiveTo                        sql.NullTime
		createdAt                          time.Time
	)

	if err := row.Scan(&id, &departmentID, &scheduleID, &flexSettingID, &activeDay, &requiredIn, &requiredOut, &flexMinutes, &dayCutoff, &effectiveFrom, &effectiveTo, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ruleconfig.ErrRequiredConfigNotFound
		}
		return nil, err
	}

	times, err := parseTimesOfDay(requiredIn, requiredOut, dayCutoff)
	if err != nil {
		return nil, err
	}

	var to *time.Time
	if effectiveTo.Valid {
		normalized := workday.NormalizeDate(effectiveTo.Time)
		to = &normalized
	}

	return &ruleconfig.RequiredConfig{
		ID:            id,
		DepartmentID:  departmentID,
		ScheduleID:    scheduleID,
		FlexSettingID: flexSettingID.String,
		ActiveDay:     workday.ActiveDay(activeDay),
		RequiredIn:    times[0],
		RequiredOut:   times[1],
		FlexMinutes:   flexMinutes,
		DayCutoff:     times[2],
		EffectiveFrom: workday.NormalizeDate(effectiveFrom),
		EffectiveTo:   to,
		CreatedAt:     createdAt,
	}, nil
}

func translateRequiredConfigPgError(err error) error {
	switch pgErrorCode(err) {
	case foreignKeyViolationCode:
		return ruleconfig.ErrInvalidDepartment
	case checkViolationCode:
		return ruleconfig.ErrInvalidActiveDay
	case invalidTextRepresentationCode:
		return ruleconfig.ErrRequiredConfigNotFound
	}
	return err
}
