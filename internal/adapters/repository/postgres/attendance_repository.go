package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
	pgdb "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
)

const dailyColumns = `id, employee_badge_id, work_date, required_config_id, first_in, last_out,
               arrival_status, departure_status, exception_flags, created_at, updated_at`

// DailyRepository は PostgreSQL を利用した勤怠集計永続化の実装です。
type DailyRepository struct {
	pool pgdb.Queryer
}

// NewDailyRepository は DailyRepository を生成します。
func NewDailyRepository(pool pgdb.Queryer) *DailyRepository {
	return &DailyRepository{pool: pool}
}

// Create は勤怠集計を作成します。(バッジ, 勤務日) が既に存在する場合は ErrAttendanceAlreadyExists を返します。
func (r *DailyRepository) Create(ctx context.Context, daily *attendance.Daily) (*attendance.Daily, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendance_daily (employee_badge_id, work_date, required_config_id, first_in, last_out, arrival_status, departure_status, exception_flags, created_at, updated_at)
        VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (employee_badge_id, work_date) DO NOTHING
        RETURNING `+dailyColumns,
		daily.BadgeID,
		workday.NormalizeDate(daily.WorkDate),
		nullableString(daily.RequiredConfigID),
		nullableTime(daily.FirstIn),
		nullableTime(daily.LastOut),
		int(daily.ArrivalStatus),
		int(daily.DepartureStatus),
		daily.ExceptionFlags,
		daily.CreatedAt,
		daily.UpdatedAt,
	)

	created, err := scanDaily(row)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, attendance.ErrAttendanceAlreadyExists
		}
		return nil, translateDailyPgError(err)
	}
	return created, nil
}

// Update は打刻時刻・判定・例外フラグを更新します。参照する規則スナップショットは変更しません。
func (r *DailyRepository) Update(ctx context.Context, daily *attendance.Daily) (*attendance.Daily, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE attendance_daily
           SET first_in = $1,
               last_out = $2,
               arrival_status = $3,
               departure_status = $4,
               exception_flags = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+dailyColumns,
		nullableTime(daily.FirstIn),
		nullableTime(daily.LastOut),
		int(daily.ArrivalStatus),
		int(daily.DepartureStatus),
		daily.ExceptionFlags,
		daily.UpdatedAt,
		daily.ID,
	)

	updated, err := scanDaily(row)
	if err != nil {
		return nil, translateDailyPgError(err)
	}
	return updated, nil
}

// Delete は勤怠集計を削除します。
func (r *DailyRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendance_daily WHERE id = $1`, id)
	if err != nil {
		return translateDailyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// FindByID は ID で勤怠集計を取得します。
func (r *DailyRepository) FindByID(ctx context.Context, id string) (*attendance.Daily, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+dailyColumns+`
          FROM attendance_daily
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDaily(row)
	if err != nil {
		return nil, translateDailyPgError(err)
	}
	return found, nil
}

// FindForUpdate は (バッジ, 勤務日) の集計を行ロック付きで取得します。
func (r *DailyRepository) FindForUpdate(ctx context.Context, badgeID string, workDate time.Time) (*attendance.Daily, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+dailyColumns+`
          FROM attendance_daily
         WHERE employee_badge_id = $1
           AND work_date = $2::date
         FOR UPDATE
    `, badgeID, workday.NormalizeDate(workDate))

	found, err := scanDaily(row)
	if err != nil {
		return nil, translateDailyPgError(err)
	}
	return found, nil
}

// List は勤怠集計の一覧を勤務日順で取得します。
func (r *DailyRepository) List(ctx context.Context, filter attendance.ListDailyFilter) ([]*attendance.Daily, string, error) {
	if filter.Limit <= 0 {
		return nil, "", attendance.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", attendance.ErrInvalidPageToken
	}

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)
	if filter.BadgeID != "" {
		args = append(args, filter.BadgeID)
		conditions = append(conditions, "employee_badge_id = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, workday.NormalizeDate(*filter.From))
		conditions = append(conditions, "work_date >= $"+strconv.Itoa(len(args))+"::date")
	}
	if filter.To != nil {
		args = append(args, workday.NormalizeDate(*filter.To))
		conditions = append(conditions, "work_date <= $"+strconv.Itoa(len(args))+"::date")
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
        SELECT ` + dailyColumns + `
          FROM attendance_daily` + whereClause + `
         ORDER BY work_date ASC, employee_badge_id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateDailyPgError(err)
	}
	defer rows.Close()

	var records []*attendance.Daily
	for rows.Next() {
		found, err := scanDaily(rows)
		if err != nil {
			return nil, "", translateDailyPgError(err)
		}
		records = append(records, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateDailyPgError(err)
	}

	var nextToken string
	if len(records) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		records = records[:filter.Limit]
	}

	return records, nextToken, nil
}

func scanDaily(row pgx.Row) (*attendance.Daily, error) {
	var (
		id, badgeID                    string
		workDate                       time.Time
		requiredConfigID               sql.NullString
		firstIn, lastOut               sql.NullTime
		arrivalStatus, departureStatus int
		exceptionFlags                 string
		createdAt, updatedAt           time.Time
	)

	if err := row.Scan(&id, &badgeID, &workDate, &requiredConfigID, &firstIn, &lastOut, &arrivalStatus, &departureStatus, &exceptionFlags, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, err
	}

	return &attendance.Daily{
		ID:               id,
		BadgeID:          badgeID,
		WorkDate:         workday.NormalizeDate(workDate),
		RequiredConfigID: requiredConfigID.String,
		FirstIn:          timePtr(firstIn),
		LastOut:          timePtr(lastOut),
		ArrivalStatus:    attendance.ArrivalStatus(arrivalStatus),
		DepartureStatus:  attendance.DepartureStatus(departureStatus),
		ExceptionFlags:   exceptionFlags,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func translateDailyPgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return attendance.ErrAttendanceAlreadyExists
	case foreignKeyViolationCode:
		return attendance.ErrInvalidBadgeID
	case checkViolationCode:
		return attendance.ErrInvalidArrivalStatus
	case invalidTextRepresentationCode:
		return attendance.ErrAttendanceNotFound
	}
	return err
}

// ScanEventRepository は PostgreSQL を利用した打刻記録永続化の実装です。
type ScanEventRepository struct {
	pool pgdb.Queryer
}

// NewScanEventRepository は ScanEventRepository を生成します。
func NewScanEventRepository(pool pgdb.Queryer) *ScanEventRepository {
	return &ScanEventRepository{pool: pool}
}

// Append は打刻記録を追記します。
func (r *ScanEventRepository) Append(ctx context.Context, event *attendance.ScanEvent) (*attendance.ScanEvent, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO scan_events (badge_id, device_id, event_time, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, badge_id, device_id, event_time, created_at
    `, event.BadgeID, event.DeviceID, event.EventTime, event.CreatedAt)

	return scanScanEvent(row)
}

// List は打刻記録を打刻時刻順で取得します。
func (r *ScanEventRepository) List(ctx context.Context, filter attendance.ListScanEventsFilter) ([]*attendance.ScanEvent, string, error) {
	if filter.Limit <= 0 {
		return nil, "", attendance.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", attendance.ErrInvalidPageToken
	}

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)
	if filter.BadgeID != "" {
		args = append(args, filter.BadgeID)
		conditions = append(conditions, "badge_id = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "event_time >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "event_time <= $"+strconv.Itoa(len(args)))
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
        SELECT id, badge_id, device_id, event_time, created_at
          FROM scan_events` + whereClause + `
         ORDER BY event_time ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var events []*attendance.ScanEvent
	for rows.Next() {
		event, err := scanScanEvent(rows)
		if err != nil {
			return nil, "", err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(events) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		events = events[:filter.Limit]
	}

	return events, nextToken, nil
}

func scanScanEvent(row pgx.Row) (*attendance.ScanEvent, error) {
	var event attendance.ScanEvent
	if err := row.Scan(&event.ID, &event.BadgeID, &event.DeviceID, &event.EventTime, &event.CreatedAt); err != nil {
		return nil, err
	}
	return &event, nil
}
