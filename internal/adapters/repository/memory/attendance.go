package memory

import (
	"context"
	"sort"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// AttendanceDailyRepository は attendance.DailyRepository のメモリ実装です。
type AttendanceDailyRepository struct {
	store *Store
}

var _ attendance.DailyRepository = (*AttendanceDailyRepository)(nil)

// Create は勤怠集計を登録します。(バッジ, 勤務日) が重複する場合は ErrAttendanceAlreadyExists です。
func (r *AttendanceDailyRepository) Create(_ context.Context, d *attendance.Daily) (*attendance.Daily, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workDate := workday.NormalizeDate(d.WorkDate)
	if r.findByKey(d.BadgeID, workDate) != nil {
		return nil, attendance.ErrAttendanceAlreadyExists
	}
	row := *d
	row.WorkDate = workDate
	if row.ID == "" {
		row.ID = r.store.newID()
	}
	r.store.daily.put(row.ID, &row)
	out := row
	return &out, nil
}

// Update は勤怠集計を更新します。規則スナップショットの参照と自然キーは保持されます。
func (r *AttendanceDailyRepository) Update(_ context.Context, d *attendance.Daily) (*attendance.Daily, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.daily.get(d.ID)
	if !ok {
		return nil, attendance.ErrAttendanceNotFound
	}
	row := *d
	row.BadgeID = current.BadgeID
	row.WorkDate = current.WorkDate
	row.RequiredConfigID = current.RequiredConfigID
	row.CreatedAt = current.CreatedAt
	r.store.daily.put(row.ID, &row)
	out := row
	return &out, nil
}

// Delete は勤怠集計を削除します。
func (r *AttendanceDailyRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if !r.store.daily.remove(id) {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// FindByID は ID で勤怠集計を取得します。
func (r *AttendanceDailyRepository) FindByID(_ context.Context, id string) (*attendance.Daily, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.daily.get(id)
	if !ok {
		return nil, attendance.ErrAttendanceNotFound
	}
	out := *row
	return &out, nil
}

// FindForUpdate は (バッジ, 勤務日) の勤怠集計を取得します。
// メモリ実装に行ロックは無く、排他はエンジンのキーロックに委ねます。
func (r *AttendanceDailyRepository) FindForUpdate(_ context.Context, badgeID string, workDate time.Time) (*attendance.Daily, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row := r.findByKey(badgeID, workday.NormalizeDate(workDate))
	if row == nil {
		return nil, attendance.ErrAttendanceNotFound
	}
	out := *row
	return &out, nil
}

// List は勤務日・バッジ ID の昇順で勤怠集計を返します。
func (r *AttendanceDailyRepository) List(_ context.Context, filter attendance.ListDailyFilter) ([]*attendance.Daily, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*attendance.Daily
	r.store.daily.each(func(row *attendance.Daily) bool {
		if filter.BadgeID != "" && row.BadgeID != filter.BadgeID {
			return true
		}
		if filter.From != nil && row.WorkDate.Before(*filter.From) {
			return true
		}
		if filter.To != nil && row.WorkDate.After(*filter.To) {
			return true
		}
		out := *row
		matched = append(matched, &out)
		return true
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].WorkDate.Equal(matched[j].WorkDate) {
			return matched[i].WorkDate.Before(matched[j].WorkDate)
		}
		return matched[i].BadgeID < matched[j].BadgeID
	})
	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}

func (r *AttendanceDailyRepository) findByKey(badgeID string, workDate time.Time) *attendance.Daily {
	var found *attendance.Daily
	r.store.daily.each(func(row *attendance.Daily) bool {
		if row.BadgeID == badgeID && row.WorkDate.Equal(workDate) {
			found = row
			return false
		}
		return true
	})
	return found
}

// ScanEventRepository は attendance.ScanEventRepository のメモリ実装です。
type ScanEventRepository struct {
	store *Store
}

var _ attendance.ScanEventRepository = (*ScanEventRepository)(nil)

// Append は打刻記録を追記します。
func (r *ScanEventRepository) Append(_ context.Context, e *attendance.ScanEvent) (*attendance.ScanEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := *e
	row.ID = r.store.newID()
	r.store.events.put(row.ID, &row)
	out := row
	return &out, nil
}

// List は打刻時刻の昇順で打刻記録を返します。
func (r *ScanEventRepository) List(_ context.Context, filter attendance.ListScanEventsFilter) ([]*attendance.ScanEvent, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*attendance.ScanEvent
	r.store.events.each(func(row *attendance.ScanEvent) bool {
		if filter.BadgeID != "" && row.BadgeID != filter.BadgeID {
			return true
		}
		if filter.From != nil && row.EventTime.Before(*filter.From) {
			return true
		}
		if filter.To != nil && row.EventTime.After(*filter.To) {
			return true
		}
		out := *row
		matched = append(matched, &out)
		return true
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].EventTime.Before(matched[j].EventTime)
	})
	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}
