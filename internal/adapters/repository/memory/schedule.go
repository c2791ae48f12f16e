package memory

import (
	"context"

	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// ScheduleRepository は schedule.ScheduleRepository のメモリ実装です。
type ScheduleRepository struct {
	store *Store
}

var _ schedule.ScheduleRepository = (*ScheduleRepository)(nil)

// Create は班表を登録します。有効な班表の (部門, 曜日) 重複は ErrScheduleConflict です。
func (r *ScheduleRepository) Create(_ context.Context, s *schedule.Schedule) (*schedule.Schedule, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.departments.get(s.DepartmentID); !ok {
		return nil, schedule.ErrDepartmentNotFound
	}
	if !s.IsDeleted && r.activeExists(s.DepartmentID, s.ActiveDay, "") {
		return nil, schedule.ErrScheduleConflict
	}
	row := *s
	if row.ID == "" {
		row.ID = r.store.newID()
	}
	r.store.schedules.put(row.ID, &row)
	out := row
	return &out, nil
}

// Update は論理削除の列を含めて班表を書き戻します。
func (r *ScheduleRepository) Update(_ context.Context, s *schedule.Schedule) (*schedule.Schedule, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.schedules.get(s.ID)
	if !ok {
		return nil, schedule.ErrScheduleNotFound
	}
	if !s.IsDeleted && r.activeExists(s.DepartmentID, s.ActiveDay, s.ID) {
		return nil, schedule.ErrScheduleConflict
	}
	row := *s
	row.CreatedAt = current.CreatedAt
	r.store.schedules.put(row.ID, &row)
	out := row
	return &out, nil
}

// FindByID は ID で班表を取得します。
func (r *ScheduleRepository) FindByID(_ context.Context, id string) (*schedule.Schedule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.schedules.get(id)
	if !ok {
		return nil, schedule.ErrScheduleNotFound
	}
	out := *row
	return &out, nil
}

// FindActive は部門・曜日コードに一致する未削除の班表を返します。
func (r *ScheduleRepository) FindActive(_ context.Context, departmentID string, day workday.ActiveDay) (*schedule.Schedule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *schedule.Schedule
	r.store.schedules.each(func(row *schedule.Schedule) bool {
		if row.DepartmentID == departmentID && row.ActiveDay == day && !row.IsDeleted {
			out := *row
			found = &out
			return false
		}
		return true
	})
	if found == nil {
		return nil, schedule.ErrScheduleNotFound
	}
	return found, nil
}

// List は登録順に班表を返します。
func (r *ScheduleRepository) List(_ context.Context, filter schedule.ListSchedulesFilter) ([]*schedule.Schedule, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*schedule.Schedule
	r.store.schedules.each(func(row *schedule.Schedule) bool {
		if filter.DepartmentID != "" && row.DepartmentID != filter.DepartmentID {
			return true
		}
		if row.IsDeleted && !filter.IncludeDeleted {
			return true
		}
		out := *row
		matched = append(matched, &out)
		return true
	})
	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}

func (r *ScheduleRepository) activeExists(departmentID string, day workday.ActiveDay, selfID string) bool {
	for _, row := range r.store.schedules.rows {
		if row.DepartmentID == departmentID && row.ActiveDay == day && !row.IsDeleted && row.ID != selfID {
			return true
		}
	}
	return false
}

// FlexSettingRepository は schedule.FlexSettingRepository のメモリ実装です。
type FlexSettingRepository struct {
	store *Store
}

var _ schedule.FlexSettingRepository = (*FlexSettingRepository)(nil)

// Create は弾性設定を登録します。
func (r *FlexSettingRepository) Create(_ context.Context, f *schedule.FlexSetting) (*schedule.FlexSetting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.departments.get(f.DepartmentID); !ok {
		return nil, schedule.ErrDepartmentNotFound
	}
	if !f.IsDeleted && r.activeExists(f.DepartmentID, "") {
		return nil, schedule.ErrFlexSettingConflict
	}
	row := *f
	if row.ID == "" {
		row.ID = r.store.newID()
	}
	r.store.flexSettings.put(row.ID, &row)
	out := row
	return &out, nil
}

// Update は論理削除の列を含めて弾性設定を書き戻します。
func (r *FlexSettingRepository) Update(_ context.Context, f *schedule.FlexSetting) (*schedule.FlexSetting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.flexSettings.get(f.ID)
	if !ok {
		return nil, schedule.ErrFlexSettingNotFound
	}
	if !f.IsDeleted && r.activeExists(f.DepartmentID, f.ID) {
		return nil, schedule.ErrFlexSettingConflict
	}
	row := *f
	row.CreatedAt = current.CreatedAt
	r.store.flexSettings.put(row.ID, &row)
	out := row
	return &out, nil
}

// FindByID は ID で弾性設定を取得します。
func (r *FlexSettingRepository) FindByID(_ context.Context, id string) (*schedule.FlexSetting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.flexSettings.get(id)
	if !ok {
		return nil, schedule.ErrFlexSettingNotFound
	}
	out := *row
	return &out, nil
}

// FindActive は部門の未削除の弾性設定を返します。
func (r *FlexSettingRepository) FindActive(_ context.Context, departmentID string) (*schedule.FlexSetting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *schedule.FlexSetting
	r.store.flexSettings.each(func(row *schedule.FlexSetting) bool {
		if row.DepartmentID == departmentID && !row.IsDeleted {
			out := *row
			found = &out
			return false
		}
		return true
	})
	if found == nil {
		return nil, schedule.ErrFlexSettingNotFound
	}
	return found, nil
}

// List は登録順に弾性設定を返します。
func (r *FlexSettingRepository) List(_ context.Context, filter schedule.ListFlexSettingsFilter) ([]*schedule.FlexSetting, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*schedule.FlexSetting
	r.store.flexSettings.each(func(row *schedule.FlexSetting) bool {
		if filter.DepartmentID != "" && row.DepartmentID != filter.DepartmentID {
			return true
		}
		if row.IsDeleted && !filter.IncludeDeleted {
			return true
		}
		out := *row
		matched = append(matched, &out)
		return true
	})
	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}

func (r *FlexSettingRepository) activeExists(departmentID, selfID string) bool {
	for _, row := range r.store.flexSettings.rows {
		if row.DepartmentID == departmentID && !row.IsDeleted && row.ID != selfID {
			return true
		}
	}
	return false
}
