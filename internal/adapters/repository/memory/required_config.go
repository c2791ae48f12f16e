package memory

import (
	"context"
	"sort"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// RequiredConfigRepository は ruleconfig.Repository のメモリ実装です。
type RequiredConfigRepository struct {
	store *Store
}

var _ ruleconfig.Repository = (*RequiredConfigRepository)(nil)

// FindEffective は date を有効期間に含むスナップショットを返します。
// 複数該当する場合は適用開始日が最も新しいものを、同日なら後に作成されたものを返します。
func (r *RequiredConfigRepository) FindEffective(_ context.Context, departmentID string, day workday.ActiveDay, date time.Time) (*ruleconfig.RequiredConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *ruleconfig.RequiredConfig
	r.store.configs.each(func(row *ruleconfig.RequiredConfig) bool {
		if row.DepartmentID != departmentID || row.ActiveDay != day || !row.Covers(date) {
			return true
		}
		if found == nil || newer(row, found) {
			found = row
		}
		return true
	})
	if found == nil {
		return nil, ruleconfig.ErrRequiredConfigNotFound
	}
	out := *found
	return &out, nil
}

// newer は row が current より優先されるかを返します。
// configs は挿入順に走査されるため、作成時刻が等しい場合は後の行が優先されます。
func newer(row, current *ruleconfig.RequiredConfig) bool {
	if !row.EffectiveFrom.Equal(current.EffectiveFrom) {
		return row.EffectiveFrom.After(current.EffectiveFrom)
	}
	return !row.CreatedAt.Before(current.CreatedAt)
}

// FindOpen は終端未設定のスナップショットを返します。
func (r *RequiredConfigRepository) FindOpen(_ context.Context, departmentID string, day workday.ActiveDay) (*ruleconfig.RequiredConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *ruleconfig.RequiredConfig
	r.store.configs.each(func(row *ruleconfig.RequiredConfig) bool {
		if row.DepartmentID == departmentID && row.ActiveDay == day && row.Open() {
			out := *row
			found = &out
			return false
		}
		return true
	})
	if found == nil {
		return nil, ruleconfig.ErrRequiredConfigNotFound
	}
	return found, nil
}

// Create はスナップショットを登録します。
func (r *RequiredConfigRepository) Create(_ context.Context, c *ruleconfig.RequiredConfig) (*ruleconfig.RequiredConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := *c
	if row.ID == "" {
		row.ID = r.store.newID()
	}
	r.store.configs.put(row.ID, &row)
	out := row
	return &out, nil
}

// Close はスナップショットの EffectiveTo を設定します。
func (r *RequiredConfigRepository) Close(_ context.Context, id string, effectiveTo time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.configs.get(id)
	if !ok {
		return ruleconfig.ErrRequiredConfigNotFound
	}
	closed := *row
	to := workday.NormalizeDate(effectiveTo)
	closed.EffectiveTo = &to
	r.store.configs.put(id, &closed)
	return nil
}

// ListByDepartment は曜日コード・適用開始日の順にスナップショットを返します。
func (r *RequiredConfigRepository) ListByDepartment(_ context.Context, departmentID string) ([]*ruleconfig.RequiredConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*ruleconfig.RequiredConfig
	r.store.configs.each(func(row *ruleconfig.RequiredConfig) bool {
		if row.DepartmentID == departmentID {
			out := *row
			result = append(result, &out)
		}
		return true
	})
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ActiveDay != result[j].ActiveDay {
			return result[i].ActiveDay < result[j].ActiveDay
		}
		return result[i].EffectiveFrom.Before(result[j].EffectiveFrom)
	})
	return result, nil
}
