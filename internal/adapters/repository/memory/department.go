package memory

import (
	"context"

	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
)

// DepartmentRepository は department.Repository のメモリ実装です。
type DepartmentRepository struct {
	store *Store
}

var _ department.Repository = (*DepartmentRepository)(nil)

// Create は部門を登録します。
func (r *DepartmentRepository) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.codeTaken(d.Code, "") {
		return nil, department.ErrCodeAlreadyExists
	}
	row := *d
	if row.ID == "" {
		row.ID = r.store.newID()
	}
	r.store.departments.put(row.ID, &row)
	out := row
	return &out, nil
}

// Update は部門を更新します。
func (r *DepartmentRepository) Update(_ context.Context, d *department.Department) (*department.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.departments.get(d.ID)
	if !ok {
		return nil, department.ErrDepartmentNotFound
	}
	if r.codeTaken(d.Code, d.ID) {
		return nil, department.ErrCodeAlreadyExists
	}
	row := *d
	row.CreatedAt = current.CreatedAt
	r.store.departments.put(row.ID, &row)
	out := row
	return &out, nil
}

// Delete は従業員・班表・弾性設定から参照されていない部門を削除します。
func (r *DepartmentRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.departments.get(id); !ok {
		return department.ErrDepartmentNotFound
	}
	if r.referenced(id) {
		return department.ErrDepartmentInUse
	}
	r.store.departments.remove(id)
	return nil
}

// FindByID は ID で部門を取得します。
func (r *DepartmentRepository) FindByID(_ context.Context, id string) (*department.Department, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.departments.get(id)
	if !ok {
		return nil, department.ErrDepartmentNotFound
	}
	out := *row
	return &out, nil
}

// FindByCode はコードで部門を取得します。
func (r *DepartmentRepository) FindByCode(_ context.Context, code string) (*department.Department, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *department.Department
	r.store.departments.each(func(row *department.Department) bool {
		if row.Code == code {
			out := *row
			found = &out
			return false
		}
		return true
	})
	if found == nil {
		return nil, department.ErrDepartmentNotFound
	}
	return found, nil
}

// List は登録順に部門を返します。
func (r *DepartmentRepository) List(_ context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var all []*department.Department
	r.store.departments.each(func(row *department.Department) bool {
		out := *row
		all = append(all, &out)
		return true
	})
	page, next := paginate(all, filter.Limit, filter.Offset)
	return page, next, nil
}

// Exists は部門が存在するかを返します。
func (r *DepartmentRepository) Exists(_ context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.departments.get(id)
	return ok, nil
}

func (r *DepartmentRepository) codeTaken(code, selfID string) bool {
	taken := false
	r.store.departments.each(func(row *department.Department) bool {
		if row.Code == code && row.ID != selfID {
			taken = true
			return false
		}
		return true
	})
	return taken
}

func (r *DepartmentRepository) referenced(id string) bool {
	for _, e := range r.store.employees.rows {
		if e.DepartmentID == id {
			return true
		}
	}
	for _, s := range r.store.schedules.rows {
		if s.DepartmentID == id {
			return true
		}
	}
	for _, f := range r.store.flexSettings.rows {
		if f.DepartmentID == id {
			return true
		}
	}
	return false
}
