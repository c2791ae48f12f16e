package memory

import (
	"context"

	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
)

// EmployeeRepository は employee.Repository のメモリ実装です。
type EmployeeRepository struct {
	store *Store
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// Create は従業員を登録します。
func (r *EmployeeRepository) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.employees.get(e.BadgeID); ok {
		return nil, employee.ErrBadgeAlreadyExists
	}
	if _, ok := r.store.departments.get(e.DepartmentID); !ok {
		return nil, employee.ErrDepartmentNotFound
	}
	row := *e
	r.store.employees.put(row.BadgeID, &row)
	out := row
	return &out, nil
}

// Update は従業員を更新します。
func (r *EmployeeRepository) Update(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.employees.get(e.BadgeID)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	if _, ok := r.store.departments.get(e.DepartmentID); !ok {
		return nil, employee.ErrDepartmentNotFound
	}
	row := *e
	row.CreatedAt = current.CreatedAt
	r.store.employees.put(row.BadgeID, &row)
	out := row
	return &out, nil
}

// Delete は勤怠集計を持たない従業員を削除します。
func (r *EmployeeRepository) Delete(_ context.Context, badgeID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.employees.get(badgeID); !ok {
		return employee.ErrEmployeeNotFound
	}
	for _, d := range r.store.daily.rows {
		if d.BadgeID == badgeID {
			return employee.ErrEmployeeHasAttendance
		}
	}
	r.store.employees.remove(badgeID)
	return nil
}

// FindByBadge はバッジ ID で従業員を取得します。
func (r *EmployeeRepository) FindByBadge(_ context.Context, badgeID string) (*employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.employees.get(badgeID)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	out := *row
	return &out, nil
}

// List は登録順に従業員を返します。
func (r *EmployeeRepository) List(_ context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*employee.Employee
	r.store.employees.each(func(row *employee.Employee) bool {
		if filter.DepartmentID != "" && row.DepartmentID != filter.DepartmentID {
			return true
		}
		if filter.Status != nil && row.Status != *filter.Status {
			return true
		}
		out := *row
		matched = append(matched, &out)
		return true
	})
	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}
