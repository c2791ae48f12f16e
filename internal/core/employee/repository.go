package employee

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, badgeID string) error
	FindByBadge(ctx context.Context, badgeID string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// DepartmentFinder は所属部門の存在確認に利用します。
type DepartmentFinder interface {
	Exists(ctx context.Context, departmentID string) (bool, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	DepartmentID string
	Status       *Status
	Limit        int
	Offset       int
}
