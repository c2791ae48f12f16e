package department

import "context"

// Repository は部門エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, department *Department) (*Department, error)
	Update(ctx context.Context, department *Department) (*Department, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByCode(ctx context.Context, code string) (*Department, error)
	List(ctx context.Context, filter ListDepartmentsFilter) ([]*Department, string, error)
}

// ListDepartmentsFilter は一覧取得時の検索条件を表します。
type ListDepartmentsFilter struct {
	Limit  int
	Offset int
}
