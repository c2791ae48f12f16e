package ruleconfig

import (
	"context"
	"strings"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は規則スナップショットの参照用ユースケースです。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// List は部門のスナップショット履歴を返します。
func (s *Service) List(ctx context.Context, departmentID string) ([]*RequiredConfig, error) {
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return nil, ErrInvalidDepartment
	}

	var result []*RequiredConfig
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		configs, err := s.repo.ListByDepartment(txCtx, departmentID)
		if err != nil {
			return err
		}
		result = configs
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}
