package ruleconfig

import (
	"context"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// Repository は規則スナップショットの永続化を行うインターフェースです。
type Repository interface {
	// FindEffective は date を有効期間に含むスナップショットを返します。無ければ ErrRequiredConfigNotFound です。
	FindEffective(ctx context.Context, departmentID string, day workday.ActiveDay, date time.Time) (*RequiredConfig, error)
	// FindOpen は EffectiveTo が未設定のスナップショットを返します。無ければ ErrRequiredConfigNotFound です。
	FindOpen(ctx context.Context, departmentID string, day workday.ActiveDay) (*RequiredConfig, error)
	Create(ctx context.Context, config *RequiredConfig) (*RequiredConfig, error)
	// Close は EffectiveTo のみを更新します。
	Close(ctx context.Context, id string, effectiveTo time.Time) error
	ListByDepartment(ctx context.Context, departmentID string) ([]*RequiredConfig, error)
}
