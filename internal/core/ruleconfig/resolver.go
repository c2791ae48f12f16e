package ruleconfig

import (
	"context"
	"errors"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// Resolver は部門・曜日・日付に適用される規則スナップショットを解決します。
type Resolver struct {
	repo Repository
}

// NewResolver は Resolver を生成します。
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve は特定曜日、全曜日の順にスナップショットを検索します。
// どちらにも一致しない場合は nil, nil を返します。
func (r *Resolver) Resolve(ctx context.Context, departmentID string, weekday time.Weekday, date time.Time) (*RequiredConfig, error) {
	target := workday.NormalizeDate(date)
	for _, day := range workday.LookupOrder(weekday) {
		config, err := r.repo.FindEffective(ctx, departmentID, day, target)
		if errors.Is(err, ErrRequiredConfigNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return config, nil
	}
	return nil, nil
}
