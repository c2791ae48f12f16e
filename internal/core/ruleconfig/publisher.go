package ruleconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Publisher は班表と弾性設定の現在値から規則スナップショットを発行します。
type Publisher struct {
	repo      Repository
	schedules schedule.ScheduleRepository
	flex      schedule.FlexSettingRepository
	clock     Clock
}

// NewPublisher は Publisher を生成します。
func NewPublisher(repo Repository, schedules schedule.ScheduleRepository, flex schedule.FlexSettingRepository, clock Clock) *Publisher {
	if clock == nil {
		clock = realClock{}
	}
	return &Publisher{repo: repo, schedules: schedules, flex: flex, clock: clock}
}

// Publish は (部門, 曜日) の開いているスナップショットを effectiveFrom の前日で閉じ、
// 有効な班表があれば effectiveFrom から始まる新しいスナップショットを作成します。
// 規則が変わらない場合は何もしません。
// 同じ日に再発行した場合、旧スナップショットはその日を含んだまま閉じられ、
// 解決時は後から作成されたものが優先されます。
func (p *Publisher) Publish(ctx context.Context, departmentID string, day workday.ActiveDay, effectiveFrom time.Time) error {
	if departmentID == "" {
		return ErrInvalidDepartment
	}
	if !day.Valid() {
		return ErrInvalidActiveDay
	}
	from := workday.NormalizeDate(effectiveFrom)

	next, err := p.build(ctx, departmentID, day, from)
	if err != nil {
		return err
	}

	open, err := p.repo.FindOpen(ctx, departmentID, day)
	if err != nil && !errors.Is(err, ErrRequiredConfigNotFound) {
		return fmt.Errorf("ruleconfig: find open snapshot: %w", err)
	}

	if open != nil {
		if next != nil && open.sameRules(next) {
			return nil
		}
		if err := p.repo.Close(ctx, open.ID, closingDate(open, from)); err != nil {
			return fmt.Errorf("ruleconfig: close snapshot: %w", err)
		}
	}

	if next == nil {
		return nil
	}
	if _, err := p.repo.Create(ctx, next); err != nil {
		return fmt.Errorf("ruleconfig: create snapshot: %w", err)
	}
	return nil
}

// PublishDepartment は部門のすべての曜日コードについて Publish を行います。
func (p *Publisher) PublishDepartment(ctx context.Context, departmentID string, effectiveFrom time.Time) error {
	for _, day := range workday.AllActiveDays() {
		if err := p.Publish(ctx, departmentID, day, effectiveFrom); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) build(ctx context.Context, departmentID string, day workday.ActiveDay, from time.Time) (*RequiredConfig, error) {
	active, err := p.schedules.FindActive(ctx, departmentID, day)
	if errors.Is(err, schedule.ErrScheduleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ruleconfig: find schedule: %w", err)
	}

	config := &RequiredConfig{
		DepartmentID:  departmentID,
		ScheduleID:    active.ID,
		ActiveDay:     day,
		RequiredIn:    active.RequiredIn,
		RequiredOut:   active.RequiredOut,
		DayCutoff:     active.DayCutoff,
		EffectiveFrom: from,
		CreatedAt:     p.clock.Now(),
	}

	flex, err := p.flex.FindActive(ctx, departmentID)
	switch {
	case errors.Is(err, schedule.ErrFlexSettingNotFound):
	case err != nil:
		return nil, fmt.Errorf("ruleconfig: find flex setting: %w", err)
	default:
		config.FlexSettingID = flex.ID
		config.FlexMinutes = flex.Minutes
	}

	return config, nil
}

// closingDate は後継の適用開始日 from に対する旧スナップショットの終端を返します。
// 終端が旧スナップショット自身の適用開始日より前になることはありません。
func closingDate(open *RequiredConfig, from time.Time) time.Time {
	to := from.AddDate(0, 0, -1)
	if to.Before(open.EffectiveFrom) {
		return open.EffectiveFrom
	}
	return to
}
