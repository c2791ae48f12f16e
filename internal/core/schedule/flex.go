package schedule

import (
	"context"
	"errors"
	"strings"
)

// CreateFlexSettingInput は弾性設定作成時の入力です。
type CreateFlexSettingInput struct {
	DepartmentID string
	Minutes      int
}

// FlexSettingUpdate は弾性設定の部分更新です。
type FlexSettingUpdate struct {
	Minutes *int
}

// UpdateFlexSettingInput は弾性設定更新時の入力です。
type UpdateFlexSettingInput struct {
	ID      string
	Changes FlexSettingUpdate
}

// ListFlexSettingsInput は弾性設定一覧取得時の入力です。
type ListFlexSettingsInput struct {
	DepartmentID   string
	IncludeDeleted bool
	PageSize       int
	PageToken      string
}

// ListFlexSettingsResult は弾性設定一覧の結果です。
type ListFlexSettingsResult struct {
	FlexSettings  []*FlexSetting
	NextPageToken string
}

// CreateFlexSetting は弾性設定を登録します。部門ごとに有効な設定は 1 件までです。
func (s *Service) CreateFlexSetting(ctx context.Context, in CreateFlexSettingInput) (*FlexSetting, error) {
	departmentID, err := normalizeID(in.DepartmentID, ErrInvalidDepartment)
	if err != nil {
		return nil, err
	}
	if in.Minutes < 0 {
		return nil, ErrInvalidFlexMinutes
	}

	var created *FlexSetting
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDepartmentExists(txCtx, departmentID); err != nil {
			return err
		}
		if err := s.ensureNoActiveFlexSetting(txCtx, departmentID, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.flex.Create(txCtx, &FlexSetting{
			DepartmentID: departmentID,
			Minutes:      in.Minutes,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		created = result
		return s.publishDepartment(txCtx, departmentID, now)
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetFlexSetting は ID で弾性設定を取得します。
func (s *Service) GetFlexSetting(ctx context.Context, id string) (*FlexSetting, error) {
	id, err := normalizeID(id, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var result *FlexSetting
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.flex.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ListFlexSettings は弾性設定の一覧を返します。
func (s *Service) ListFlexSettings(ctx context.Context, in ListFlexSettingsInput) (*ListFlexSettingsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		settings  []*FlexSetting
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.flex.List(txCtx, ListFlexSettingsFilter{
			DepartmentID:   strings.TrimSpace(in.DepartmentID),
			IncludeDeleted: in.IncludeDeleted,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			return err
		}
		settings = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListFlexSettingsResult{FlexSettings: settings, NextPageToken: nextToken}, nil
}

// UpdateFlexSetting は弾性設定を更新します。削除済みの設定は更新できません。
func (s *Service) UpdateFlexSetting(ctx context.Context, in UpdateFlexSettingInput) (*FlexSetting, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var updated *FlexSetting
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.flex.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.IsDeleted {
			return ErrAlreadyDeleted
		}

		merged, err := in.Changes.apply(existing)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		merged.UpdatedAt = now
		result, err := s.flex.Update(txCtx, merged)
		if err != nil {
			return err
		}
		updated = result
		return s.publishDepartment(txCtx, merged.DepartmentID, now)
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteFlexSetting は弾性設定を論理削除します。
func (s *Service) DeleteFlexSetting(ctx context.Context, in DeleteInput) error {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.flex.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.IsDeleted {
			return ErrAlreadyDeleted
		}

		now := s.clock.Now()
		existing.markDeleted(now, deletedBy(in.DeletedBy))
		if _, err := s.flex.Update(txCtx, existing); err != nil {
			return err
		}
		return s.publishDepartment(txCtx, existing.DepartmentID, now)
	})
}

func (u FlexSettingUpdate) apply(existing *FlexSetting) (*FlexSetting, error) {
	merged := *existing
	if u.Minutes != nil {
		if *u.Minutes < 0 {
			return nil, ErrInvalidFlexMinutes
		}
		merged.Minutes = *u.Minutes
	}
	return &merged, nil
}

func (s *Service) ensureNoActiveFlexSetting(ctx context.Context, departmentID, selfID string) error {
	found, err := s.flex.FindActive(ctx, departmentID)
	if errors.Is(err, ErrFlexSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if found != nil && found.ID != selfID {
		return ErrFlexSettingConflict
	}
	return nil
}
