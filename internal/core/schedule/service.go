package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は班表と弾性設定のカタログを管理します。
// 書き込みが成功するたびに SnapshotPublisher へ規則スナップショットの再発行を依頼します。
type Service struct {
	schedules   ScheduleRepository
	flex        FlexSettingRepository
	departments DepartmentFinder
	publisher   SnapshotPublisher
	clock       Clock
	tx          TransactionManager
}

// UseCase はカタログ管理の公開インターフェースです。
type UseCase interface {
	CreateSchedule(ctx context.Context, in CreateScheduleInput) (*Schedule, error)
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, in ListSchedulesInput) (*ListSchedulesResult, error)
	UpdateSchedule(ctx context.Context, in UpdateScheduleInput) (*Schedule, error)
	DeleteSchedule(ctx context.Context, in DeleteInput) error

	CreateFlexSetting(ctx context.Context, in CreateFlexSettingInput) (*FlexSetting, error)
	GetFlexSetting(ctx context.Context, id string) (*FlexSetting, error)
	ListFlexSettings(ctx context.Context, in ListFlexSettingsInput) (*ListFlexSettingsResult, error)
	UpdateFlexSetting(ctx context.Context, in UpdateFlexSettingInput) (*FlexSetting, error)
	DeleteFlexSetting(ctx context.Context, in DeleteInput) error
}

// NewService は Service を生成します。publisher が nil の場合はスナップショットを発行しません。
func NewService(schedules ScheduleRepository, flex FlexSettingRepository, departments DepartmentFinder, publisher SnapshotPublisher, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		schedules:   schedules,
		flex:        flex,
		departments: departments,
		publisher:   publisher,
		clock:       clock,
		tx:          tx,
	}
}

// CreateScheduleInput は班表作成時の入力です。
type CreateScheduleInput struct {
	DepartmentID string
	Name         string
	ActiveDay    workday.ActiveDay
	RequiredIn   workday.TimeOfDay
	RequiredOut  workday.TimeOfDay
	DayCutoff    workday.TimeOfDay
}

// ScheduleUpdate は班表の部分更新です。nil のフィールドは変更しません。
type ScheduleUpdate struct {
	Name        *string
	ActiveDay   *workday.ActiveDay
	RequiredIn  *workday.TimeOfDay
	RequiredOut *workday.TimeOfDay
	DayCutoff   *workday.TimeOfDay
}

// UpdateScheduleInput は班表更新時の入力です。
type UpdateScheduleInput struct {
	ID      string
	Changes ScheduleUpdate
}

// DeleteInput は論理削除時の入力です。DeletedBy が空なら DefaultDeletedBy を記録します。
type DeleteInput struct {
	ID        string
	DeletedBy string
}

// ListSchedulesInput は班表一覧取得時の入力です。
type ListSchedulesInput struct {
	DepartmentID   string
	IncludeDeleted bool
	PageSize       int
	PageToken      string
}

// ListSchedulesResult は班表一覧の結果です。
type ListSchedulesResult struct {
	Schedules     []*Schedule
	NextPageToken string
}

// CreateSchedule は班表を登録します。同じ部門・曜日に有効な班表があれば ErrScheduleConflict です。
func (s *Service) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*Schedule, error) {
	departmentID, err := normalizeID(in.DepartmentID, ErrInvalidDepartment)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	candidate := &Schedule{
		DepartmentID: departmentID,
		Name:         name,
		ActiveDay:    in.ActiveDay,
		RequiredIn:   in.RequiredIn,
		RequiredOut:  in.RequiredOut,
		DayCutoff:    in.DayCutoff,
	}
	if err := validateSchedule(candidate); err != nil {
		return nil, err
	}

	var created *Schedule
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDepartmentExists(txCtx, departmentID); err != nil {
			return err
		}
		if err := s.ensureNoActiveSchedule(txCtx, departmentID, candidate.ActiveDay, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		candidate.CreatedAt = now
		candidate.UpdatedAt = now
		result, err := s.schedules.Create(txCtx, candidate)
		if err != nil {
			return err
		}
		created = result
		return s.publish(txCtx, departmentID, now, result.ActiveDay)
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetSchedule は ID で班表を取得します。削除済みの行も返します。
func (s *Service) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	id, err := normalizeID(id, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var result *Schedule
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.schedules.FindByID(txCtx, id)
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

// ListSchedules は班表の一覧を返します。既定では削除済みを含みません。
func (s *Service) ListSchedules(ctx context.Context, in ListSchedulesInput) (*ListSchedulesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		schedules []*Schedule
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.schedules.List(txCtx, ListSchedulesFilter{
			DepartmentID:   strings.TrimSpace(in.DepartmentID),
			IncludeDeleted: in.IncludeDeleted,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			return err
		}
		schedules = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListSchedulesResult{Schedules: schedules, NextPageToken: nextToken}, nil
}

// UpdateSchedule は班表を部分更新します。削除済みの班表は更新できません。
func (s *Service) UpdateSchedule(ctx context.Context, in UpdateScheduleInput) (*Schedule, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var updated *Schedule
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.schedules.FindByID(txCtx, id)
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

		if merged.ActiveDay != existing.ActiveDay {
			if err := s.ensureNoActiveSchedule(txCtx, merged.DepartmentID, merged.ActiveDay, merged.ID); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		merged.UpdatedAt = now
		result, err := s.schedules.Update(txCtx, merged)
		if err != nil {
			return err
		}
		updated = result

		days := []workday.ActiveDay{existing.ActiveDay}
		if merged.ActiveDay != existing.ActiveDay {
			days = append(days, merged.ActiveDay)
		}
		return s.publish(txCtx, merged.DepartmentID, now, days...)
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteSchedule は班表を論理削除します。削除時刻と削除者を記録します。
func (s *Service) DeleteSchedule(ctx context.Context, in DeleteInput) error {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.schedules.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.IsDeleted {
			return ErrAlreadyDeleted
		}

		now := s.clock.Now()
		existing.markDeleted(now, deletedBy(in.DeletedBy))
		if _, err := s.schedules.Update(txCtx, existing); err != nil {
			return err
		}
		return s.publish(txCtx, existing.DepartmentID, now, existing.ActiveDay)
	})
}

// ActiveSchedule は部門・曜日コードに一致する有効な班表を返します。
// フォールバックは行いません。検索順は呼び出し側が決定します。
func (s *Service) ActiveSchedule(ctx context.Context, departmentID string, day workday.ActiveDay) (*Schedule, error) {
	var result *Schedule
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.schedules.FindActive(txCtx, departmentID, day)
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

// ActiveFlexMinutes は部門の有効な弾性分数を返します。設定が無ければ 0 です。
func (s *Service) ActiveFlexMinutes(ctx context.Context, departmentID string) (int, error) {
	minutes := 0
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.flex.FindActive(txCtx, departmentID)
		if errors.Is(err, ErrFlexSettingNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		minutes = found.Minutes
		return nil
	}); err != nil {
		return 0, err
	}
	return minutes, nil
}

// apply は変更内容を既存の班表へ適用した複製を返します。
func (u ScheduleUpdate) apply(existing *Schedule) (*Schedule, error) {
	merged := *existing

	if u.Name != nil {
		name, err := normalizeName(*u.Name)
		if err != nil {
			return nil, err
		}
		merged.Name = name
	}
	if u.ActiveDay != nil {
		merged.ActiveDay = *u.ActiveDay
	}
	if u.RequiredIn != nil {
		merged.RequiredIn = *u.RequiredIn
	}
	if u.RequiredOut != nil {
		merged.RequiredOut = *u.RequiredOut
	}
	if u.DayCutoff != nil {
		merged.DayCutoff = *u.DayCutoff
	}

	if err := validateSchedule(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *Service) ensureNoActiveSchedule(ctx context.Context, departmentID string, day workday.ActiveDay, selfID string) error {
	found, err := s.schedules.FindActive(ctx, departmentID, day)
	if errors.Is(err, ErrScheduleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if found != nil && found.ID != selfID {
		return ErrScheduleConflict
	}
	return nil
}

func (s *Service) ensureDepartmentExists(ctx context.Context, departmentID string) error {
	if s.departments == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, departmentID)
	if err != nil {
		return fmt.Errorf("schedule: check department: %w", err)
	}
	if !ok {
		return ErrDepartmentNotFound
	}
	return nil
}

// publish は now の暦日を適用開始日として曜日ごとにスナップショットを再発行します。
func (s *Service) publish(ctx context.Context, departmentID string, now time.Time, days ...workday.ActiveDay) error {
	if s.publisher == nil {
		return nil
	}
	effectiveFrom := workday.NormalizeDate(now)
	for _, day := range days {
		if err := s.publisher.Publish(ctx, departmentID, day, effectiveFrom); err != nil {
			return fmt.Errorf("schedule: publish snapshot: %w", err)
		}
	}
	return nil
}

func (s *Service) publishDepartment(ctx context.Context, departmentID string, now time.Time) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishDepartment(ctx, departmentID, workday.NormalizeDate(now)); err != nil {
		return fmt.Errorf("schedule: publish snapshots: %w", err)
	}
	return nil
}

func validateSchedule(s *Schedule) error {
	if !s.ActiveDay.Valid() {
		return ErrInvalidActiveDay
	}
	if !s.RequiredIn.Valid() || !s.RequiredOut.Valid() || !s.DayCutoff.Valid() {
		return ErrInvalidTimeOfDay
	}
	return nil
}

func deletedBy(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultDeletedBy
	}
	return trimmed
}

func normalizeID(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return offset, nil
}
