package attendance

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	// defaultBadgeWindowDays はバッジのみ指定された一覧取得で遡る日数です。
	defaultBadgeWindowDays = 30
)

// Service は勤怠集計と打刻記録の参照・手動修正を提供します。
type Service struct {
	daily  DailyRepository
	events ScanEventRepository
	clock  Clock
	tx     TransactionManager
}

// UseCase は勤怠参照ユースケースの公開インターフェースです。
type UseCase interface {
	GetDaily(ctx context.Context, id string) (*Daily, error)
	ListDaily(ctx context.Context, in ListDailyInput) (*ListDailyResult, error)
	ListScanEvents(ctx context.Context, in ListScanEventsInput) (*ListScanEventsResult, error)
	UpdateDaily(ctx context.Context, in UpdateDailyInput) (*Daily, error)
	DeleteDaily(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(daily DailyRepository, events ScanEventRepository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{daily: daily, events: events, clock: clock, tx: tx}
}

// ListDailyInput は勤怠集計一覧の入力です。
// WorkDate を指定した場合は From/To より優先します。
// BadgeID のみ指定した場合は直近 30 日を対象とします。
type ListDailyInput struct {
	BadgeID   string
	WorkDate  *time.Time
	From      *time.Time
	To        *time.Time
	PageSize  int
	PageToken string
}

// ListDailyResult は勤怠集計一覧の結果です。
type ListDailyResult struct {
	Records       []*Daily
	NextPageToken string
}

// ListScanEventsInput は打刻記録一覧の入力です。
type ListScanEventsInput struct {
	BadgeID   string
	From      *time.Time
	To        *time.Time
	PageSize  int
	PageToken string
}

// ListScanEventsResult は打刻記録一覧の結果です。
type ListScanEventsResult struct {
	Events        []*ScanEvent
	NextPageToken string
}

// DailyUpdate は勤怠集計の手動修正内容です。nil のフィールドは変更しません。
// 規則スナップショットの参照・バッジ・勤務日は変更できません。
type DailyUpdate struct {
	FirstIn         *time.Time
	LastOut         *time.Time
	ArrivalStatus   *ArrivalStatus
	DepartureStatus *DepartureStatus
	ExceptionFlags  *string
}

// UpdateDailyInput は勤怠集計更新時の入力です。
type UpdateDailyInput struct {
	ID      string
	Changes DailyUpdate
}

// GetDaily は ID で勤怠集計を取得します。
func (s *Service) GetDaily(ctx context.Context, id string) (*Daily, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidID
	}

	var result *Daily
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.daily.FindByID(txCtx, id)
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

// ListDaily は勤怠集計を勤務日の昇順で返します。
func (s *Service) ListDaily(ctx context.Context, in ListDailyInput) (*ListDailyResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	filter := ListDailyFilter{
		BadgeID: strings.TrimSpace(in.BadgeID),
		Limit:   limit,
		Offset:  offset,
	}
	switch {
	case in.WorkDate != nil:
		date := workday.NormalizeDate(*in.WorkDate)
		filter.From, filter.To = &date, &date
	case in.From != nil || in.To != nil:
		filter.From = normalizeDatePtr(in.From)
		filter.To = normalizeDatePtr(in.To)
	case filter.BadgeID != "":
		to := workday.NormalizeDate(s.clock.Now())
		from := to.AddDate(0, 0, -defaultBadgeWindowDays)
		filter.From, filter.To = &from, &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, ErrInvalidDateRange
	}

	var (
		records   []*Daily
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.daily.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListDailyResult{Records: records, NextPageToken: nextToken}, nil
}

// ListScanEvents は打刻記録を打刻時刻の昇順で返します。
func (s *Service) ListScanEvents(ctx context.Context, in ListScanEventsInput) (*ListScanEventsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, ErrInvalidDateRange
	}

	var (
		events    []*ScanEvent
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.events.List(txCtx, ListScanEventsFilter{
			BadgeID: strings.TrimSpace(in.BadgeID),
			From:    in.From,
			To:      in.To,
			Limit:   limit,
			Offset:  offset,
		})
		if err != nil {
			return err
		}
		events = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListScanEventsResult{Events: events, NextPageToken: nextToken}, nil
}

// UpdateDaily は勤怠集計を手動で修正します。
func (s *Service) UpdateDaily(ctx context.Context, in UpdateDailyInput) (*Daily, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, ErrInvalidID
	}

	var updated *Daily
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.daily.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		merged, err := in.Changes.apply(existing)
		if err != nil {
			return err
		}
		merged.UpdatedAt = s.clock.Now()

		result, err := s.daily.Update(txCtx, merged)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDaily は勤怠集計を削除します。打刻記録は残ります。
func (s *Service) DeleteDaily(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidID
	}
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.daily.Delete(txCtx, id)
	})
}

func (u DailyUpdate) apply(existing *Daily) (*Daily, error) {
	merged := *existing

	if u.FirstIn != nil {
		firstIn := *u.FirstIn
		merged.FirstIn = &firstIn
	}
	if u.LastOut != nil {
		lastOut := *u.LastOut
		merged.LastOut = &lastOut
	}
	if u.ArrivalStatus != nil {
		if !u.ArrivalStatus.Valid() {
			return nil, ErrInvalidArrivalStatus
		}
		merged.ArrivalStatus = *u.ArrivalStatus
	}
	if u.DepartureStatus != nil {
		if !u.DepartureStatus.Valid() {
			return nil, ErrInvalidDepartureStatus
		}
		merged.DepartureStatus = *u.DepartureStatus
	}
	if u.ExceptionFlags != nil {
		merged.ExceptionFlags = strings.TrimSpace(*u.ExceptionFlags)
	}

	return &merged, nil
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	date := workday.NormalizeDate(*t)
	return &date
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
