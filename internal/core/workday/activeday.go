package workday

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidActiveDay は曜日コードが不正な場合に返却されます。
var ErrInvalidActiveDay = errors.New("workday: invalid active day")

// ActiveDay は班表・規則の適用曜日コードです。
// 1 (月) から 7 (日) は特定曜日、EveryDay は他で上書きされない全曜日を表します。
type ActiveDay int

const (
	Monday ActiveDay = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
	// EveryDay は永続化層での値 8 に対応します。
	EveryDay
)

// ActiveDayOf は time.Weekday を ISO 形式の曜日コードへ変換します。
func ActiveDayOf(w time.Weekday) ActiveDay {
	if w == time.Sunday {
		return Sunday
	}
	return ActiveDay(w)
}

// Valid は曜日コードが定義済みの範囲に収まるかを返します。
func (d ActiveDay) Valid() bool {
	return d >= Monday && d <= EveryDay
}

// Specific は特定曜日のコードであれば true を返します。
func (d ActiveDay) Specific() bool {
	return d >= Monday && d <= Sunday
}

// LookupOrder は指定曜日に対する検索順を返します。特定曜日を全曜日より優先します。
func LookupOrder(w time.Weekday) []ActiveDay {
	return []ActiveDay{ActiveDayOf(w), EveryDay}
}

// AllActiveDays は定義済みの曜日コードをすべて返します。
func AllActiveDays() []ActiveDay {
	return []ActiveDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday, EveryDay}
}

func (d ActiveDay) String() string {
	switch d {
	case Monday:
		return "MON"
	case Tuesday:
		return "TUE"
	case Wednesday:
		return "WED"
	case Thursday:
		return "THU"
	case Friday:
		return "FRI"
	case Saturday:
		return "SAT"
	case Sunday:
		return "SUN"
	case EveryDay:
		return "ALL"
	default:
		return "INVALID"
	}
}

// ParseActiveDay は "MON".."SUN"、"ALL" もしくは 1..8 の数値表記を曜日コードへ変換します。
func ParseActiveDay(raw string) (ActiveDay, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		if d := ActiveDay(n); d.Valid() {
			return d, nil
		}
		return 0, ErrInvalidActiveDay
	}
	for _, d := range AllActiveDays() {
		if d.String() == raw {
			return d, nil
		}
	}
	return 0, ErrInvalidActiveDay
}
