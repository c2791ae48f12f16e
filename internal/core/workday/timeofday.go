package workday

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ErrInvalidTimeOfDay は時刻文字列が不正な場合に返却されます。
var ErrInvalidTimeOfDay = errors.New("workday: invalid time of day")

// TimeOfDay は日付に依存しない時刻 (0 時からの経過秒) を表します。
type TimeOfDay int

// NewTimeOfDay は時・分・秒から TimeOfDay を生成します。
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// MustTimeOfDay は NewTimeOfDay のパニック版です。定数定義やテストで利用します。
func MustTimeOfDay(hour, minute, second int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay は "HH:MM" または "HH:MM:SS" 形式の文字列を解析します。
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(raw)
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", raw, ErrInvalidTimeOfDay)
}

// TimeOfDayOf は time.Time の壁時計時刻を取り出します (秒未満は切り捨て)。
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Valid は値が 1 日の範囲に収まっているかを返します。
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < secondsPerDay
}

// Hour は時を返します。
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

// Minute は分を返します。
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }

// Second は秒を返します。
func (t TimeOfDay) Second() int { return int(t) % 60 }

// AddMinutes は同日内で分を加算します。日付を跨ぐ場合は 23:59:59 で頭打ちになります。
func (t TimeOfDay) AddMinutes(minutes int) TimeOfDay {
	sum := int(t) + minutes*60
	switch {
	case sum >= secondsPerDay:
		return TimeOfDay(secondsPerDay - 1)
	case sum < 0:
		return 0
	default:
		return TimeOfDay(sum)
	}
}

// Before は t が other より前であれば true を返します。
func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

// After は t が other より後であれば true を返します。
func (t TimeOfDay) After(other TimeOfDay) bool { return t > other }

// Compare は t が other より前なら -1、同じなら 0、後なら +1 を返します。
func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch {
	case t < other:
		return -1
	case t > other:
		return 1
	default:
		return 0
	}
}

// On は指定日付の 0 時を基準に t を組み合わせた時刻を返します。
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}

// String は "HH:MM:SS" 形式で返します。
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
