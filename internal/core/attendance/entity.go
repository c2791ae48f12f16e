package attendance

import (
	"strings"
	"time"
)

// FlagNoRequiredConfig は初回打刻時に規則スナップショットを解決できなかったことを示します。
const FlagNoRequiredConfig = "NO_REQUIRED_CONFIG"

// Daily は従業員・勤務日ごとの勤怠集計です。(BadgeID, WorkDate) で一意です。
// RequiredConfigID は作成時に固定され、以降置き換えられません。空文字は参照なしを表します。
type Daily struct {
	ID               string
	BadgeID          string
	WorkDate         time.Time
	RequiredConfigID string
	FirstIn          *time.Time
	LastOut          *time.Time
	ArrivalStatus    ArrivalStatus
	DepartureStatus  DepartureStatus
	ExceptionFlags   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasFlag は例外フラグに flag が含まれるかを返します。
func (d *Daily) HasFlag(flag string) bool {
	for _, f := range strings.Split(d.ExceptionFlags, ",") {
		if strings.TrimSpace(f) == flag {
			return true
		}
	}
	return false
}

func (d *Daily) addFlag(flag string) {
	if d.HasFlag(flag) {
		return
	}
	if d.ExceptionFlags == "" {
		d.ExceptionFlags = flag
		return
	}
	d.ExceptionFlags += "," + flag
}

// ScanEvent は打刻の生記録です。追記のみで更新・削除されません。
type ScanEvent struct {
	ID        string
	BadgeID   string
	DeviceID  string
	EventTime time.Time
	CreatedAt time.Time
}
