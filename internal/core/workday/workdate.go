package workday

import "time"

// DateOf は t の暦日 (同じロケーションの 0 時) を返します。
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeDate は日付を UTC の 0 時に揃えます。永続化や比較の前に利用します。
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkDate は打刻時刻と日切り時刻から勤務日を求めます。
// 同日の日切り時刻より厳密に前の打刻は前日の勤務日に属します。
func WorkDate(event time.Time, cutoff TimeOfDay) time.Time {
	date := DateOf(event)
	if event.Before(cutoff.On(date)) {
		return NormalizeDate(date.AddDate(0, 0, -1))
	}
	return NormalizeDate(date)
}
