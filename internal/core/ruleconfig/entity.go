package ruleconfig

import (
	"time"

	"github.com/penguin789456/rfid-attendance-system/internal/core/workday"
)

// RequiredConfig は勤怠判定に用いる規則の不変スナップショットです。
// 作成後に変更できるのは、後継スナップショットの発行に伴う EffectiveTo の設定のみです。
type RequiredConfig struct {
	ID            string
	DepartmentID  string
	ScheduleID    string
	FlexSettingID string
	ActiveDay     workday.ActiveDay
	RequiredIn    workday.TimeOfDay
	RequiredOut   workday.TimeOfDay
	FlexMinutes   int
	DayCutoff     workday.TimeOfDay
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
}

// Covers は date がスナップショットの有効期間 (両端を含む) に含まれるかを返します。
func (c *RequiredConfig) Covers(date time.Time) bool {
	date = workday.NormalizeDate(date)
	if date.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || !c.EffectiveTo.Before(date)
}

// Open は有効期間の終端が未設定かを返します。
func (c *RequiredConfig) Open() bool {
	return c.EffectiveTo == nil
}

func (c *RequiredConfig) sameRules(other *RequiredConfig) bool {
	return c.ScheduleID == other.ScheduleID &&
		c.FlexSettingID == other.FlexSettingID &&
		c.RequiredIn == other.RequiredIn &&
		c.RequiredOut == other.RequiredOut &&
		c.FlexMinutes == other.FlexMinutes &&
		c.DayCutoff == other.DayCutoff
}
