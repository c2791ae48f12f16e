package department

import "time"

// Department は部門エンティティです。班表・弾性設定・規則スナップショットを所有します。
type Department struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
