package employee

import "time"

// Status は従業員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は従業員エンティティです。RFID カードのバッジ ID を自然キーとします。
type Employee struct {
	BadgeID      string
	EmployeeCode string
	Name         string
	DepartmentID string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active は打刻を受け付けられる状態かを返します。
func (e *Employee) Active() bool {
	return e != nil && e.Status == StatusActive
}
