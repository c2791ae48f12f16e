// Package memory はプロセス内メモリ上のリポジトリ実装です。
// database.driver が memory の場合やテストで利用します。
package memory

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
)

// Store はすべてのエンティティを保持します。各リポジトリは Store を共有し、同じロックで保護されます。
type Store struct {
	mu sync.RWMutex

	departments  table[*department.Department]
	employees    table[*employee.Employee]
	schedules    table[*schedule.Schedule]
	flexSettings table[*schedule.FlexSetting]
	configs      table[*ruleconfig.RequiredConfig]
	daily        table[*attendance.Daily]
	events       table[*attendance.ScanEvent]

	newID func() string
}

// NewStore は空の Store を生成します。
func NewStore() *Store {
	return &Store{
		departments:  newTable[*department.Department](),
		employees:    newTable[*employee.Employee](),
		schedules:    newTable[*schedule.Schedule](),
		flexSettings: newTable[*schedule.FlexSetting](),
		configs:      newTable[*ruleconfig.RequiredConfig](),
		daily:        newTable[*attendance.Daily](),
		events:       newTable[*attendance.ScanEvent](),
		newID:        uuid.NewString,
	}
}

// Departments は部門リポジトリを返します。
func (s *Store) Departments() *DepartmentRepository { return &DepartmentRepository{store: s} }

// Employees は従業員リポジトリを返します。
func (s *Store) Employees() *EmployeeRepository { return &EmployeeRepository{store: s} }

// Schedules は班表リポジトリを返します。
func (s *Store) Schedules() *ScheduleRepository { return &ScheduleRepository{store: s} }

// FlexSettings は弾性設定リポジトリを返します。
func (s *Store) FlexSettings() *FlexSettingRepository { return &FlexSettingRepository{store: s} }

// RequiredConfigs は規則スナップショットリポジトリを返します。
func (s *Store) RequiredConfigs() *RequiredConfigRepository {
	return &RequiredConfigRepository{store: s}
}

// AttendanceDaily は勤怠集計リポジトリを返します。
func (s *Store) AttendanceDaily() *AttendanceDailyRepository {
	return &AttendanceDailyRepository{store: s}
}

// ScanEvents は打刻記録リポジトリを返します。
func (s *Store) ScanEvents() *ScanEventRepository { return &ScanEventRepository{store: s} }

// table は挿入順を保持するキー付きコレクションです。
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[string]T)}
}

func (t *table[T]) put(key string, row T) {
	if _, ok := t.rows[key]; !ok {
		t.order = append(t.order, key)
	}
	t.rows[key] = row
}

func (t *table[T]) get(key string) (T, bool) {
	row, ok := t.rows[key]
	return row, ok
}

func (t *table[T]) remove(key string) bool {
	if _, ok := t.rows[key]; !ok {
		return false
	}
	delete(t.rows, key)
	for idx, k := range t.order {
		if k == key {
			t.order = append(t.order[:idx], t.order[idx+1:]...)
			break
		}
	}
	return true
}

// each は挿入順に行を走査します。fn が false を返すと走査を終了します。
func (t *table[T]) each(fn func(T) bool) {
	for _, key := range t.order {
		if !fn(t.rows[key]) {
			return
		}
	}
}

// paginate はオフセット方式でページを切り出し、次ページのトークンを返します。
func paginate[T any](items []T, limit, offset int) ([]T, string) {
	if offset >= len(items) {
		return []T{}, ""
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	next := ""
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return items[offset:end], next
}
