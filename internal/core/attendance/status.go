package attendance

import "github.com/penguin789456/rfid-attendance-system/internal/core/workday"

// ArrivalStatus は出勤打刻の判定結果です。数値は永続化層の値と一致します。
type ArrivalStatus int

const (
	ArrivalNormal ArrivalStatus = iota
	ArrivalFlex
	ArrivalLate
)

// Valid は定義済みの値かを返します。
func (s ArrivalStatus) Valid() bool {
	return s >= ArrivalNormal && s <= ArrivalLate
}

func (s ArrivalStatus) String() string {
	switch s {
	case ArrivalNormal:
		return "NORMAL"
	case ArrivalFlex:
		return "FLEX"
	case ArrivalLate:
		return "LATE"
	default:
		return "UNKNOWN"
	}
}

// DepartureStatus は退勤打刻の判定結果です。退勤打刻が無い間は DepartureMissing です。
type DepartureStatus int

const (
	DepartureNormal DepartureStatus = iota
	DepartureEarly
	DepartureMissing
)

// Valid は定義済みの値かを返します。
func (s DepartureStatus) Valid() bool {
	return s >= DepartureNormal && s <= DepartureMissing
}

func (s DepartureStatus) String() string {
	switch s {
	case DepartureNormal:
		return "NORMAL"
	case DepartureEarly:
		return "EARLY"
	case DepartureMissing:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// ScanKind は打刻が集計に与えた影響の種類です。
type ScanKind string

const (
	ScanArrival   ScanKind = "arrival"
	ScanDeparture ScanKind = "departure"
)

// ClassifyArrival は出勤打刻を判定します。
// requiredIn 以前は NORMAL、requiredIn + flexMinutes 以前は FLEX、それ以降は LATE です。
// 猶予の終端は同日内で頭打ちになります。
func ClassifyArrival(scan, requiredIn workday.TimeOfDay, flexMinutes int) ArrivalStatus {
	if !scan.After(requiredIn) {
		return ArrivalNormal
	}
	if flexMinutes > 0 && !scan.After(requiredIn.AddMinutes(flexMinutes)) {
		return ArrivalFlex
	}
	return ArrivalLate
}

// ClassifyDeparture は退勤打刻を判定します。requiredOut 以降は NORMAL、それより前は EARLY です。
func ClassifyDeparture(scan, requiredOut workday.TimeOfDay) DepartureStatus {
	if scan.Before(requiredOut) {
		return DepartureEarly
	}
	return DepartureNormal
}
