package enums

import "fmt"

// LotStatus tracks a production lot through its sale lifecycle. Transitions
// only move forward: available -> reserved -> sold.
type LotStatus string

const (
	LotStatusAvailable LotStatus = "available"
	LotStatusReserved  LotStatus = "reserved"
	LotStatusSold      LotStatus = "sold"
)

var validLotStatuses = []LotStatus{
	LotStatusAvailable,
	LotStatusReserved,
	LotStatusSold,
}

// String implements fmt.Stringer.
func (s LotStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LotStatus.
func (s LotStatus) IsValid() bool {
	for _, candidate := range validLotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// step in the lifecycle.
func (s LotStatus) CanTransitionTo(next LotStatus) bool {
	switch s {
	case LotStatusAvailable:
		return next == LotStatusReserved || next == LotStatusSold
	case LotStatusReserved:
		return next == LotStatusSold
	}
	return false
}

// ParseLotStatus converts raw input into a LotStatus.
func ParseLotStatus(value string) (LotStatus, error) {
	for _, candidate := range validLotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot status %q", value)
}
