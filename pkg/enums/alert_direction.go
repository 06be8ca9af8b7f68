package enums

import "fmt"

// AlertDirection records which way the market has to move for a price alert
// to fire. It is fixed at creation by comparing the target against the quote
// at that moment.
type AlertDirection string

const (
	AlertDirectionUp   AlertDirection = "up"
	AlertDirectionDown AlertDirection = "down"
)

var validAlertDirections = []AlertDirection{
	AlertDirectionUp,
	AlertDirectionDown,
}

// String implements fmt.Stringer.
func (d AlertDirection) String() string {
	return string(d)
}

// IsValid reports whether the value is a known AlertDirection.
func (d AlertDirection) IsValid() bool {
	for _, candidate := range validAlertDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseAlertDirection converts raw input into an AlertDirection.
func ParseAlertDirection(value string) (AlertDirection, error) {
	for _, candidate := range validAlertDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert direction %q", value)
}
