package enums

import "fmt"

// NegotiationStatus is the per-session state machine: open -> negotiating ->
// closed. Open and negotiating both accept messages; closed is terminal.
type NegotiationStatus string

const (
	NegotiationStatusOpen        NegotiationStatus = "open"
	NegotiationStatusNegotiating NegotiationStatus = "negotiating"
	NegotiationStatusClosed      NegotiationStatus = "closed"
)

var validNegotiationStatuses = []NegotiationStatus{
	NegotiationStatusOpen,
	NegotiationStatusNegotiating,
	NegotiationStatusClosed,
}

// String implements fmt.Stringer.
func (s NegotiationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known NegotiationStatus.
func (s NegotiationStatus) IsValid() bool {
	for _, candidate := range validNegotiationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// AcceptsMessages reports whether new messages may be appended in this state.
func (s NegotiationStatus) AcceptsMessages() bool {
	return s == NegotiationStatusOpen || s == NegotiationStatusNegotiating
}

// ParseNegotiationStatus converts raw input into a NegotiationStatus.
func ParseNegotiationStatus(value string) (NegotiationStatus, error) {
	for _, candidate := range validNegotiationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid negotiation status %q", value)
}
