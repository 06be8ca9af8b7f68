package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateLot         OutboxAggregateType = "lot"
	AggregateInterest    OutboxAggregateType = "interest"
	AggregateNegotiation OutboxAggregateType = "negotiation"
	AggregateAlert       OutboxAggregateType = "price_alert"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateLot,
	AggregateInterest,
	AggregateNegotiation,
	AggregateAlert,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventLotCreated        OutboxEventType = "lot_created"
	EventLotDeleted        OutboxEventType = "lot_deleted"
	EventInterestExpressed OutboxEventType = "interest_expressed"
	EventDealClosed        OutboxEventType = "deal_closed"
	EventAlertTriggered    OutboxEventType = "alert_triggered"
)

var validEventTypes = []OutboxEventType{
	EventLotCreated,
	EventLotDeleted,
	EventInterestExpressed,
	EventDealClosed,
	EventAlertTriggered,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
