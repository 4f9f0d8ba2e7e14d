package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated        EventType = "created"
	EventTypeUpdated        EventType = "updated"
	EventTypeDeleted        EventType = "deleted"
	EventTypeMembersChanged EventType = "members_changed"
	EventTypeCalculated     EventType = "calculated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeGroup      EntityType = "group"
	EntityTypeExpense    EntityType = "expense"
	EntityTypeSettlement EntityType = "settlement"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "expense.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "expense"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GroupUpdated creates a group.updated event
func GroupUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeGroup, payload)
}

// GroupMembersChanged creates a group.members_changed event
func GroupMembersChanged(payload interface{}) Event {
	return NewEvent(EventTypeMembersChanged, EntityTypeGroup, payload)
}

// GroupDeleted creates a group.deleted event
func GroupDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeGroup, payload)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// SettlementCalculated creates a settlement.calculated event
func SettlementCalculated(payload interface{}) Event {
	return NewEvent(EventTypeCalculated, EntityTypeSettlement, payload)
}
