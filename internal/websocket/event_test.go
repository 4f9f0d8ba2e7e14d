package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"payer":  "Amy",
		"amount": "30.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeExpense, payload)
	after := time.Now()

	assert.Equal(t, "expense.created", evt.Type)
	assert.Equal(t, EntityTypeExpense, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_RoundTrip(t *testing.T) {
	fixedTime := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	evt := Event{
		Type:      "settlement.calculated",
		Entity:    EntityTypeSettlement,
		Payload:   map[string]interface{}{"transfers": []interface{}{}},
		Timestamp: fixedTime,
	}

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "settlement.calculated", decoded["type"])
	assert.Equal(t, "settlement", decoded["entity"])
	assert.Equal(t, "2026-03-15T10:30:00Z", decoded["timestamp"])
	assert.NotNil(t, decoded["payload"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": "abc"}

	tests := []struct {
		name     string
		evt      Event
		wantType string
		entity   EntityType
	}{
		{"GroupUpdated", GroupUpdated(payload), "group.updated", EntityTypeGroup},
		{"GroupMembersChanged", GroupMembersChanged(payload), "group.members_changed", EntityTypeGroup},
		{"GroupDeleted", GroupDeleted(payload), "group.deleted", EntityTypeGroup},
		{"ExpenseCreated", ExpenseCreated(payload), "expense.created", EntityTypeExpense},
		{"ExpenseDeleted", ExpenseDeleted(payload), "expense.deleted", EntityTypeExpense},
		{"SettlementCalculated", SettlementCalculated(payload), "settlement.calculated", EntityTypeSettlement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}
