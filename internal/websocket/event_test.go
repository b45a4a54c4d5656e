package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_CombinedType(t *testing.T) {
	event := NewEvent(EventTypeCreated, EntityTypeDebt, map[string]interface{}{"id": 1})

	assert.Equal(t, "debt.created", event.Type)
	assert.Equal(t, EntityTypeDebt, event.Entity)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_ToJSON(t *testing.T) {
	event := SaleCreated(map[string]interface{}{"id": 42, "totalAmount": "300.00"})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "sale.created", decoded["type"])
	assert.Equal(t, "sale", decoded["entity"])

	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), payload["id"])
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		event    Event
		wantType string
	}{
		{ClientCreated(nil), "client.created"},
		{ClientUpdated(nil), "client.updated"},
		{DebtCreated(nil), "debt.created"},
		{DebtUpdated(nil), "debt.updated"},
		{DebtDeleted(nil), "debt.deleted"},
		{SaleCreated(nil), "sale.created"},
		{SaleDeleted(nil), "sale.deleted"},
		{PaymentCreated(nil), "payment.created"},
		{PaymentDeleted(nil), "payment.deleted"},
		{ProductCreated(nil), "product.created"},
		{ProductUpdated(nil), "product.updated"},
		{StockMovementCreated(nil), "stock_movement.created"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantType, tt.event.Type)
	}
}
