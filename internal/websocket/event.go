package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeClient        EntityType = "client"
	EntityTypeDebt          EntityType = "debt"
	EntityTypeSale          EntityType = "sale"
	EntityTypePayment       EntityType = "payment"
	EntityTypeProduct       EntityType = "product"
	EntityTypeStockMovement EntityType = "stock_movement"
)

// Event is the change notification pushed to dashboard clients whenever a
// write commits, so read-side views can refresh instead of polling.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "debt.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "debt"
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

// ClientCreated creates a client.created event
func ClientCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeClient, payload)
}

// ClientUpdated creates a client.updated event
func ClientUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeClient, payload)
}

// ClientDeleted creates a client.deleted event
func ClientDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeClient, payload)
}

// DebtCreated creates a debt.created event
func DebtCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeDebt, payload)
}

// DebtUpdated creates a debt.updated event
func DebtUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeDebt, payload)
}

// DebtDeleted creates a debt.deleted event
func DebtDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeDebt, payload)
}

// SaleCreated creates a sale.created event
func SaleCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSale, payload)
}

// SaleDeleted creates a sale.deleted event
func SaleDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSale, payload)
}

// PaymentCreated creates a payment.created event
func PaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePayment, payload)
}

// PaymentDeleted creates a payment.deleted event
func PaymentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePayment, payload)
}

// ProductCreated creates a product.created event
func ProductCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeProduct, payload)
}

// ProductUpdated creates a product.updated event
func ProductUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeProduct, payload)
}

// ProductDeleted creates a product.deleted event
func ProductDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeProduct, payload)
}

// StockMovementCreated creates a stock_movement.created event
func StockMovementCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeStockMovement, payload)
}
