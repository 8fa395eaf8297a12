package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseDomainEvent contains common event fields
type BaseDomainEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateId string    `json:"aggregateId"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() string   { return e.AggregateId }

func newBaseEvent(eventType, aggregateID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateId: aggregateID,
		Timestamp:   time.Now().UTC(),
	}
}

// OrderCreatedEvent is raised when a new order is created from a cart
// snapshot
type OrderCreatedEvent struct {
	BaseDomainEvent
	OrderID     string      `json:"orderId"`
	CustomerID  string      `json:"customerId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: newBaseEvent("retail.order.created", order.OrderID),
		OrderID:         order.OrderID,
		CustomerID:      order.CustomerID,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
	}
}

// OrderPaidEvent is raised when a charge succeeds and the order moves to
// PAID
type OrderPaidEvent struct {
	BaseDomainEvent
	OrderID       string     `json:"orderId"`
	CustomerID    string     `json:"customerId"`
	PaymentID     string     `json:"paymentId"`
	TransactionID string     `json:"transactionId"`
	MethodKind    MethodKind `json:"methodKind"`
	Amount        float64    `json:"amount"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(order *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: newBaseEvent("retail.order.paid", order.OrderID),
		OrderID:         order.OrderID,
		CustomerID:      order.CustomerID,
		PaymentID:       order.Payment.PaymentID,
		TransactionID:   order.Payment.TransactionID,
		MethodKind:      order.Payment.MethodKind,
		Amount:          order.Payment.Amount,
	}
}

// PaymentFailedEvent is raised when a charge is declined
type PaymentFailedEvent struct {
	BaseDomainEvent
	OrderID    string     `json:"orderId"`
	CustomerID string     `json:"customerId"`
	MethodKind MethodKind `json:"methodKind"`
	Amount     float64    `json:"amount"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(order *Order) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: newBaseEvent("retail.order.payment_failed", order.OrderID),
		OrderID:         order.OrderID,
		CustomerID:      order.CustomerID,
		MethodKind:      order.Payment.MethodKind,
		Amount:          order.Payment.Amount,
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	BaseDomainEvent
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Reason     string `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: newBaseEvent("retail.order.cancelled", order.OrderID),
		OrderID:         order.OrderID,
		CustomerID:      order.CustomerID,
		Reason:          reason,
	}
}

// ShipmentAdvancedEvent is raised on every shipment status change
type ShipmentAdvancedEvent struct {
	BaseDomainEvent
	OrderID        string         `json:"orderId"`
	TrackingNumber string         `json:"trackingNumber"`
	Status         ShipmentStatus `json:"status"`
}

// NewShipmentAdvancedEvent creates a new ShipmentAdvancedEvent
func NewShipmentAdvancedEvent(order *Order, status ShipmentStatus) *ShipmentAdvancedEvent {
	return &ShipmentAdvancedEvent{
		BaseDomainEvent: newBaseEvent("retail.order.shipment_advanced", order.OrderID),
		OrderID:         order.OrderID,
		TrackingNumber:  order.Tracker.TrackingNumber,
		Status:          status,
	}
}

// CashCollectedEvent is raised when a COD payment is settled by a
// collection agent
type CashCollectedEvent struct {
	BaseDomainEvent
	OrderID string `json:"orderId"`
	AgentID string `json:"agentId"`
}

// NewCashCollectedEvent creates a new CashCollectedEvent
func NewCashCollectedEvent(order *Order, agentID string) *CashCollectedEvent {
	return &CashCollectedEvent{
		BaseDomainEvent: newBaseEvent("retail.order.cash_collected", order.OrderID),
		OrderID:         order.OrderID,
		AgentID:         agentID,
	}
}
