package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errors for the Order aggregate
var (
	ErrEmptyCart          = errors.New("order must contain at least one item")
	ErrAmountMismatch     = errors.New("payment amount does not match order total")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
	ErrChargeDeclined     = errors.New("payment method declined the charge")
	ErrRefundUnavailable  = errors.New("payment cannot be refunded")
	ErrNoShipment         = errors.New("order has no shipment tracker")
	ErrNotCashPayment     = errors.New("order was not paid with cash on delivery")
	ErrCashNotCollectable = errors.New("cash can only be collected once the shipment is out for delivery")
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusReturned       OrderStatus = "RETURNED"
	StatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
)

// orderTransitions is the complete transition graph for OrderStatus.
// Statuses absent from the map are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusPaid, StatusPaymentFailed, StatusCancelled},
	StatusPaid:           {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered, StatusReturned},
}

// IsValid checks if the status is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transition is allowed from the status
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition graph permits s -> next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a line item frozen at order time. UnitPrice is the catalog
// price captured when the order was created; later catalog changes must not
// affect it.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
}

// Subtotal returns the line total at the frozen unit price
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Address represents a delivery address
type Address struct {
	Street        string `bson:"street" json:"street"`
	City          string `bson:"city" json:"city"`
	State         string `bson:"state" json:"state"`
	ZipCode       string `bson:"zipCode" json:"zipCode"`
	Country       string `bson:"country" json:"country"`
	RecipientName string `bson:"recipientName,omitempty" json:"recipientName,omitempty"`
}

// Order is the aggregate root for the order fulfillment bounded context.
// It owns its Payment, Invoice and ShipmentTracker; the customer is
// referenced by id only.
type Order struct {
	OrderID         string           `bson:"orderId" json:"orderId"`
	CustomerID      string           `bson:"customerId" json:"customerId"`
	CustomerEmail   string           `bson:"customerEmail" json:"customerEmail"`
	Items           []OrderItem      `bson:"items" json:"items"`
	DeliveryAddress Address          `bson:"deliveryAddress" json:"deliveryAddress"`
	Status          OrderStatus      `bson:"status" json:"status"`
	TotalAmount     float64          `bson:"totalAmount" json:"totalAmount"`
	Payment         *Payment         `bson:"payment,omitempty" json:"payment,omitempty"`
	Invoice         *Invoice         `bson:"invoice,omitempty" json:"invoice,omitempty"`
	Tracker         *ShipmentTracker `bson:"tracker,omitempty" json:"tracker,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt"`

	// Domain events - transient, not persisted
	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewOrder creates a new Order aggregate from a cart snapshot.
// The item slice is copied and the total is computed exactly once; both are
// immutable for the life of the order.
func NewOrder(
	orderID string,
	customerID string,
	customerEmail string,
	items []OrderItem,
	deliveryAddress Address,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]OrderItem, len(items))
	copy(snapshot, items)

	total := 0.0
	for _, item := range snapshot {
		total += item.Subtotal()
	}

	now := time.Now().UTC()
	order := &Order{
		OrderID:         orderID,
		CustomerID:      customerID,
		CustomerEmail:   customerEmail,
		Items:           snapshot,
		DeliveryAddress: deliveryAddress,
		Status:          StatusPendingPayment,
		TotalAmount:     total,
		CreatedAt:       now,
		UpdatedAt:       now,
		domainEvents:    make([]DomainEvent, 0),
	}

	order.addDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// transition moves the order to the next status if the transition graph
// permits it
func (o *Order) transition(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ProcessPayment attempts to charge the order total through the given
// payment. The charge is evaluated exactly once. On success the order moves
// to PAID and the invoice and shipment tracker are constructed; on decline
// the order moves to PAYMENT_FAILED and ErrChargeDeclined is returned.
// Amount mismatch and invalid status leave the order untouched.
func (o *Order) ProcessPayment(payment *Payment) error {
	if o.Status != StatusPendingPayment {
		return fmt.Errorf("%w: payment attempted in status %s", ErrInvalidTransition, o.Status)
	}
	if payment.Amount != o.TotalAmount {
		return ErrAmountMismatch
	}

	return o.settle(payment)
}

// ProcessInstallmentPayment charges a credit card in EMI mode: the charged
// amount is the monthly installment for the order total, not the full total.
// This deliberately bypasses the amount == total check of ProcessPayment.
func (o *Order) ProcessInstallmentPayment(card *CreditCard, months int) error {
	if o.Status != StatusPendingPayment {
		return fmt.Errorf("%w: payment attempted in status %s", ErrInvalidTransition, o.Status)
	}
	if months <= 0 {
		return fmt.Errorf("installment months must be positive, got %d", months)
	}

	installment := card.InstallmentAmount(o.TotalAmount, months)
	return o.settle(NewPayment(installment, card))
}

// settle executes the charge and applies the outcome to the aggregate
func (o *Order) settle(payment *Payment) error {
	o.Payment = payment

	if !payment.execute() {
		if err := o.transition(StatusPaymentFailed); err != nil {
			return err
		}
		o.addDomainEvent(NewPaymentFailedEvent(o))
		return ErrChargeDeclined
	}

	if err := o.transition(StatusPaid); err != nil {
		return err
	}

	// Invoice and tracker are pure functions of already-validated data;
	// constructing them cannot fail.
	o.Invoice = NewInvoice(o.OrderID, o.TotalAmount)
	o.Tracker = NewShipmentTracker(o.OrderID)

	o.addDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// CanBeCancelled reports whether the order is in a cancellable status
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case StatusPendingPayment, StatusPaid, StatusProcessing:
		return true
	default:
		return false
	}
}

// Cancel cancels the order. Refunding any successful payment is the
// caller's responsibility; cancellation succeeds regardless of refund
// settlement.
func (o *Order) Cancel(reason string) error {
	if !o.CanBeCancelled() {
		return fmt.Errorf("%w: status is %s", ErrNotCancellable, o.Status)
	}

	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	o.addDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// statusForShipment maps shipment states onto the order status graph.
// States without an order-level counterpart (IN_TRANSIT, OUT_FOR_DELIVERY,
// DELIVERY_FAILED) advance the tracker only.
func statusForShipment(state ShipmentStatus) (OrderStatus, bool) {
	switch state {
	case ShipmentProcessing:
		return StatusProcessing, true
	case ShipmentShipped:
		return StatusShipped, true
	case ShipmentDelivered:
		return StatusDelivered, true
	case ShipmentReturned:
		return StatusReturned, true
	default:
		return "", false
	}
}

// AdvanceShipment appends a tracking event and keeps the order status in
// sync for shipment states that have an order-level counterpart. The
// tracker itself accepts any state; legality is enforced here, before any
// mutation.
func (o *Order) AdvanceShipment(state ShipmentStatus, description string) error {
	if o.Tracker == nil {
		return ErrNoShipment
	}

	if next, mapped := statusForShipment(state); mapped {
		if err := o.transition(next); err != nil {
			return err
		}
	}

	o.Tracker.Advance(state, description)
	o.addDomainEvent(NewShipmentAdvancedEvent(o, state))

	return nil
}

// MarkCashCollected records cash-on-delivery settlement by the given
// collection agent. Only valid once the shipment is out for delivery or
// delivered.
func (o *Order) MarkCashCollected(agentID string) error {
	if o.Payment == nil || o.Payment.MethodKind != MethodCash {
		return ErrNotCashPayment
	}
	if o.Tracker == nil {
		return ErrNoShipment
	}

	switch o.Tracker.Current {
	case ShipmentOutForDelivery, ShipmentDelivered:
	default:
		return fmt.Errorf("%w: shipment is %s", ErrCashNotCollectable, o.Tracker.Current)
	}

	// The live instrument is absent on a reloaded order; the persisted
	// MethodKind already guarantees this is a cash payment.
	if cash, ok := o.Payment.Method().(*CashOnDelivery); ok {
		cash.MarkCollected(agentID)
	}
	o.Payment.confirmCollection(agentID)
	o.UpdatedAt = time.Now().UTC()
	o.addDomainEvent(NewCashCollectedEvent(o, agentID))

	return nil
}

// addDomainEvent adds a domain event to the order
func (o *Order) addDomainEvent(event DomainEvent) {
	o.domainEvents = append(o.domainEvents, event)
}

// DomainEvents returns all pending domain events
func (o *Order) DomainEvents() []DomainEvent {
	return o.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (o *Order) ClearDomainEvents() {
	o.domainEvents = make([]DomainEvent, 0)
}
