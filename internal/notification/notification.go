package notification

import (
	"context"
	"fmt"
)

// Type classifies customer notifications
type Type string

const (
	TypeOrderPlaced         Type = "ORDER_PLACED"
	TypePaymentConfirmation Type = "PAYMENT_CONFIRMATION"
	TypeShipmentUpdate      Type = "SHIPMENT_UPDATE"
	TypeDelivery            Type = "DELIVERY"
	TypeReturnInitiated     Type = "RETURN_INITIATED"
)

// IsValid checks if the type is a known notification type
func (t Type) IsValid() bool {
	switch t {
	case TypeOrderPlaced, TypePaymentConfirmation, TypeShipmentUpdate, TypeDelivery, TypeReturnInitiated:
		return true
	default:
		return false
	}
}

// Trigger is the outbound notification boundary. Notify reports delivery
// as a boolean: a failed notification is an operational event, never an
// error that can abort the business operation that triggered it.
type Trigger interface {
	Notify(ctx context.Context, recipient, subject, body string, kind Type) bool
}

// OrderStatusBody formats the standard order status message sent to
// customers on lifecycle changes
func OrderStatusBody(orderID, stateDescription string) string {
	return fmt.Sprintf("Your order %s is %s", orderID, stateDescription)
}
