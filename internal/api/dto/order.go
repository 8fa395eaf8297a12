package dto

import (
	"github.com/retail-platform/order-fulfillment/internal/application"
)

// CreateOrderRequest represents the request to create an order
type CreateOrderRequest struct {
	CustomerID      string             `json:"customerId" binding:"required,customer_id" example:"CUST-1001"`
	CustomerEmail   string             `json:"customerEmail" binding:"required,email" example:"customer@example.com"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress AddressRequest     `json:"deliveryAddress" binding:"required"`
}

// OrderItemRequest represents an order line item in the request
type OrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required,product_id" example:"PRD-12345"`
	Quantity  int     `json:"quantity" binding:"required,min=1" example:"2"`
	UnitPrice float64 `json:"unitPrice" binding:"required,gt=0" example:"499.50"`
	Size      string  `json:"size,omitempty" binding:"omitempty,max=10" example:"M"`
	Color     string  `json:"color,omitempty" binding:"omitempty,max=30" example:"navy"`
}

// AddressRequest represents a delivery address in the request
type AddressRequest struct {
	Street        string `json:"street" binding:"required,max=200" example:"12 Baker Street"`
	City          string `json:"city" binding:"required,max=100" example:"Pune"`
	State         string `json:"state" binding:"required,max=100" example:"MH"`
	ZipCode       string `json:"zipCode" binding:"required,max=20" example:"411001"`
	Country       string `json:"country" binding:"required,len=2" example:"IN"`
	RecipientName string `json:"recipientName,omitempty" binding:"omitempty,max=100" example:"Asha Rao"`
}

// PaymentMethodRequest describes the payment instrument presented at
// checkout. Card fields are required for the card kinds only.
type PaymentMethodRequest struct {
	Kind        string  `json:"kind" binding:"required,payment_method" example:"CREDIT_CARD"`
	CardHolder  string  `json:"cardHolder,omitempty" binding:"required_unless=Kind CASH,omitempty,max=100" example:"Asha Rao"`
	CardNumber  string  `json:"cardNumber,omitempty" binding:"required_unless=Kind CASH,omitempty,numeric,min=12,max=19" example:"5555444433332222"`
	DailyLimit  float64 `json:"dailyLimit,omitempty" binding:"omitempty,gt=0" example:"50000"`
	CreditLimit float64 `json:"creditLimit,omitempty" binding:"omitempty,gt=0" example:"100000"`
}

// PayOrderRequest represents the request to pay for an order in full
type PayOrderRequest struct {
	Amount float64              `json:"amount" binding:"required,gt=0" example:"1180.00"`
	Method PaymentMethodRequest `json:"method" binding:"required"`
}

// PayInstallmentsRequest represents the request to pay for an order in
// monthly installments
type PayInstallmentsRequest struct {
	Months int                  `json:"months" binding:"required,min=1,max=60" example:"12"`
	Method PaymentMethodRequest `json:"method" binding:"required"`
}

// CancelOrderRequest represents the request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500" example:"Customer requested cancellation"`
}

// AdvanceShipmentRequest represents a shipment tracking update
type AdvanceShipmentRequest struct {
	Status      string `json:"status" binding:"required,shipment_status" example:"OUT_FOR_DELIVERY"`
	Description string `json:"description,omitempty" binding:"omitempty,max=500" example:"Courier picked up the parcel"`
}

// CashCollectionRequest represents a cash-on-delivery settlement
type CashCollectionRequest struct {
	AgentID string `json:"agentId" binding:"required,max=50" example:"AGT-42"`
}

// ToCommand converts the request to a CreateOrderCommand
func (r *CreateOrderRequest) ToCommand() application.CreateOrderCommand {
	items := make([]application.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, application.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	return application.CreateOrderCommand{
		CustomerID:    r.CustomerID,
		CustomerEmail: r.CustomerEmail,
		Items:         items,
		DeliveryAddress: application.AddressInput{
			Street:        r.DeliveryAddress.Street,
			City:          r.DeliveryAddress.City,
			State:         r.DeliveryAddress.State,
			ZipCode:       r.DeliveryAddress.ZipCode,
			Country:       r.DeliveryAddress.Country,
			RecipientName: r.DeliveryAddress.RecipientName,
		},
	}
}

// ToInput converts the request to a PaymentMethodInput
func (r *PaymentMethodRequest) ToInput() application.PaymentMethodInput {
	return application.PaymentMethodInput{
		Kind:        r.Kind,
		CardHolder:  r.CardHolder,
		CardNumber:  r.CardNumber,
		DailyLimit:  r.DailyLimit,
		CreditLimit: r.CreditLimit,
	}
}
