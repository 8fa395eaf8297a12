package application

import (
	"fmt"

	"github.com/retail-platform/order-fulfillment/internal/domain"
)

// CreateOrderCommand represents the command to create a new order from a
// cart snapshot
type CreateOrderCommand struct {
	CustomerID      string
	CustomerEmail   string
	Items           []OrderItemInput
	DeliveryAddress AddressInput
}

// OrderItemInput represents an order line item in a command
type OrderItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	Size      string
	Color     string
}

// AddressInput represents a delivery address in a command
type AddressInput struct {
	Street        string
	City          string
	State         string
	ZipCode       string
	Country       string
	RecipientName string
}

// PaymentMethodInput describes the payment instrument presented at checkout
type PaymentMethodInput struct {
	Kind       string
	CardHolder string
	CardNumber string
	// DailyLimit applies to debit cards; zero means the issuer default
	DailyLimit float64
	// CreditLimit applies to credit cards and must be positive
	CreditLimit float64
}

// PayOrderCommand represents the command to pay for an order in full
type PayOrderCommand struct {
	OrderID string
	Amount  float64
	Method  PaymentMethodInput
}

// PayWithInstallmentsCommand represents the command to pay for an order in
// monthly installments on a credit card
type PayWithInstallmentsCommand struct {
	OrderID string
	Months  int
	Method  PaymentMethodInput
}

// CancelOrderCommand represents the command to cancel an order
type CancelOrderCommand struct {
	OrderID string
	Reason  string
}

// AdvanceShipmentCommand represents the command to record a shipment
// tracking update
type AdvanceShipmentCommand struct {
	OrderID     string
	Status      string
	Description string
}

// MarkCashCollectedCommand represents the command to settle a
// cash-on-delivery payment
type MarkCashCollectedCommand struct {
	OrderID string
	AgentID string
}

// GetOrderQuery represents the query to get a single order
type GetOrderQuery struct {
	OrderID string
}

// TrackShipmentQuery represents the query to look an order up by its
// shipment tracking number
type TrackShipmentQuery struct {
	TrackingNumber string
}

// ListOrdersQuery represents the query to list orders with filters and
// pagination
type ListOrdersQuery struct {
	CustomerID *string
	Status     *string
	Page       int64
	PageSize   int64
}

// Helper methods to convert inputs to domain models

// ToDomainItems converts OrderItemInput slice to domain.OrderItem slice
func (c *CreateOrderCommand) ToDomainItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return items
}

// ToDomainAddress converts AddressInput to domain.Address
func (a *AddressInput) ToDomainAddress() domain.Address {
	return domain.Address{
		Street:        a.Street,
		City:          a.City,
		State:         a.State,
		ZipCode:       a.ZipCode,
		Country:       a.Country,
		RecipientName: a.RecipientName,
	}
}

// ToDomainMethod constructs the payment instrument described by the input
func (m *PaymentMethodInput) ToDomainMethod() (domain.PaymentMethod, error) {
	switch domain.MethodKind(m.Kind) {
	case domain.MethodCash:
		return domain.NewCashOnDelivery(), nil
	case domain.MethodDebitCard:
		return domain.NewDebitCard(m.CardHolder, m.CardNumber, m.DailyLimit), nil
	case domain.MethodCreditCard:
		if m.CreditLimit <= 0 {
			return nil, fmt.Errorf("credit limit must be positive, got %.2f", m.CreditLimit)
		}
		return domain.NewCreditCard(m.CardHolder, m.CardNumber, m.CreditLimit), nil
	default:
		return nil, fmt.Errorf("unknown payment method kind %q", m.Kind)
	}
}

// ToDomainPagination converts query pagination to domain Pagination
func (q *ListOrdersQuery) ToDomainPagination() domain.Pagination {
	p := domain.DefaultPagination()
	if q.Page > 0 {
		p.Page = q.Page
	}
	if q.PageSize > 0 {
		p.PageSize = q.PageSize
	}
	return p
}

// ToDomainFilter converts query filters to domain OrderFilter
func (q *ListOrdersQuery) ToDomainFilter() domain.OrderFilter {
	filter := domain.OrderFilter{}

	if q.CustomerID != nil {
		filter.CustomerID = q.CustomerID
	}

	if q.Status != nil {
		status := domain.OrderStatus(*q.Status)
		filter.Status = &status
	}

	return filter
}
