package application

import "time"

// OrderDTO represents an order in application layer responses
type OrderDTO struct {
	OrderID         string         `json:"orderId"`
	CustomerID      string         `json:"customerId"`
	CustomerEmail   string         `json:"customerEmail"`
	Items           []OrderItemDTO `json:"items"`
	DeliveryAddress AddressDTO     `json:"deliveryAddress"`
	Status          string         `json:"status"`
	TotalAmount     float64        `json:"totalAmount"`
	Payment         *PaymentDTO    `json:"payment,omitempty"`
	Invoice         *InvoiceDTO    `json:"invoice,omitempty"`
	Tracker         *TrackerDTO    `json:"tracker,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// OrderItemDTO represents an order line item in responses
type OrderItemDTO struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// AddressDTO represents a delivery address in responses
type AddressDTO struct {
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	Country       string `json:"country"`
	RecipientName string `json:"recipientName,omitempty"`
}

// PaymentDTO represents the payment record of an order
type PaymentDTO struct {
	PaymentID     string    `json:"paymentId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	MethodKind    string    `json:"methodKind"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ProcessedAt   time.Time `json:"processedAt,omitempty"`
}

// InvoiceDTO represents the invoice derived for a paid order
type InvoiceDTO struct {
	InvoiceID       string    `json:"invoiceId"`
	OrderID         string    `json:"orderId"`
	Amount          float64   `json:"amount"`
	Tax             float64   `json:"tax"`
	ShippingCharges float64   `json:"shippingCharges"`
	Discount        float64   `json:"discount"`
	FinalAmount     float64   `json:"finalAmount"`
	DocumentURL     string    `json:"documentUrl"`
	IssuedAt        time.Time `json:"issuedAt"`
}

// TrackerDTO represents the shipment tracker of an order
type TrackerDTO struct {
	TrackerID        string             `json:"trackerId"`
	TrackingNumber   string             `json:"trackingNumber"`
	Current          string             `json:"current"`
	History          []TrackingEventDTO `json:"history"`
	ExpectedDelivery time.Time          `json:"expectedDelivery"`
}

// TrackingEventDTO represents one entry of a shipment history
type TrackingEventDTO struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentResult represents the outcome of a payment attempt. A declined
// charge is a business outcome, carried here rather than as an error.
type PaymentResult struct {
	Order    OrderDTO `json:"order"`
	Charged  bool     `json:"charged"`
	Declined bool     `json:"declined"`
}

// CancelResult represents the outcome of a cancellation, including the
// best-effort refund of any successful payment
type CancelResult struct {
	Order        OrderDTO `json:"order"`
	Refunded     bool     `json:"refunded"`
	RefundFailed bool     `json:"refundFailed,omitempty"`
}

// OrderListDTO represents a simplified order for list operations
type OrderListDTO struct {
	OrderID     string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	TotalItems  int       `json:"totalItems"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PagedOrdersResult represents a paginated list of orders
type PagedOrdersResult struct {
	Data       []OrderListDTO `json:"data"`
	Page       int64          `json:"page"`
	PageSize   int64          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int64          `json:"totalPages"`
}
