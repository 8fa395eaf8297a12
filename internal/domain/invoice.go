package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice charge rules
const (
	TaxRate               = 0.18  // GST
	FreeShippingThreshold = 500.0 // order total above which shipping is free
	FlatShippingFee       = 40.0
)

// Invoice is the charge breakdown for a paid order. All fields are derived
// from the order total at creation time and never recomputed afterward.
// The order is referenced by id only; the owning edge runs Order -> Invoice.
type Invoice struct {
	InvoiceID       string    `bson:"invoiceId" json:"invoiceId"`
	OrderID         string    `bson:"orderId" json:"orderId"`
	IssuedAt        time.Time `bson:"issuedAt" json:"issuedAt"`
	Amount          float64   `bson:"amount" json:"amount"`
	Tax             float64   `bson:"tax" json:"tax"`
	ShippingCharges float64   `bson:"shippingCharges" json:"shippingCharges"`
	Discount        float64   `bson:"discount" json:"discount"`
	FinalAmount     float64   `bson:"finalAmount" json:"finalAmount"`
	DocumentURL     string    `bson:"documentUrl" json:"documentUrl"`
}

// NewInvoice derives the invoice for an order total. It has no failure
// paths: the total has already been validated by the order aggregate.
func NewInvoice(orderID string, orderTotal float64) *Invoice {
	invoiceID := "INV-" + uuid.New().String()[:8]

	tax := orderTotal * TaxRate
	shipping := FlatShippingFee
	if orderTotal > FreeShippingThreshold {
		shipping = 0
	}
	discount := 0.0 // extension point, no discount rules yet

	return &Invoice{
		InvoiceID:       invoiceID,
		OrderID:         orderID,
		IssuedAt:        time.Now().UTC(),
		Amount:          orderTotal,
		Tax:             tax,
		ShippingCharges: shipping,
		Discount:        discount,
		FinalAmount:     orderTotal + tax + shipping - discount,
		DocumentURL:     "https://invoices.retail-platform.example/" + invoiceID + ".pdf",
	}
}
