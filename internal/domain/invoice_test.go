package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	tests := []struct {
		name           string
		orderTotal     float64
		expectTax      float64
		expectShipping float64
		expectFinal    float64
	}{
		{
			name:           "small order pays flat shipping",
			orderTotal:     200,
			expectTax:      36,
			expectShipping: 40,
			expectFinal:    276,
		},
		{
			name:           "large order ships free",
			orderTotal:     1000,
			expectTax:      180,
			expectShipping: 0,
			expectFinal:    1180,
		},
		{
			name:           "threshold total still pays shipping",
			orderTotal:     500,
			expectTax:      90,
			expectShipping: 40,
			expectFinal:    630,
		},
		{
			name:           "just over threshold ships free",
			orderTotal:     500.01,
			expectTax:      90.0018,
			expectShipping: 0,
			expectFinal:    590.0118,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := NewInvoice("ORD-001", tt.orderTotal)

			require.NotNil(t, invoice)
			assert.Equal(t, "ORD-001", invoice.OrderID)
			assert.InDelta(t, tt.orderTotal, invoice.Amount, 1e-9)
			assert.InDelta(t, tt.expectTax, invoice.Tax, 1e-6)
			assert.InDelta(t, tt.expectShipping, invoice.ShippingCharges, 1e-9)
			assert.InDelta(t, 0, invoice.Discount, 1e-9)
			assert.InDelta(t, tt.expectFinal, invoice.FinalAmount, 1e-6)
		})
	}
}

func TestNewInvoiceIdentity(t *testing.T) {
	invoice := NewInvoice("ORD-001", 200)

	assert.Regexp(t, `^INV-[0-9a-f]{8}$`, invoice.InvoiceID)
	assert.Equal(t, "https://invoices.retail-platform.example/"+invoice.InvoiceID+".pdf", invoice.DocumentURL)
	assert.NotZero(t, invoice.IssuedAt)
}
