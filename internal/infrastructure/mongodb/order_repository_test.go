package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/retail-platform/order-fulfillment/internal/domain"
)

func newPaidOrder(t *testing.T, method domain.PaymentMethod) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(
		"ORD-bson0001",
		"CUST-1001",
		"customer@example.com",
		[]domain.OrderItem{{ProductID: "PRD-1", Quantity: 2, UnitPrice: 100.0}},
		domain.Address{Street: "12 Baker Street", City: "Pune", Country: "IN"},
	)
	require.NoError(t, err)
	require.NoError(t, order.ProcessPayment(domain.NewPayment(order.TotalAmount, method)))
	return order
}

// reload runs the order through the same BSON codec the driver uses, so the
// result carries exactly what a FindOne decode would.
func reload(t *testing.T, order *domain.Order) *domain.Order {
	t.Helper()

	raw, err := bson.Marshal(order)
	require.NoError(t, err)

	var decoded domain.Order
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	return &decoded
}

func TestOrderDocumentRoundTrip(t *testing.T) {
	order := newPaidOrder(t, domain.NewDebitCard("Asha Rao", "4111111111111111", 0))

	reloaded := reload(t, order)

	assert.Equal(t, order.OrderID, reloaded.OrderID)
	assert.Equal(t, domain.StatusPaid, reloaded.Status)
	require.NotNil(t, reloaded.Payment)
	assert.Equal(t, domain.PaymentSuccess, reloaded.Payment.Status)
	assert.Equal(t, domain.MethodDebitCard, reloaded.Payment.MethodKind)
	assert.Equal(t, order.Payment.TransactionID, reloaded.Payment.TransactionID)
	require.NotNil(t, reloaded.Invoice)
	assert.Equal(t, order.Invoice.FinalAmount, reloaded.Invoice.FinalAmount)
	require.NotNil(t, reloaded.Tracker)
	assert.Equal(t, order.Tracker.TrackingNumber, reloaded.Tracker.TrackingNumber)
	assert.Len(t, reloaded.Tracker.History, len(order.Tracker.History))
}

func TestReloadedCardPaymentRefund(t *testing.T) {
	order := newPaidOrder(t, domain.NewDebitCard("Asha Rao", "4111111111111111", 0))

	reloaded := reload(t, order)
	require.NoError(t, reloaded.Cancel("changed my mind"))
	require.NoError(t, reloaded.Payment.Refund())

	assert.Equal(t, domain.StatusCancelled, reloaded.Status)
	assert.Equal(t, domain.PaymentRefunded, reloaded.Payment.Status)
}

func TestReloadedCashPaymentRefundUnavailable(t *testing.T) {
	order := newPaidOrder(t, domain.NewCashOnDelivery())

	reloaded := reload(t, order)
	require.NoError(t, reloaded.Cancel("changed my mind"))

	err := reloaded.Payment.Refund()
	assert.ErrorIs(t, err, domain.ErrRefundUnavailable)
	assert.Equal(t, domain.PaymentSuccess, reloaded.Payment.Status)
}

func TestReloadedCashCollection(t *testing.T) {
	order := newPaidOrder(t, domain.NewCashOnDelivery())
	require.NoError(t, order.AdvanceShipment(domain.ShipmentProcessing, ""))
	require.NoError(t, order.AdvanceShipment(domain.ShipmentShipped, ""))
	require.NoError(t, order.AdvanceShipment(domain.ShipmentOutForDelivery, ""))

	reloaded := reload(t, order)
	require.NoError(t, reloaded.MarkCashCollected("AGT-7"))

	assert.Equal(t, domain.PaymentSuccess, reloaded.Payment.Status)
	assert.Equal(t, "AGT-7", reloaded.Payment.CollectedBy)
	assert.NotEmpty(t, reloaded.Payment.TransactionID)
}

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(domain.OrderFilter{}))

	customerID := "CUST-1001"
	status := domain.StatusPaid
	filter := buildFilter(domain.OrderFilter{CustomerID: &customerID, Status: &status})
	assert.Equal(t, bson.M{"customerId": "CUST-1001", "status": status}, filter)
}
