package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-platform/order-fulfillment/internal/domain"
	"github.com/retail-platform/order-fulfillment/internal/infrastructure/memory"
	"github.com/retail-platform/order-fulfillment/internal/notification"
	"github.com/retail-platform/order-fulfillment/pkg/errors"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
)

type notifyCall struct {
	Recipient string
	Subject   string
	Body      string
	Kind      notification.Type
}

type fakeTrigger struct {
	calls  []notifyCall
	result bool
}

func (f *fakeTrigger) Notify(ctx context.Context, recipient, subject, body string, kind notification.Type) bool {
	f.calls = append(f.calls, notifyCall{Recipient: recipient, Subject: subject, Body: body, Kind: kind})
	return f.result
}

type fakeEventPublisher struct {
	events []domain.DomainEvent
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeEventPublisher) eventTypes() []string {
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.EventType())
	}
	return types
}

type serviceFixture struct {
	service   *OrderWorkflowService
	repo      *memory.OrderRepository
	trigger   *fakeTrigger
	publisher *fakeEventPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := memory.NewOrderRepository()
	trigger := &fakeTrigger{result: true}
	publisher := &fakeEventPublisher{}
	logger := logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})

	return &serviceFixture{
		service:   NewOrderWorkflowService(repo, publisher, trigger, logger, nil),
		repo:      repo,
		trigger:   trigger,
		publisher: publisher,
	}
}

func createCommand() CreateOrderCommand {
	return CreateOrderCommand{
		CustomerID:    "CUST-1001",
		CustomerEmail: "customer@example.com",
		Items: []OrderItemInput{
			{ProductID: "PRD-1", Quantity: 2, UnitPrice: 100.0},
		},
		DeliveryAddress: AddressInput{
			Street:  "12 Baker Street",
			City:    "Pune",
			State:   "MH",
			ZipCode: "411001",
			Country: "IN",
		},
	}
}

func debitMethod() PaymentMethodInput {
	return PaymentMethodInput{Kind: "DEBIT_CARD", CardHolder: "Asha Rao", CardNumber: "4111111111111111"}
}

func (f *serviceFixture) createOrder(t *testing.T) *OrderDTO {
	t.Helper()
	dto, err := f.service.Create(context.Background(), createCommand())
	require.NoError(t, err)
	return dto
}

func (f *serviceFixture) payOrder(t *testing.T, orderID string, method PaymentMethodInput) *PaymentResult {
	t.Helper()
	result, err := f.service.Pay(context.Background(), PayOrderCommand{OrderID: orderID, Amount: 200.0, Method: method})
	require.NoError(t, err)
	require.True(t, result.Charged)
	return result
}

func (f *serviceFixture) advance(t *testing.T, orderID string, statuses ...string) {
	t.Helper()
	for _, status := range statuses {
		_, err := f.service.AdvanceShipment(context.Background(), AdvanceShipmentCommand{OrderID: orderID, Status: status})
		require.NoError(t, err)
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateOrder(t *testing.T) {
	f := newServiceFixture(t)

	dto := f.createOrder(t)

	assert.Regexp(t, `^ORD-[0-9a-f]{8}$`, dto.OrderID)
	assert.Equal(t, string(domain.StatusPendingPayment), dto.Status)
	assert.Equal(t, 200.0, dto.TotalAmount)
	assert.Nil(t, dto.Payment)
	assert.Nil(t, dto.Invoice)
	assert.Nil(t, dto.Tracker)

	require.Len(t, f.trigger.calls, 1)
	call := f.trigger.calls[0]
	assert.Equal(t, "customer@example.com", call.Recipient)
	assert.Equal(t, notification.TypeOrderPlaced, call.Kind)
	assert.Equal(t, "Your order "+dto.OrderID+" is placed", call.Body)

	assert.Equal(t, []string{"retail.order.created"}, f.publisher.eventTypes())
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newServiceFixture(t)

	cmd := createCommand()
	cmd.Items = nil

	_, err := f.service.Create(context.Background(), cmd)
	assertAppErrorCode(t, err, errors.CodeValidationError)
	assert.Empty(t, f.trigger.calls)
}

func TestPayOrder(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	result := f.payOrder(t, order.OrderID, debitMethod())

	assert.Equal(t, string(domain.StatusPaid), result.Order.Status)
	require.NotNil(t, result.Order.Payment)
	assert.Equal(t, string(domain.PaymentSuccess), result.Order.Payment.Status)
	assert.NotEmpty(t, result.Order.Payment.TransactionID)
	require.NotNil(t, result.Order.Invoice)
	assert.Equal(t, 276.0, result.Order.Invoice.FinalAmount)
	require.NotNil(t, result.Order.Tracker)
	assert.Equal(t, string(domain.ShipmentOrderPlaced), result.Order.Tracker.Current)

	require.Len(t, f.trigger.calls, 2)
	assert.Equal(t, notification.TypePaymentConfirmation, f.trigger.calls[1].Kind)

	assert.Contains(t, f.publisher.eventTypes(), "retail.order.paid")
}

func TestPayOrderAmountMismatch(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	_, err := f.service.Pay(context.Background(), PayOrderCommand{
		OrderID: order.OrderID,
		Amount:  150.0,
		Method:  debitMethod(),
	})
	assertAppErrorCode(t, err, errors.CodeAmountMismatch)

	stored, repoErr := f.repo.FindByID(context.Background(), order.OrderID)
	require.NoError(t, repoErr)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)
	assert.Nil(t, stored.Payment)
}

func TestPayOrderDeclined(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	result, err := f.service.Pay(context.Background(), PayOrderCommand{
		OrderID: order.OrderID,
		Amount:  200.0,
		Method:  PaymentMethodInput{Kind: "CREDIT_CARD", CardHolder: "Asha Rao", CardNumber: "5555444433332222", CreditLimit: 100.0},
	})
	require.NoError(t, err, "a declined charge is a business outcome, not an error")

	assert.True(t, result.Declined)
	assert.False(t, result.Charged)
	assert.Equal(t, string(domain.StatusPaymentFailed), result.Order.Status)
	assert.Nil(t, result.Order.Invoice)
	assert.Nil(t, result.Order.Tracker)

	// No payment confirmation for a declined charge
	require.Len(t, f.trigger.calls, 1)
	assert.Contains(t, f.publisher.eventTypes(), "retail.order.payment_failed")
}

func TestPayOrderUnknownMethod(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	_, err := f.service.Pay(context.Background(), PayOrderCommand{
		OrderID: order.OrderID,
		Amount:  200.0,
		Method:  PaymentMethodInput{Kind: "BARTER"},
	})
	assertAppErrorCode(t, err, errors.CodeValidationError)
}

func TestPayOrderNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Pay(context.Background(), PayOrderCommand{
		OrderID: "ORD-missing1",
		Amount:  200.0,
		Method:  debitMethod(),
	})
	assertAppErrorCode(t, err, errors.CodeNotFound)
}

func TestPayWithInstallments(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	result, err := f.service.PayWithInstallments(context.Background(), PayWithInstallmentsCommand{
		OrderID: order.OrderID,
		Months:  6,
		Method:  PaymentMethodInput{Kind: "CREDIT_CARD", CardHolder: "Asha Rao", CardNumber: "5555444433332222", CreditLimit: 10000.0},
	})
	require.NoError(t, err)

	assert.True(t, result.Charged)
	assert.Equal(t, string(domain.StatusPaid), result.Order.Status)
	require.NotNil(t, result.Order.Payment)

	card := domain.NewCreditCard("Asha Rao", "5555444433332222", 10000.0)
	assert.InDelta(t, card.InstallmentAmount(200.0, 6), result.Order.Payment.Amount, 1e-9)
	assert.Less(t, result.Order.Payment.Amount, 200.0)
}

func TestPayWithInstallmentsRequiresCreditCard(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	_, err := f.service.PayWithInstallments(context.Background(), PayWithInstallmentsCommand{
		OrderID: order.OrderID,
		Months:  6,
		Method:  debitMethod(),
	})
	assertAppErrorCode(t, err, errors.CodeValidationError)
}

func TestCancelPendingOrder(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	result, err := f.service.Cancel(context.Background(), CancelOrderCommand{OrderID: order.OrderID, Reason: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), result.Order.Status)
	assert.False(t, result.Refunded)
	assert.False(t, result.RefundFailed)
	assert.Contains(t, f.publisher.eventTypes(), "retail.order.cancelled")
}

func TestCancelPaidOrderRefunds(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	result, err := f.service.Cancel(context.Background(), CancelOrderCommand{OrderID: order.OrderID, Reason: "out of stock"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), result.Order.Status)
	assert.True(t, result.Refunded)
	assert.Equal(t, string(domain.PaymentRefunded), result.Order.Payment.Status)
}

func TestCancelCashOrderRefundFails(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, PaymentMethodInput{Kind: "CASH"})

	result, err := f.service.Cancel(context.Background(), CancelOrderCommand{OrderID: order.OrderID, Reason: "address unreachable"})
	require.NoError(t, err, "a failed refund must not block cancellation")

	assert.Equal(t, string(domain.StatusCancelled), result.Order.Status)
	assert.False(t, result.Refunded)
	assert.True(t, result.RefundFailed)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())
	f.advance(t, order.OrderID, "PROCESSING", "SHIPPED")

	_, err := f.service.Cancel(context.Background(), CancelOrderCommand{OrderID: order.OrderID, Reason: "too late"})
	assertAppErrorCode(t, err, errors.CodeNotCancellable)
}

func TestAdvanceShipment(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	dto, err := f.service.AdvanceShipment(context.Background(), AdvanceShipmentCommand{OrderID: order.OrderID, Status: "PROCESSING"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusProcessing), dto.Status)
	assert.Equal(t, string(domain.ShipmentProcessing), dto.Tracker.Current)

	dto, err = f.service.AdvanceShipment(context.Background(), AdvanceShipmentCommand{OrderID: order.OrderID, Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusShipped), dto.Status)
	assert.Len(t, dto.Tracker.History, 3)

	last := f.trigger.calls[len(f.trigger.calls)-1]
	assert.Equal(t, notification.TypeShipmentUpdate, last.Kind)
	assert.Equal(t, "Your order "+order.OrderID+" is Order has been shipped", last.Body)
}

func TestAdvanceShipmentNotificationKinds(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())
	baseline := len(f.trigger.calls)

	f.advance(t, order.OrderID, "PROCESSING")
	assert.Len(t, f.trigger.calls, baseline, "PROCESSING is not a milestone")

	f.advance(t, order.OrderID, "SHIPPED", "IN_TRANSIT", "OUT_FOR_DELIVERY", "DELIVERED")

	kinds := make([]notification.Type, 0)
	for _, call := range f.trigger.calls[baseline:] {
		kinds = append(kinds, call.Kind)
	}
	assert.Equal(t, []notification.Type{
		notification.TypeShipmentUpdate,
		notification.TypeShipmentUpdate,
		notification.TypeDelivery,
	}, kinds, "IN_TRANSIT is quiet, milestones notify")
}

func TestAdvanceShipmentReturnedIsQuiet(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())
	f.advance(t, order.OrderID, "PROCESSING", "SHIPPED")
	baseline := len(f.trigger.calls)

	f.advance(t, order.OrderID, "RETURNED")

	assert.Len(t, f.trigger.calls, baseline, "RETURNED does not notify the customer")
}

func TestAdvanceShipmentIllegalTransition(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	// PAID cannot go straight to SHIPPED
	_, err := f.service.AdvanceShipment(context.Background(), AdvanceShipmentCommand{OrderID: order.OrderID, Status: "SHIPPED"})
	assertAppErrorCode(t, err, errors.CodeInvalidTransition)

	stored, repoErr := f.repo.FindByID(context.Background(), order.OrderID)
	require.NoError(t, repoErr)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	assert.Len(t, stored.Tracker.History, 1, "rejected update must not touch the history")
}

func TestAdvanceShipmentUnknownStatus(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	_, err := f.service.AdvanceShipment(context.Background(), AdvanceShipmentCommand{OrderID: order.OrderID, Status: "TELEPORTED"})
	assertAppErrorCode(t, err, errors.CodeValidationError)
}

func TestMarkCashCollected(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, PaymentMethodInput{Kind: "CASH"})
	f.advance(t, order.OrderID, "PROCESSING", "SHIPPED", "OUT_FOR_DELIVERY")

	dto, err := f.service.MarkCashCollected(context.Background(), MarkCashCollectedCommand{OrderID: order.OrderID, AgentID: "AGT-42"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PaymentSuccess), dto.Payment.Status)
	assert.NotEmpty(t, dto.Payment.TransactionID)
	assert.Contains(t, f.publisher.eventTypes(), "retail.order.cash_collected")
}

func TestMarkCashCollectedWrongMethod(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())
	f.advance(t, order.OrderID, "PROCESSING", "SHIPPED", "OUT_FOR_DELIVERY")

	_, err := f.service.MarkCashCollected(context.Background(), MarkCashCollectedCommand{OrderID: order.OrderID, AgentID: "AGT-42"})
	assertAppErrorCode(t, err, errors.CodeConflict)
}

func TestGetOrder(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)

	dto, err := f.service.Get(context.Background(), GetOrderQuery{OrderID: order.OrderID})
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, dto.OrderID)

	_, err = f.service.Get(context.Background(), GetOrderQuery{OrderID: "ORD-missing1"})
	assertAppErrorCode(t, err, errors.CodeNotFound)
}

func TestListOrdersByCustomer(t *testing.T) {
	f := newServiceFixture(t)
	first := f.createOrder(t)
	second := f.createOrder(t)

	customerID := "CUST-1001"
	result, err := f.service.List(context.Background(), ListOrdersQuery{CustomerID: &customerID})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalItems)
	assert.Equal(t, int64(1), result.TotalPages)
	require.Len(t, result.Data, 2)

	ids := []string{result.Data[0].OrderID, result.Data[1].OrderID}
	assert.ElementsMatch(t, []string{first.OrderID, second.OrderID}, ids)
}

func TestListOrdersByStatus(t *testing.T) {
	f := newServiceFixture(t)
	f.createOrder(t)
	paid := f.createOrder(t)
	f.payOrder(t, paid.OrderID, debitMethod())

	status := string(domain.StatusPaid)
	result, err := f.service.List(context.Background(), ListOrdersQuery{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.TotalItems)
	require.Len(t, result.Data, 1)
	assert.Equal(t, paid.OrderID, result.Data[0].OrderID)
}

func TestListOrdersUnfiltered(t *testing.T) {
	f := newServiceFixture(t)
	f.createOrder(t)
	f.createOrder(t)
	paid := f.createOrder(t)
	f.payOrder(t, paid.OrderID, debitMethod())

	result, err := f.service.List(context.Background(), ListOrdersQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.TotalItems)
	assert.Len(t, result.Data, 3, "unfiltered listing returns every order the total counts")
}

func TestTrackShipment(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	stored, repoErr := f.repo.FindByID(context.Background(), order.OrderID)
	require.NoError(t, repoErr)
	require.NotNil(t, stored.Tracker)

	dto, err := f.service.Track(context.Background(), TrackShipmentQuery{TrackingNumber: stored.Tracker.TrackingNumber})
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, dto.OrderID)

	_, err = f.service.Track(context.Background(), TrackShipmentQuery{TrackingNumber: "TRK-UNKNOWN1"})
	assertAppErrorCode(t, err, errors.CodeNotFound)
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	f := newServiceFixture(t)
	f.trigger.result = false

	dto, err := f.service.Create(context.Background(), createCommand())
	require.NoError(t, err)

	stored, repoErr := f.repo.FindByID(context.Background(), dto.OrderID)
	require.NoError(t, repoErr)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)
}
