package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/retail-platform/order-fulfillment/internal/domain"
	"github.com/retail-platform/order-fulfillment/internal/notification"
	"github.com/retail-platform/order-fulfillment/pkg/errors"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/retail-platform/order-fulfillment/pkg/metrics"
)

// OrderWorkflowService handles order fulfillment use cases. Operations on
// one order are serialized through a keyed lock; operations on different
// orders run in parallel.
type OrderWorkflowService struct {
	orderRepo domain.OrderRepository
	publisher domain.EventPublisher
	notifier  notification.Trigger
	logger    *logging.Logger
	metrics   *metrics.Metrics
	locks     *orderLocks
}

// NewOrderWorkflowService creates a new OrderWorkflowService. The publisher,
// notifier and metrics are optional; a nil value disables that side effect.
func NewOrderWorkflowService(
	orderRepo domain.OrderRepository,
	publisher domain.EventPublisher,
	notifier notification.Trigger,
	logger *logging.Logger,
	m *metrics.Metrics,
) *OrderWorkflowService {
	return &OrderWorkflowService{
		orderRepo: orderRepo,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
		locks:     newOrderLocks(),
	}
}

// Create creates a new order from a cart snapshot
func (s *OrderWorkflowService) Create(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	orderID := "ORD-" + uuid.New().String()[:8]

	order, err := domain.NewOrder(orderID, cmd.CustomerID, cmd.CustomerEmail, cmd.ToDomainItems(), cmd.DeliveryAddress.ToDomainAddress())
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}

	s.notify(ctx, order, notification.TypeOrderPlaced, "Order placed",
		notification.OrderStatusBody(order.OrderID, "placed"))

	s.logger.Event(ctx, "order.created", map[string]any{
		"orderId":     order.OrderID,
		"customerId":  order.CustomerID,
		"totalAmount": order.TotalAmount,
	})

	return ToOrderDTO(order), nil
}

// Pay attempts to charge the full order total through the presented payment
// instrument. A declined charge is a business outcome and is reported in
// the result, not as an error.
func (s *OrderWorkflowService) Pay(ctx context.Context, cmd PayOrderCommand) (*PaymentResult, error) {
	method, err := cmd.Method.ToDomainMethod()
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	release := s.locks.Acquire(cmd.OrderID)
	defer release()

	order, err := s.load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	payErr := order.ProcessPayment(domain.NewPayment(cmd.Amount, method))
	return s.settlePayment(ctx, order, payErr)
}

// PayWithInstallments charges the monthly installment for the order total
// on a credit card. Only credit cards support EMI.
func (s *OrderWorkflowService) PayWithInstallments(ctx context.Context, cmd PayWithInstallmentsCommand) (*PaymentResult, error) {
	method, err := cmd.Method.ToDomainMethod()
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	card, ok := method.(*domain.CreditCard)
	if !ok {
		return nil, errors.ErrValidation("installment payments require a credit card")
	}
	if cmd.Months <= 0 {
		return nil, errors.ErrValidation(fmt.Sprintf("installment months must be positive, got %d", cmd.Months))
	}

	release := s.locks.Acquire(cmd.OrderID)
	defer release()

	order, err := s.load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	payErr := order.ProcessInstallmentPayment(card, cmd.Months)
	return s.settlePayment(ctx, order, payErr)
}

// settlePayment persists the payment outcome and applies its side effects
func (s *OrderWorkflowService) settlePayment(ctx context.Context, order *domain.Order, payErr error) (*PaymentResult, error) {
	methodKind := ""
	if order.Payment != nil {
		methodKind = string(order.Payment.MethodKind)
	}

	if payErr != nil && !stderrors.Is(payErr, domain.ErrChargeDeclined) {
		// Validation failures leave the order untouched; nothing to persist
		return nil, mapDomainError(payErr)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	declined := stderrors.Is(payErr, domain.ErrChargeDeclined)
	if s.metrics != nil {
		s.metrics.RecordPaymentProcessed(methodKind, !declined)
	}

	if declined {
		s.logger.Event(ctx, "order.payment_failed", map[string]any{
			"orderId":    order.OrderID,
			"methodKind": methodKind,
		})
		return &PaymentResult{Order: *ToOrderDTO(order), Declined: true}, nil
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceIssued()
	}

	s.notify(ctx, order, notification.TypePaymentConfirmation, "Payment confirmation",
		notification.OrderStatusBody(order.OrderID, "confirmed"))

	s.logger.Event(ctx, "order.paid", map[string]any{
		"orderId":       order.OrderID,
		"paymentId":     order.Payment.PaymentID,
		"transactionId": order.Payment.TransactionID,
		"amount":        order.Payment.Amount,
	})

	return &PaymentResult{Order: *ToOrderDTO(order), Charged: true}, nil
}

// Cancel cancels an order and attempts a best-effort refund of any
// successful payment. A refund failure is reported in the result and never
// reverts the cancellation.
func (s *OrderWorkflowService) Cancel(ctx context.Context, cmd CancelOrderCommand) (*CancelResult, error) {
	release := s.locks.Acquire(cmd.OrderID)
	defer release()

	order, err := s.load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(cmd.Reason); err != nil {
		return nil, mapDomainError(err)
	}

	result := &CancelResult{}
	if order.Payment != nil && order.Payment.Status == domain.PaymentSuccess {
		if refundErr := order.Payment.Refund(); refundErr != nil {
			result.RefundFailed = true
			s.logger.WithError(refundErr).Warn("Refund failed, cancellation stands",
				"orderId", order.OrderID,
				"paymentId", order.Payment.PaymentID,
			)
		} else {
			result.Refunded = true
		}
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCancelled(result.Refunded)
	}

	s.logger.Event(ctx, "order.cancelled", map[string]any{
		"orderId":  order.OrderID,
		"reason":   cmd.Reason,
		"refunded": result.Refunded,
	})

	result.Order = *ToOrderDTO(order)
	return result, nil
}

// AdvanceShipment records a shipment tracking update. Shipment states with
// an order-level counterpart must be legal order transitions; the check
// happens before anything is mutated.
func (s *OrderWorkflowService) AdvanceShipment(ctx context.Context, cmd AdvanceShipmentCommand) (*OrderDTO, error) {
	state := domain.ShipmentStatus(cmd.Status)
	if !state.IsValid() {
		return nil, errors.ErrValidation(fmt.Sprintf("unknown shipment status %q", cmd.Status))
	}

	release := s.locks.Acquire(cmd.OrderID)
	defer release()

	order, err := s.load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.AdvanceShipment(state, cmd.Description); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordShipmentAdvanced(string(state))
	}

	if kind, notify := notificationForShipment(state); notify {
		s.notify(ctx, order, kind, "Shipment update",
			notification.OrderStatusBody(order.OrderID, state.Description()))
	}

	s.logger.Event(ctx, "order.shipment_advanced", map[string]any{
		"orderId":        order.OrderID,
		"shipmentStatus": string(state),
		"trackingNumber": order.Tracker.TrackingNumber,
	})

	return ToOrderDTO(order), nil
}

// MarkCashCollected settles a cash-on-delivery payment collected by the
// given agent
func (s *OrderWorkflowService) MarkCashCollected(ctx context.Context, cmd MarkCashCollectedCommand) (*OrderDTO, error) {
	release := s.locks.Acquire(cmd.OrderID)
	defer release()

	order, err := s.load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.MarkCashCollected(cmd.AgentID); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPaymentProcessed(string(domain.MethodCash), true)
	}

	s.logger.Event(ctx, "order.cash_collected", map[string]any{
		"orderId": order.OrderID,
		"agentId": cmd.AgentID,
	})

	return ToOrderDTO(order), nil
}

// Get retrieves an order by id
func (s *OrderWorkflowService) Get(ctx context.Context, query GetOrderQuery) (*OrderDTO, error) {
	order, err := s.load(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(order), nil
}

// Track retrieves an order by its shipment tracking number
func (s *OrderWorkflowService) Track(ctx context.Context, query TrackShipmentQuery) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByTrackingNumber(ctx, query.TrackingNumber)
	if err != nil {
		s.logger.WithError(err).Error("Failed to look up tracking number", "trackingNumber", query.TrackingNumber)
		return nil, fmt.Errorf("failed to look up tracking number: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("shipment", query.TrackingNumber)
	}
	return ToOrderDTO(order), nil
}

// List lists orders with filters and pagination
func (s *OrderWorkflowService) List(ctx context.Context, query ListOrdersQuery) (*PagedOrdersResult, error) {
	filter := query.ToDomainFilter()
	pagination := query.ToDomainPagination()

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count orders")
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []*domain.Order
	switch {
	case filter.CustomerID != nil:
		orders, err = s.orderRepo.FindByCustomerID(ctx, *filter.CustomerID, pagination)
	case filter.Status != nil:
		orders, err = s.orderRepo.FindByStatus(ctx, *filter.Status, pagination)
	default:
		orders, err = s.orderRepo.FindAll(ctx, pagination)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := (total + pagination.PageSize - 1) / pagination.PageSize

	return &PagedOrdersResult{
		Data:       ToOrderListDTOs(orders),
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// load fetches an order or returns a not-found AppError
func (s *OrderWorkflowService) load(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load order", "orderId", orderID)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", orderID)
	}
	return order, nil
}

// save persists the order and publishes its pending domain events. Event
// publishing is best-effort; a broker outage must not fail the operation.
func (s *OrderWorkflowService) save(ctx context.Context, order *domain.Order) error {
	events := order.DomainEvents()

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to save order", "orderId", order.OrderID)
		return fmt.Errorf("failed to save order: %w", err)
	}
	order.ClearDomainEvents()

	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.PublishAll(ctx, events); err != nil {
			s.logger.WithError(err).Error("Failed to publish domain events", "orderId", order.OrderID)
		}
	}

	return nil
}

// notify sends a customer notification best-effort. The trigger reports
// delivery as a boolean and the outcome is already logged by the sender.
func (s *OrderWorkflowService) notify(ctx context.Context, order *domain.Order, kind notification.Type, subject, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, order.CustomerEmail, subject, body, kind)
}

// notificationForShipment maps shipment states to customer notification
// kinds. Only milestone states notify; the rest are quiet.
func notificationForShipment(state domain.ShipmentStatus) (notification.Type, bool) {
	switch {
	case !state.IsMilestone():
		return "", false
	case state == domain.ShipmentDelivered:
		return notification.TypeDelivery, true
	default:
		return notification.TypeShipmentUpdate, true
	}
}

// mapDomainError maps domain sentinel errors onto AppError codes
func mapDomainError(err error) error {
	switch {
	case stderrors.Is(err, domain.ErrEmptyCart):
		return errors.ErrValidation(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrAmountMismatch):
		return errors.ErrAmountMismatch(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrInvalidTransition):
		return errors.ErrInvalidTransition(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrNotCancellable):
		return errors.ErrNotCancellable(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrRefundUnavailable):
		return errors.ErrConflict(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrNoShipment),
		stderrors.Is(err, domain.ErrNotCashPayment),
		stderrors.Is(err, domain.ErrCashNotCollectable):
		return errors.ErrConflict(err.Error()).Wrap(err)
	default:
		return errors.MapDomainError(err)
	}
}
