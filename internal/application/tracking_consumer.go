package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/retail-platform/order-fulfillment/pkg/errors"
	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
)

// CarrierUpdate is the payload carriers publish on the tracking topic
type CarrierUpdate struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// NewCarrierTrackingHandler returns the Kafka event handler that applies
// carrier tracking updates to orders. Malformed payloads and updates for
// unknown orders are logged and dropped so the topic keeps draining;
// transient failures are returned so the message is redelivered.
func NewCarrierTrackingHandler(service *OrderWorkflowService, logger *logging.Logger) kafka.EventHandler {
	log := logger.WithComponent("carrier-tracking")

	return func(ctx context.Context, event *kafka.Event) error {
		var update CarrierUpdate
		if err := event.DecodeData(&update); err != nil {
			log.WithError(err).Warn("Dropping malformed carrier update", "eventId", event.ID)
			return nil
		}

		if update.OrderID == "" || update.Status == "" {
			log.Warn("Dropping carrier update without order id or status", "eventId", event.ID)
			return nil
		}

		_, err := service.AdvanceShipment(ctx, AdvanceShipmentCommand{
			OrderID:     update.OrderID,
			Status:      update.Status,
			Description: update.Description,
		})
		if err == nil {
			return nil
		}

		// Business rejections are final for this message; only
		// infrastructure failures are worth a redelivery.
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			log.WithError(err).Warn("Carrier update rejected",
				"orderId", update.OrderID,
				"status", update.Status,
				"code", appErr.Code,
			)
			return nil
		}

		return fmt.Errorf("carrier update for %s: %w", update.OrderID, err)
	}
}

// RegisterCarrierTracking subscribes the carrier tracking handler on the
// tracking topic
func RegisterCarrierTracking(consumer *kafka.CircuitBreakerConsumer, service *OrderWorkflowService, logger *logging.Logger) {
	consumer.SubscribeAll(kafka.Topics.CarrierTracking, NewCarrierTrackingHandler(service, logger))
}
