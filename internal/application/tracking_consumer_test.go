package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-platform/order-fulfillment/internal/domain"
	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
)

func carrierEvent(t *testing.T, update CarrierUpdate) *kafka.Event {
	t.Helper()
	event, err := kafka.NewEvent("retail.shipment.carrier_update", "carrier-gateway", update.OrderID, update)
	require.NoError(t, err)
	return event
}

func TestCarrierTrackingHandlerAppliesUpdate(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	logger := logging.New(&logging.Config{Level: logging.LevelError, ServiceName: "test", Output: io.Discard})
	handler := NewCarrierTrackingHandler(f.service, logger)

	err := handler(context.Background(), carrierEvent(t, CarrierUpdate{
		OrderID: order.OrderID,
		Status:  "PROCESSING",
	}))
	require.NoError(t, err)

	stored, repoErr := f.repo.FindByID(context.Background(), order.OrderID)
	require.NoError(t, repoErr)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
	assert.Equal(t, domain.ShipmentProcessing, stored.Tracker.Current)
}

func TestCarrierTrackingHandlerDropsMalformed(t *testing.T) {
	f := newServiceFixture(t)
	logger := logging.New(&logging.Config{Level: logging.LevelError, ServiceName: "test", Output: io.Discard})
	handler := NewCarrierTrackingHandler(f.service, logger)

	event, err := kafka.NewEvent("retail.shipment.carrier_update", "carrier-gateway", "", map[string]any{})
	require.NoError(t, err)

	assert.NoError(t, handler(context.Background(), event), "missing fields must not trigger redelivery")
}

func TestCarrierTrackingHandlerDropsBusinessRejection(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t)
	f.payOrder(t, order.OrderID, debitMethod())

	logger := logging.New(&logging.Config{Level: logging.LevelError, ServiceName: "test", Output: io.Discard})
	handler := NewCarrierTrackingHandler(f.service, logger)

	// PAID -> SHIPPED is illegal, the update is final for this message
	err := handler(context.Background(), carrierEvent(t, CarrierUpdate{
		OrderID: order.OrderID,
		Status:  "SHIPPED",
	}))
	assert.NoError(t, err)

	// Unknown order is also final
	err = handler(context.Background(), carrierEvent(t, CarrierUpdate{
		OrderID: "ORD-missing1",
		Status:  "PROCESSING",
	}))
	assert.NoError(t, err)
}
