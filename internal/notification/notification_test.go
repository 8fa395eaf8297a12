package notification

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	events []*kafka.Event
	topics []string
	err    error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event *kafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	f.topics = append(f.topics, topic)
	return nil
}

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})
}

func TestNotificationTypeIsValid(t *testing.T) {
	valid := []Type{TypeOrderPlaced, TypePaymentConfirmation, TypeShipmentUpdate, TypeDelivery, TypeReturnInitiated}
	for _, nt := range valid {
		assert.True(t, nt.IsValid(), "expected %s to be valid", nt)
	}
	assert.False(t, Type("CARRIER_PIGEON").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestOrderStatusBody(t *testing.T) {
	body := OrderStatusBody("ORD-abc12345", "shipped")
	assert.Equal(t, "Your order ORD-abc12345 is shipped", body)
}

func TestEmailSenderNotify(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewEmailSender(publisher, testLogger(), nil, "order-fulfillment")

	delivered := sender.Notify(context.Background(), "customer@example.com", "Order placed", "Your order ORD-abc12345 is placed", TypeOrderPlaced)

	assert.True(t, delivered)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, kafka.Topics.EmailNotifications, publisher.topics[0])

	event := publisher.events[0]
	assert.Equal(t, "retail.notification.email", event.Type)
	assert.Equal(t, "customer@example.com", event.Subject)

	var msg Message
	require.NoError(t, event.DecodeData(&msg))
	assert.Equal(t, "customer@example.com", msg.Recipient)
	assert.Equal(t, "Order placed", msg.Subject)
	assert.Equal(t, TypeOrderPlaced, msg.Kind)
}

func TestEmailSenderInvalidAddress(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		want      bool
	}{
		{"plain address", "customer@example.com", true},
		{"plus tag", "customer+orders@example.com", true},
		{"missing at sign", "customer.example.com", false},
		{"missing local part", "@example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			sender := NewEmailSender(publisher, testLogger(), nil, "order-fulfillment")

			delivered := sender.Notify(context.Background(), tt.recipient, "subject", "body", TypeOrderPlaced)
			assert.Equal(t, tt.want, delivered)
			if !tt.want {
				assert.Empty(t, publisher.events, "invalid recipient must not reach the broker")
			}
		})
	}
}

func TestEmailSenderPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	sender := NewEmailSender(publisher, testLogger(), nil, "order-fulfillment")

	delivered := sender.Notify(context.Background(), "customer@example.com", "subject", "body", TypePaymentConfirmation)
	assert.False(t, delivered)
}

func TestSMSSenderNotify(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewSMSSender(publisher, testLogger(), nil, "order-fulfillment")

	delivered := sender.Notify(context.Background(), "+14155550123", "ignored", "Your order ORD-abc12345 is shipped", TypeShipmentUpdate)

	assert.True(t, delivered)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, kafka.Topics.SMSNotifications, publisher.topics[0])

	var msg Message
	require.NoError(t, publisher.events[0].DecodeData(&msg))
	assert.Equal(t, "+14155550123", msg.Recipient)
	assert.Empty(t, msg.Subject)
}

func TestSMSSenderPhoneValidation(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		want      bool
	}{
		{"with country code", "+14155550123", true},
		{"bare digits", "4155550123", true},
		{"fifteen digits", "123456789012345", true},
		{"too short", "123456789", false},
		{"too long", "1234567890123456", false},
		{"letters", "41555501ab", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			sender := NewSMSSender(publisher, testLogger(), nil, "order-fulfillment")

			delivered := sender.Notify(context.Background(), tt.recipient, "", "body", TypeShipmentUpdate)
			assert.Equal(t, tt.want, delivered)
		})
	}
}

func TestSMSSenderBodyLimit(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewSMSSender(publisher, testLogger(), nil, "order-fulfillment")

	exact := strings.Repeat("a", MaxSMSLength)
	assert.True(t, sender.Notify(context.Background(), "+14155550123", "", exact, TypeDelivery))

	over := strings.Repeat("a", MaxSMSLength+1)
	assert.False(t, sender.Notify(context.Background(), "+14155550123", "", over, TypeDelivery))
	assert.Len(t, publisher.events, 1, "oversized body must not reach the broker")
}
