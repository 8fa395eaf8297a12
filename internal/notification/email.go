package notification

import (
	"context"
	"regexp"

	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/retail-platform/order-fulfillment/pkg/metrics"
)

// emailRegex matches the accepted recipient address format
var emailRegex = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// EventPublisher is the producer surface the notification senders need
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.Event) error
}

// Message is the payload handed to the delivery workers on the
// notification topics
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Kind      Type   `json:"kind"`
}

// EmailSender delivers notifications by publishing them to the email
// notification topic. Delivery itself is owned by a downstream worker.
type EmailSender struct {
	publisher EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
	source    string
}

// NewEmailSender creates an email notification sender
func NewEmailSender(publisher EventPublisher, logger *logging.Logger, m *metrics.Metrics, source string) *EmailSender {
	return &EmailSender{
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		source:    source,
	}
}

// Notify validates the address and enqueues the email. Returns false on an
// invalid address or a publish failure; it never panics or errors out.
func (s *EmailSender) Notify(ctx context.Context, recipient, subject, body string, kind Type) bool {
	if !emailRegex.MatchString(recipient) {
		s.logger.WithComponent("email-sender").Warn("Invalid email address, notification dropped",
			"recipient", recipient,
			"notificationType", string(kind),
		)
		s.record(kind, false)
		return false
	}

	event, err := kafka.NewEvent("retail.notification.email", s.source, recipient, Message{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Kind:      kind,
	})
	if err != nil {
		s.logger.WithComponent("email-sender").WithError(err).Error("Failed to build email notification event")
		s.record(kind, false)
		return false
	}

	delivered := s.publisher.PublishEvent(ctx, kafka.Topics.EmailNotifications, event) == nil
	s.logger.Notification(ctx, "email", recipient, string(kind), delivered)
	s.record(kind, delivered)
	return delivered
}

func (s *EmailSender) record(kind Type, delivered bool) {
	if s.metrics != nil {
		s.metrics.RecordNotificationSent("email", string(kind), delivered)
	}
}
