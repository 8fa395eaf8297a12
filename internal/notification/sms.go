package notification

import (
	"context"
	"regexp"

	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/retail-platform/order-fulfillment/pkg/metrics"
)

// phoneRegex matches 10 to 15 digits with an optional leading plus
var phoneRegex = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// MaxSMSLength is the single-segment SMS body limit
const MaxSMSLength = 160

// SMSSender delivers notifications by publishing them to the SMS
// notification topic. The subject is ignored; SMS carries only the body.
type SMSSender struct {
	publisher EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
	source    string
}

// NewSMSSender creates an SMS notification sender
func NewSMSSender(publisher EventPublisher, logger *logging.Logger, m *metrics.Metrics, source string) *SMSSender {
	return &SMSSender{
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		source:    source,
	}
}

// Notify validates the phone number and body length, then enqueues the
// SMS. Returns false on validation or publish failure.
func (s *SMSSender) Notify(ctx context.Context, recipient, subject, body string, kind Type) bool {
	log := s.logger.WithComponent("sms-sender")

	if !phoneRegex.MatchString(recipient) {
		log.Warn("Invalid phone number, notification dropped",
			"recipient", recipient,
			"notificationType", string(kind),
		)
		s.record(kind, false)
		return false
	}

	if len(body) > MaxSMSLength {
		log.Warn("SMS body exceeds single-segment limit, notification dropped",
			"recipient", recipient,
			"length", len(body),
		)
		s.record(kind, false)
		return false
	}

	event, err := kafka.NewEvent("retail.notification.sms", s.source, recipient, Message{
		Recipient: recipient,
		Body:      body,
		Kind:      kind,
	})
	if err != nil {
		log.WithError(err).Error("Failed to build SMS notification event")
		s.record(kind, false)
		return false
	}

	delivered := s.publisher.PublishEvent(ctx, kafka.Topics.SMSNotifications, event) == nil
	s.logger.Notification(ctx, "sms", recipient, string(kind), delivered)
	s.record(kind, delivered)
	return delivered
}

func (s *SMSSender) record(kind Type, delivered bool) {
	if s.metrics != nil {
		s.metrics.RecordNotificationSent("sms", string(kind), delivered)
	}
}
