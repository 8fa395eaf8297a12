package notification

import (
	"context"

	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/retail-platform/order-fulfillment/pkg/metrics"
)

// LogTrigger writes notifications to the log instead of dispatching them.
// Used in development and when the broker is disabled.
type LogTrigger struct {
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewLogTrigger creates a log-only notification trigger
func NewLogTrigger(logger *logging.Logger, m *metrics.Metrics) *LogTrigger {
	return &LogTrigger{logger: logger, metrics: m}
}

// Notify logs the notification and reports it as delivered
func (t *LogTrigger) Notify(ctx context.Context, recipient, subject, body string, kind Type) bool {
	t.logger.WithComponent("log-trigger").Info("Notification",
		"recipient", recipient,
		"subject", subject,
		"body", body,
		"notificationType", string(kind),
	)
	if t.metrics != nil {
		t.metrics.RecordNotificationSent("log", string(kind), true)
	}
	return true
}
