package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShipmentStatus represents the shipment state of an order in transit
type ShipmentStatus string

const (
	ShipmentOrderPlaced    ShipmentStatus = "ORDER_PLACED"
	ShipmentProcessing     ShipmentStatus = "PROCESSING"
	ShipmentShipped        ShipmentStatus = "SHIPPED"
	ShipmentInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentDelivered      ShipmentStatus = "DELIVERED"
	ShipmentDeliveryFailed ShipmentStatus = "DELIVERY_FAILED"
	ShipmentReturned       ShipmentStatus = "RETURNED"
)

// shipmentDescriptions are the human-readable descriptions used in tracking
// history and customer notifications
var shipmentDescriptions = map[ShipmentStatus]string{
	ShipmentOrderPlaced:    "Order has been placed",
	ShipmentProcessing:     "Order is being processed",
	ShipmentShipped:        "Order has been shipped",
	ShipmentInTransit:      "Order is in transit",
	ShipmentOutForDelivery: "Order is out for delivery",
	ShipmentDelivered:      "Order has been delivered",
	ShipmentDeliveryFailed: "Delivery attempt failed",
	ShipmentReturned:       "Order has been returned",
}

// IsValid checks if the status is a known shipment status
func (s ShipmentStatus) IsValid() bool {
	_, ok := shipmentDescriptions[s]
	return ok
}

// Description returns the human-readable description of the status
func (s ShipmentStatus) Description() string {
	return shipmentDescriptions[s]
}

// IsMilestone reports whether reaching this status should notify the
// customer
func (s ShipmentStatus) IsMilestone() bool {
	switch s {
	case ShipmentShipped, ShipmentOutForDelivery, ShipmentDelivered, ShipmentDeliveryFailed:
		return true
	default:
		return false
	}
}

// ExpectedDeliveryWindow is the fixed offset used to compute the expected
// delivery date at tracker creation. Carrier data is out of scope.
const ExpectedDeliveryWindow = 5 * 24 * time.Hour

// TrackingEvent is a single entry in a shipment's history
type TrackingEvent struct {
	Status      ShipmentStatus `bson:"status" json:"status"`
	Description string         `bson:"description" json:"description"`
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
}

// ShipmentTracker holds the current shipment state of an order and its
// append-only history. The current state always equals the last history
// entry's state.
type ShipmentTracker struct {
	TrackerID        string          `bson:"trackerId" json:"trackerId"`
	OrderID          string          `bson:"orderId" json:"orderId"`
	Current          ShipmentStatus  `bson:"current" json:"current"`
	History          []TrackingEvent `bson:"history" json:"history"`
	ExpectedDelivery time.Time       `bson:"expectedDelivery" json:"expectedDelivery"`
	TrackingNumber   string          `bson:"trackingNumber" json:"trackingNumber"`
}

// NewShipmentTracker creates a tracker with ORDER_PLACED already in history
// and the expected delivery date set from the fixed window
func NewShipmentTracker(orderID string) *ShipmentTracker {
	now := time.Now().UTC()
	tracker := &ShipmentTracker{
		TrackerID:        "SHP-" + uuid.New().String()[:8],
		OrderID:          orderID,
		ExpectedDelivery: now.Add(ExpectedDeliveryWindow),
		TrackingNumber:   newTrackingNumber(),
		History:          make([]TrackingEvent, 0, 8),
	}
	tracker.Advance(ShipmentOrderPlaced, "Order has been placed successfully")
	return tracker
}

// Advance appends a tracking event and moves the current state,
// unconditionally. Transition legality, if desired, is the caller's
// responsibility; the history itself is the durable source of truth.
func (t *ShipmentTracker) Advance(status ShipmentStatus, description string) {
	if description == "" {
		description = status.Description()
	}

	t.History = append(t.History, TrackingEvent{
		Status:      status,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
	t.Current = status
}

func newTrackingNumber() string {
	return "TRK-" + strings.ToUpper(uuid.New().String()[:8])
}
