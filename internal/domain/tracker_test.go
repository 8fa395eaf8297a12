package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShipmentTracker(t *testing.T) {
	tracker := NewShipmentTracker("ORD-001")

	require.NotNil(t, tracker)
	assert.Equal(t, "ORD-001", tracker.OrderID)
	assert.Equal(t, ShipmentOrderPlaced, tracker.Current)
	assert.Regexp(t, `^SHP-[0-9a-f]{8}$`, tracker.TrackerID)
	assert.Regexp(t, `^TRK-[0-9A-F]{8}$`, tracker.TrackingNumber)

	require.Len(t, tracker.History, 1)
	assert.Equal(t, ShipmentOrderPlaced, tracker.History[0].Status)
	assert.Equal(t, "Order has been placed successfully", tracker.History[0].Description)

	expected := time.Now().UTC().Add(ExpectedDeliveryWindow)
	assert.WithinDuration(t, expected, tracker.ExpectedDelivery, time.Minute)
}

func TestTrackerAdvance(t *testing.T) {
	tracker := NewShipmentTracker("ORD-001")

	steps := []ShipmentStatus{
		ShipmentProcessing,
		ShipmentShipped,
		ShipmentInTransit,
		ShipmentOutForDelivery,
		ShipmentDelivered,
	}
	for _, step := range steps {
		tracker.Advance(step, "")
	}

	assert.Equal(t, ShipmentDelivered, tracker.Current)
	require.Len(t, tracker.History, len(steps)+1)

	// History preserves insertion order and current mirrors the last entry.
	for i, step := range steps {
		assert.Equal(t, step, tracker.History[i+1].Status)
	}
	assert.Equal(t, tracker.Current, tracker.History[len(tracker.History)-1].Status)
}

func TestTrackerAdvanceDescriptionFallback(t *testing.T) {
	tracker := NewShipmentTracker("ORD-001")

	tracker.Advance(ShipmentShipped, "")
	assert.Equal(t, "Order has been shipped", tracker.History[1].Description)

	tracker.Advance(ShipmentInTransit, "Departed sorting facility")
	assert.Equal(t, "Departed sorting facility", tracker.History[2].Description)
}

func TestTrackerAdvanceAcceptsAnySequence(t *testing.T) {
	tracker := NewShipmentTracker("ORD-001")

	// The tracker records what the carrier reports, even when the sequence
	// is unusual. A failed attempt followed by a retry is the common case.
	tracker.Advance(ShipmentOutForDelivery, "")
	tracker.Advance(ShipmentDeliveryFailed, "")
	tracker.Advance(ShipmentOutForDelivery, "")
	tracker.Advance(ShipmentDelivered, "")

	assert.Equal(t, ShipmentDelivered, tracker.Current)
	assert.Len(t, tracker.History, 5)
}

func TestShipmentStatusDescription(t *testing.T) {
	tests := []struct {
		status      ShipmentStatus
		description string
	}{
		{ShipmentOrderPlaced, "Order has been placed"},
		{ShipmentProcessing, "Order is being processed"},
		{ShipmentShipped, "Order has been shipped"},
		{ShipmentInTransit, "Order is in transit"},
		{ShipmentOutForDelivery, "Order is out for delivery"},
		{ShipmentDelivered, "Order has been delivered"},
		{ShipmentDeliveryFailed, "Delivery attempt failed"},
		{ShipmentReturned, "Order has been returned"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.IsValid())
			assert.Equal(t, tt.description, tt.status.Description())
		})
	}

	assert.False(t, ShipmentStatus("TELEPORTED").IsValid())
}

func TestShipmentStatusIsMilestone(t *testing.T) {
	milestones := []ShipmentStatus{
		ShipmentShipped,
		ShipmentOutForDelivery,
		ShipmentDelivered,
		ShipmentDeliveryFailed,
	}
	for _, s := range milestones {
		assert.True(t, s.IsMilestone(), "expected %s to be a milestone", s)
	}

	quiet := []ShipmentStatus{
		ShipmentOrderPlaced,
		ShipmentProcessing,
		ShipmentInTransit,
		ShipmentReturned,
	}
	for _, s := range quiet {
		assert.False(t, s.IsMilestone(), "expected %s not to be a milestone", s)
	}
}
