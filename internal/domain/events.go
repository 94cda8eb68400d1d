package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingGrouped    EventType = "booking.grouped"
	EventSlotStatusChanged EventType = "slot.status_changed"
)

// BookingGroupedEvent notifies one customer that their booking joined a
// shared visit with a recomputed price. Delivery of the notification is
// an external collaborator's responsibility.
type BookingGroupedEvent struct {
	BookingID  uuid.UUID  `json:"booking_id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	SlotID     uuid.UUID  `json:"slot_id"`
	Date       time.Time  `json:"date"`
	Window     TimeWindow `json:"window"`
	WalkerName string     `json:"walker_name"`
	NewPrice   float64    `json:"new_price"`
}

// SlotStatusChangedEvent notifies affected customers of a slot lifecycle
// change (started, completed, cancelled).
type SlotStatusChangedEvent struct {
	SlotID     uuid.UUID   `json:"slot_id"`
	OldStatus  SlotStatus  `json:"old_status"`
	NewStatus  SlotStatus  `json:"new_status"`
	BookingIDs []uuid.UUID `json:"booking_ids"`
	Timestamp  time.Time   `json:"timestamp"`
}
