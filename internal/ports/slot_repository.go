package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

// SlotQuery lists every supported slot filter explicitly.
type SlotQuery struct {
	Date     time.Time
	WalkerID *uuid.UUID
}

// Port: boundary for reading and mutating Slot entities.
//
// JoinSlot and ApplyGroup carry the capacity-consistency contract of the
// scheduler: the capacity check and the increment must happen as one
// atomic operation per slot, so a concurrent join can never push
// CurrentDogs past MaxDogs.
type SlotRepository interface {
	ListSlots(ctx context.Context, q SlotQuery) ([]*domain.Slot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error)

	// JoinSlot atomically checks capacity and admits a booking. Returns
	// domain.ErrSlotFull when the dogs do not fit, domain.ErrSlotClosed
	// when the slot no longer accepts changes.
	JoinSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error)

	// LeaveSlot removes a booking and returns the slot to OPEN unless it
	// is already in progress or terminal.
	LeaveSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error)

	// UpdateSlotStatus persists a status transition already validated by
	// the domain state machine.
	UpdateSlotStatus(ctx context.Context, slotID uuid.UUID, status domain.SlotStatus) error

	// ApplyGroup commits one group as a single atomic unit: the slot
	// create-or-update plus every member booking's slot link, status and
	// price. Returns domain.ErrCapacityExceeded when the re-checked
	// capacity no longer fits.
	ApplyGroup(ctx context.Context, slot *domain.Slot, updates []domain.BookingUpdate) error
}
