package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/ports"
)

// SlotService handles direct customer joins and leaves plus walker
// lifecycle transitions, outside of optimization runs. Capacity changes
// go through the repository's atomic check-and-increment so concurrent
// joins serialize per slot.
type SlotService struct {
	Slots    ports.SlotRepository
	Bookings ports.BookingRepository
	Notifier ports.Notifier
	Log      *logger.Logger
}

// Join attaches a booking to a slot, charging the grouped price when the
// slot is a shared visit.
func (s *SlotService) Join(ctx context.Context, slotID, bookingID uuid.UUID, discountRate float64) (*domain.Slot, error) {
	booking, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("join slot: load booking %s: %w", bookingID, err)
	}
	if booking.SlotID != nil {
		return nil, fmt.Errorf("join slot: booking %s already assigned to slot %s", bookingID, *booking.SlotID)
	}

	slot, err := s.Slots.JoinSlot(ctx, slotID, bookingID, booking.DogCount())
	if err != nil {
		return nil, fmt.Errorf("join slot %s: %w", slotID, err)
	}

	price := booking.BasePrice * float64(booking.DogCount())
	status := domain.BookingConfirmed
	if slot.IsGroup {
		price = GroupPrice(booking.BasePrice, booking.DogCount(), discountRate)
		status = domain.BookingGrouped
	}

	if err := s.Bookings.UpdateBookingSlot(ctx, bookingID, &slotID, status, price); err != nil {
		// Release the seat so capacity matches the booking link.
		if _, leaveErr := s.Slots.LeaveSlot(ctx, slotID, bookingID, booking.DogCount()); leaveErr != nil {
			s.Log.WithError(leaveErr).WithField("slot_id", slotID).Error("Join rollback failed")
		}
		return nil, fmt.Errorf("join slot %s: update booking %s: %w", slotID, bookingID, err)
	}

	return slot, nil
}

// Leave detaches a booking from its slot and restores the individual
// price.
func (s *SlotService) Leave(ctx context.Context, slotID, bookingID uuid.UUID) (*domain.Slot, error) {
	booking, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("leave slot: load booking %s: %w", bookingID, err)
	}

	slot, err := s.Slots.LeaveSlot(ctx, slotID, bookingID, booking.DogCount())
	if err != nil {
		return nil, fmt.Errorf("leave slot %s: %w", slotID, err)
	}

	price := booking.BasePrice * float64(booking.DogCount())
	if err := s.Bookings.UpdateBookingSlot(ctx, bookingID, nil, domain.BookingConfirmed, price); err != nil {
		// Re-reserve the seat so the slot still counts the booking.
		if _, joinErr := s.Slots.JoinSlot(ctx, slotID, bookingID, booking.DogCount()); joinErr != nil {
			s.Log.WithError(joinErr).WithField("slot_id", slotID).Error("Leave rollback failed")
		}
		return nil, fmt.Errorf("leave slot %s: update booking %s: %w", slotID, bookingID, err)
	}

	return slot, nil
}

// Start moves a slot to IN_PROGRESS.
func (s *SlotService) Start(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error) {
	return s.transition(ctx, slotID, func(slot *domain.Slot) error { return slot.Start() })
}

// Complete moves a slot to COMPLETED.
func (s *SlotService) Complete(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error) {
	return s.transition(ctx, slotID, func(slot *domain.Slot) error { return slot.Complete() })
}

// Cancel moves a slot to CANCELLED.
func (s *SlotService) Cancel(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error) {
	return s.transition(ctx, slotID, func(slot *domain.Slot) error { return slot.Cancel() })
}

// transition validates a lifecycle change through the domain state
// machine, persists it and notifies affected customers.
func (s *SlotService) transition(ctx context.Context, slotID uuid.UUID, change func(*domain.Slot) error) (*domain.Slot, error) {
	slot, err := s.Slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("slot transition: load slot %s: %w", slotID, err)
	}

	oldStatus := slot.Status
	if err := change(slot); err != nil {
		return nil, err
	}

	if err := s.Slots.UpdateSlotStatus(ctx, slotID, slot.Status); err != nil {
		return nil, fmt.Errorf("slot transition: persist slot %s: %w", slotID, err)
	}

	ev := domain.SlotStatusChangedEvent{
		SlotID:     slotID,
		OldStatus:  oldStatus,
		NewStatus:  slot.Status,
		BookingIDs: slot.BookingIDs,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.Notifier.PublishSlotStatusChanged(ctx, ev); err != nil {
		s.Log.WithError(err).WithField("slot_id", slotID).Warn("Notification dispatch failed")
	}

	return slot, nil
}
