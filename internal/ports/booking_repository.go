package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

// BookingQuery lists every supported booking filter explicitly.
type BookingQuery struct {
	Date          time.Time              // calendar day, required
	Statuses      []domain.BookingStatus // empty = any status
	OnlyUngrouped bool                   // restrict to bookings without a slot link
}

// Port: boundary for reading and updating Booking entities.
type BookingRepository interface {
	ListBookings(ctx context.Context, q BookingQuery) ([]*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// UpdateBookingSlot sets or clears the slot link, status and price of
	// one booking outside of a group apply.
	UpdateBookingSlot(ctx context.Context, id uuid.UUID, slotID *uuid.UUID, status domain.BookingStatus, price float64) error
}
