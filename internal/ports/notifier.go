package ports

import (
	"context"

	"walk-scheduler/internal/domain"
)

// Port: boundary for dispatching customer notifications. The scheduler
// only requests dispatch; delivery is an external collaborator's job.
type Notifier interface {
	PublishBookingGrouped(ctx context.Context, ev domain.BookingGroupedEvent) error
	PublishSlotStatusChanged(ctx context.Context, ev domain.SlotStatusChangedEvent) error
}
