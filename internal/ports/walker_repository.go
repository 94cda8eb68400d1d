package ports

import (
	"context"
	"time"

	"walk-scheduler/internal/domain"
)

// WalkerQuery lists every supported walker filter explicitly.
type WalkerQuery struct {
	Weekday     time.Weekday
	AreaCode    string // empty = any area
	MinCapacity int
}

// Port: boundary for reading Walker entities.
type WalkerRepository interface {
	// ListWalkers returns walkers active on the weekday, servicing the
	// area and with capacity of at least MinCapacity, in a stable order.
	ListWalkers(ctx context.Context, q WalkerQuery) ([]*domain.Walker, error)
}
