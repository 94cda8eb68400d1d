package scheduling

import (
	"context"
	"fmt"
	"time"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

// MatchWalker finds an available walker for a materialized group on the
// target date. A nil result with a nil error means no walker satisfies
// every constraint — a reportable outcome, not a failure; the group
// stays in the proposal flagged as unassignable.
func MatchWalker(
	ctx context.Context,
	group *domain.Group,
	date time.Time,
	walkers ports.WalkerRepository,
	slots ports.SlotRepository,
) (*domain.WalkerRef, error) {
	area := DominantArea(group)

	candidates, err := walkers.ListWalkers(ctx, ports.WalkerQuery{
		Weekday:     date.Weekday(),
		AreaCode:    area,
		MinCapacity: group.DogCount,
	})
	if err != nil {
		return nil, fmt.Errorf("match walker: list walkers: %w", err)
	}

	for _, w := range candidates {
		if !w.CoversWindow(group.Window) {
			continue
		}

		booked, err := slots.ListSlots(ctx, ports.SlotQuery{Date: date, WalkerID: &w.ID})
		if err != nil {
			return nil, fmt.Errorf("match walker: list slots for walker %s: %w", w.ID, err)
		}

		if hasConflict(group.Window, booked) {
			continue
		}

		return &domain.WalkerRef{ID: w.ID, Name: w.Name}, nil
	}

	return nil, nil
}

// DominantArea returns the most frequent area code among member pickup
// locations; ties break toward first occurrence.
func DominantArea(group *domain.Group) string {
	counts := make(map[string]int, len(group.Bookings))
	order := make([]string, 0, len(group.Bookings))

	for _, b := range group.Bookings {
		if b.AreaCode == "" {
			continue
		}
		if _, seen := counts[b.AreaCode]; !seen {
			order = append(order, b.AreaCode)
		}
		counts[b.AreaCode]++
	}

	best := ""
	bestCount := 0
	for _, code := range order {
		if counts[code] > bestCount {
			best = code
			bestCount = counts[code]
		}
	}
	return best
}

// hasConflict checks the group window against the walker's existing
// commitments with inclusive-exclusive interval semantics. Cancelled
// slots do not block.
func hasConflict(window domain.TimeWindow, booked []*domain.Slot) bool {
	for _, s := range booked {
		if s.Status == domain.SlotCancelled {
			continue
		}
		if window.Overlaps(s.Window) {
			return true
		}
	}
	return false
}
