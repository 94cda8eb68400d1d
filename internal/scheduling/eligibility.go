package scheduling

import (
	"fmt"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/geo"
)

// PairCheck is the outcome of a pairwise compatibility test. Reason is a
// human-readable explanation when OK is false; it is report data, not an
// error.
type PairCheck struct {
	OK     bool
	Reason string
}

func pairFail(format string, args ...any) PairCheck {
	return PairCheck{Reason: fmt.Sprintf(format, args...)}
}

// IsGroupEligible decides whether a booking may ever participate in a
// group, independent of any pairing. The returned reason explains a
// false result for the ungrouped report.
func IsGroupEligible(b *domain.Booking) (bool, string) {
	if b.Customer.Preference == domain.SoloOnly {
		return false, "customer prefers solo visits"
	}
	if !b.Service.Groupable() {
		return false, fmt.Sprintf("service type %q cannot become a group visit", b.Service)
	}
	for _, d := range b.Dogs {
		if !d.GroupApproved {
			return false, fmt.Sprintf("dog %q is not approved for groups", d.Name)
		}
		if !d.FriendlyWithOthers {
			return false, fmt.Sprintf("dog %q is not friendly with other dogs", d.Name)
		}
	}
	return true, ""
}

// CanPair decides whether two bookings may share a group. The distance
// admission uses 2x the radius limit so a cluster can reach an internal
// radius of maxRadiusKm while members are still admitted pairwise.
// Symmetric in its booking arguments.
func CanPair(b1, b2 *domain.Booking, maxRadiusKm float64, maxTimeGapMinutes int) PairCheck {
	if !b1.HasValidPickup() || !b2.HasValidPickup() {
		return pairFail("missing coordinates")
	}

	d := geo.Distance(*b1.Pickup, *b2.Pickup)
	if d > 2*maxRadiusKm {
		return pairFail("pickups %.1f km apart (limit %.1f km)", d, 2*maxRadiusKm)
	}

	if gap := b1.Window.GapMinutes(b2.Window); gap > maxTimeGapMinutes {
		return pairFail("time windows %d min apart (limit %d min)", gap, maxTimeGapMinutes)
	}

	maxSize := b1.Customer.EffectiveMaxGroupSize()
	if s := b2.Customer.EffectiveMaxGroupSize(); s < maxSize {
		maxSize = s
	}
	if combined := b1.DogCount() + b2.DogCount(); combined > maxSize {
		return pairFail("combined %d dogs exceed group size limit %d", combined, maxSize)
	}

	return PairCheck{OK: true}
}
