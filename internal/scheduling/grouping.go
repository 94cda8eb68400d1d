package scheduling

import (
	"slices"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/geo"
)

// MinGroupSize is the smallest set of bookings worth a shared visit.
const MinGroupSize = 2

// BuildResult is the output of one grouping pass over a day's eligible
// bookings.
type BuildResult struct {
	Groups    []domain.Group
	Ungrouped []domain.UngroupedBooking
}

// BuildGroups partitions group-eligible bookings into spatially and
// temporally coherent clusters using a single greedy pass.
//
// Bookings are scanned in requested-start order (latitude, then booking
// ID as tie-breaks) so results are deterministic. Each unassigned
// booking anchors a group; a candidate joins only if it stays compatible
// with every current member, which keeps groups coherent rather than
// star-shaped around the anchor. Anchors that fail to reach MinGroupSize
// stay unassigned and are not retried — no backtracking.
func BuildGroups(bookings []*domain.Booking, params domain.RunParams) BuildResult {
	sorted := make([]*domain.Booking, len(bookings))
	copy(sorted, bookings)

	slices.SortFunc(sorted, func(a, b *domain.Booking) int {
		if a.Window.StartMin != b.Window.StartMin {
			return a.Window.StartMin - b.Window.StartMin
		}
		latA, latB := pickupLat(a), pickupLat(b)
		if latA < latB {
			return -1
		}
		if latA > latB {
			return 1
		}
		if a.ID.String() < b.ID.String() {
			return -1
		}
		if a.ID.String() > b.ID.String() {
			return 1
		}
		return 0
	})

	assigned := make(map[*domain.Booking]bool, len(sorted))
	var groups []domain.Group
	var ungrouped []domain.UngroupedBooking

	for _, anchor := range sorted {
		if assigned[anchor] {
			continue
		}

		members := []*domain.Booking{anchor}
		dogs := anchor.DogCount()

		for _, candidate := range sorted {
			if assigned[candidate] || slices.Contains(members, candidate) {
				continue
			}
			if dogs+candidate.DogCount() > params.MaxDogsPerGroup {
				continue
			}
			if !compatibleWithAll(candidate, members, params) {
				continue
			}

			members = append(members, candidate)
			dogs += candidate.DogCount()
			if dogs >= params.MaxDogsPerGroup {
				break
			}
		}

		if len(members) < MinGroupSize {
			ungrouped = append(ungrouped, domain.UngroupedBooking{
				BookingID: anchor.ID,
				Reason:    "no compatible bookings nearby",
			})
			continue
		}

		group := materializeGroup(members, dogs)
		groups = append(groups, group)
		for _, m := range members {
			assigned[m] = true
		}
	}

	slices.SortStableFunc(groups, func(a, b domain.Group) int { return b.Score - a.Score })

	return BuildResult{Groups: groups, Ungrouped: ungrouped}
}

func pickupLat(b *domain.Booking) float64 {
	if b.Pickup == nil {
		return 0
	}
	return b.Pickup.Lat
}

// compatibleWithAll runs the pairwise check against every existing
// member, not just the anchor (transitive coherence).
func compatibleWithAll(candidate *domain.Booking, members []*domain.Booking, params domain.RunParams) bool {
	for _, m := range members {
		if check := CanPair(candidate, m, params.MaxRadiusKm, params.MaxTimeGapMinutes); !check.OK {
			return false
		}
	}
	return true
}

// materializeGroup computes the derived geometry, window and score of a
// finished member set.
func materializeGroup(members []*domain.Booking, dogs int) domain.Group {
	points := make([]domain.Location, 0, len(members))
	for _, m := range members {
		points = append(points, *m.Pickup)
	}

	// Members all carry valid pickups by the time they are admitted, so
	// the centroid cannot fail here.
	center, _ := geo.Centroid(points)
	radius := geo.CoveringRadius(center, points)
	route := geo.TwoOptImprove(geo.NearestNeighborOrder(points))

	window := members[0].Window
	for _, m := range members[1:] {
		window = window.Merge(m.Window)
	}

	g := domain.Group{
		Bookings: members,
		Center:   center,
		RadiusKm: radius,
		Window:   window,
		Route:    route,
		DogCount: dogs,
	}
	g.Score = scoreGroup(&g)
	return g
}

// scoreGroup ranks a group for review ordering. Higher is better; the
// score is never used as a hard filter.
//
// Base 100, +20 per member, a compactness bonus from the covering
// radius, a tightness bonus from the start-time spread, and +10 per
// member whose customer actively prefers group visits.
func scoreGroup(g *domain.Group) int {
	score := 100 + 20*len(g.Bookings)

	switch {
	case g.RadiusKm < 0.5:
		score += 50
	case g.RadiusKm < 1.0:
		score += 30
	case g.RadiusKm < 1.5:
		score += 10
	}

	minStart, maxStart := g.Bookings[0].Window.StartMin, g.Bookings[0].Window.StartMin
	for _, b := range g.Bookings[1:] {
		if b.Window.StartMin < minStart {
			minStart = b.Window.StartMin
		}
		if b.Window.StartMin > maxStart {
			maxStart = b.Window.StartMin
		}
	}
	switch spread := maxStart - minStart; {
	case spread < 15:
		score += 30
	case spread < 30:
		score += 15
	}

	for _, b := range g.Bookings {
		if b.Customer.Preference == domain.PreferGroup {
			score += 10
		}
	}

	return score
}
