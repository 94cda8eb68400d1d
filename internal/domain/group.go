package domain

import "github.com/google/uuid"

// Group is a proposed set of two or more bookings sharing one visit.
// It is planning data only; committing a group creates or updates a Slot.
type Group struct {
	Bookings []*Booking  `json:"bookings"`
	Center   Location    `json:"center"`
	RadiusKm float64     `json:"radius_km"`
	Window   TimeWindow  `json:"window"`
	Route    []Location  `json:"route"`
	DogCount int         `json:"dog_count"`
	Score    int         `json:"score"`
	Walker   *WalkerRef  `json:"walker,omitempty"`
}

// BookingIDs returns member booking identifiers in route-independent
// member order.
func (g *Group) BookingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Bookings))
	for _, b := range g.Bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

// UngroupedBooking reports why a booking stayed out of every group.
// These are expected outcomes, not errors.
type UngroupedBooking struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
}
