package scheduling

import (
	"testing"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

func TestBuildGroupsClusterOfThree(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")
	b3 := newBooking(t, 52.519, 13.399, "09:10", "10:10")

	result := BuildGroups([]*domain.Booking{b1, b2, b3}, defaultParams())

	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}
	if got := len(result.Groups[0].Bookings); got != 3 {
		t.Fatalf("group size = %d, want 3", got)
	}
	if len(result.Ungrouped) != 0 {
		t.Errorf("ungrouped = %v, want none", result.Ungrouped)
	}

	g := result.Groups[0]
	if g.DogCount != 3 {
		t.Errorf("dog count = %d, want 3", g.DogCount)
	}
	if g.RadiusKm <= 0 || g.RadiusKm > 0.5 {
		t.Errorf("covering radius = %.3f km, want small positive", g.RadiusKm)
	}
	if g.Window.StartMin != 9*60 || g.Window.EndMin != 10*60+10 {
		t.Errorf("group window = %s, want 09:00-10:10", g.Window)
	}
	if len(g.Route) != 3 {
		t.Errorf("route waypoints = %d, want 3", len(g.Route))
	}
}

func TestBuildGroupsDistantOutlierStaysOut(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")
	b3 := newBooking(t, 52.519, 13.399, "09:10", "10:10")
	far := newBooking(t, 52.600, 13.500, "09:00", "10:00")

	params := defaultParams()
	params.MaxRadiusKm = 3

	result := BuildGroups([]*domain.Booking{b1, b2, b3, far}, params)

	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}
	if got := len(result.Groups[0].Bookings); got != 3 {
		t.Fatalf("group size = %d, want 3", got)
	}

	if len(result.Ungrouped) != 1 {
		t.Fatalf("ungrouped = %d, want 1", len(result.Ungrouped))
	}
	if result.Ungrouped[0].BookingID != far.ID {
		t.Errorf("ungrouped booking = %s, want the distant one", result.Ungrouped[0].BookingID)
	}
	if result.Ungrouped[0].Reason == "" {
		t.Error("ungrouped booking must carry a reason")
	}
}

func TestBuildGroupsDisjointMembership(t *testing.T) {
	var bookings []*domain.Booking
	for i := 0; i < 8; i++ {
		bookings = append(bookings, newBooking(t,
			52.520+float64(i)*0.001, 13.400+float64(i)*0.001,
			"09:00", "10:00"))
	}

	result := BuildGroups(bookings, defaultParams())

	seen := make(map[uuid.UUID]bool)
	for _, g := range result.Groups {
		if len(g.Bookings) < MinGroupSize {
			t.Errorf("group of size %d below minimum", len(g.Bookings))
		}
		if g.DogCount > defaultParams().MaxDogsPerGroup {
			t.Errorf("group dog count %d exceeds cap", g.DogCount)
		}
		for _, b := range g.Bookings {
			if seen[b.ID] {
				t.Errorf("booking %s appears in more than one group", b.ID)
			}
			seen[b.ID] = true
		}
	}
}

func TestBuildGroupsRespectsDogCap(t *testing.T) {
	twoDogs := func() bookingOpt {
		return withDogs(
			domain.Dog{ID: uuid.New(), Name: "a", FriendlyWithOthers: true, GroupApproved: true},
			domain.Dog{ID: uuid.New(), Name: "b", FriendlyWithOthers: true, GroupApproved: true},
		)
	}

	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00", twoDogs())
	b2 := newBooking(t, 52.521, 13.401, "09:00", "10:00", twoDogs())
	b3 := newBooking(t, 52.519, 13.399, "09:00", "10:00", twoDogs())

	result := BuildGroups([]*domain.Booking{b1, b2, b3}, defaultParams())

	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}
	if got := result.Groups[0].DogCount; got != 4 {
		t.Errorf("dog count = %d, want 4 (cap)", got)
	}
	if len(result.Ungrouped) != 1 {
		t.Errorf("the third two-dog booking should stay ungrouped")
	}
}

func TestBuildGroupsDeterministic(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")
	b3 := newBooking(t, 52.519, 13.399, "09:10", "10:10")

	first := BuildGroups([]*domain.Booking{b1, b2, b3}, defaultParams())
	second := BuildGroups([]*domain.Booking{b3, b1, b2}, defaultParams())

	if len(first.Groups) != len(second.Groups) {
		t.Fatalf("group counts differ: %d vs %d", len(first.Groups), len(second.Groups))
	}
	for i := range first.Groups {
		a, b := first.Groups[i], second.Groups[i]
		if len(a.Bookings) != len(b.Bookings) || a.Score != b.Score {
			t.Errorf("group %d differs across input orders", i)
		}
		for j := range a.Bookings {
			if a.Bookings[j].ID != b.Bookings[j].ID {
				t.Errorf("group %d member %d differs across input orders", i, j)
			}
		}
	}
}

func TestScoreGroup(t *testing.T) {
	b1 := newBooking(t, 52.5200, 13.4000, "09:00", "10:00")
	b2 := newBooking(t, 52.5201, 13.4001, "09:05", "10:05")

	result := BuildGroups([]*domain.Booking{b1, b2}, defaultParams())
	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}

	// Base 100 + 2 members x 20 + compact (<0.5 km) 50 + tight (<15 min) 30.
	if got := result.Groups[0].Score; got != 220 {
		t.Errorf("score = %d, want 220", got)
	}

	// PREFER_GROUP members add 10 each.
	b3 := newBooking(t, 52.5200, 13.4000, "09:00", "10:00", withPreference(domain.PreferGroup))
	b4 := newBooking(t, 52.5201, 13.4001, "09:05", "10:05", withPreference(domain.PreferGroup))
	result = BuildGroups([]*domain.Booking{b3, b4}, defaultParams())
	if got := result.Groups[0].Score; got != 240 {
		t.Errorf("score with preferences = %d, want 240", got)
	}
}

func TestBuildGroupsSoloOnlyNeverIncluded(t *testing.T) {
	// Eligibility is the caller's concern, but a defense-in-depth check:
	// the builder itself never merges a booking whose customer limit
	// forbids it, and the documented pipeline filters SOLO_ONLY first.
	solo := newBooking(t, 52.520, 13.400, "09:00", "10:00", withPreference(domain.SoloOnly))
	b2 := newBooking(t, 52.521, 13.401, "09:00", "10:00")
	b3 := newBooking(t, 52.519, 13.399, "09:00", "10:00")

	eligible := make([]*domain.Booking, 0, 3)
	for _, b := range []*domain.Booking{solo, b2, b3} {
		if ok, _ := IsGroupEligible(b); ok {
			eligible = append(eligible, b)
		}
	}

	result := BuildGroups(eligible, defaultParams())
	for _, g := range result.Groups {
		for _, b := range g.Bookings {
			if b.ID == solo.ID {
				t.Fatal("solo-only booking ended up in a group")
			}
		}
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Bookings) != 2 {
		t.Errorf("remaining two bookings should still group")
	}
}
