package scheduling

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

func TestIsGroupEligible(t *testing.T) {
	friendly := domain.Dog{ID: uuid.New(), Name: "Luna", FriendlyWithOthers: true, GroupApproved: true}
	unapproved := domain.Dog{ID: uuid.New(), Name: "Bruno", FriendlyWithOthers: true, GroupApproved: false}
	unfriendly := domain.Dog{ID: uuid.New(), Name: "Kira", FriendlyWithOthers: false, GroupApproved: true}

	cases := []struct {
		name    string
		booking *domain.Booking
		want    bool
	}{
		{"eligible", newBooking(t, 52.52, 13.40, "09:00", "10:00"), true},
		{"solo only customer", newBooking(t, 52.52, 13.40, "09:00", "10:00", withPreference(domain.SoloOnly)), false},
		{"unapproved dog", newBooking(t, 52.52, 13.40, "09:00", "10:00", withDogs(friendly, unapproved)), false},
		{"unfriendly dog", newBooking(t, 52.52, 13.40, "09:00", "10:00", withDogs(unfriendly)), false},
		{"private service", newBooking(t, 52.52, 13.40, "09:00", "10:00", withService(domain.ServicePrivateWalk)), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, reason := IsGroupEligible(c.booking)
			if got != c.want {
				t.Errorf("IsGroupEligible = %v, want %v", got, c.want)
			}
			if !got && reason == "" {
				t.Error("ineligible booking must carry a reason")
			}
		})
	}
}

func TestCanPairSymmetry(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.540, 13.420, "09:45", "10:45")

	r1 := CanPair(b1, b2, 2.0, 30)
	r2 := CanPair(b2, b1, 2.0, 30)
	if r1.OK != r2.OK {
		t.Errorf("CanPair not symmetric: %v vs %v", r1, r2)
	}
}

func TestCanPairMissingCoordinates(t *testing.T) {
	b1 := newBooking(t, 52.52, 13.40, "09:00", "10:00")
	b2 := newBooking(t, 52.52, 13.40, "09:00", "10:00", withNoPickup())

	check := CanPair(b1, b2, 2.0, 30)
	if check.OK {
		t.Fatal("expected failure for missing coordinates")
	}
	if check.Reason != "missing coordinates" {
		t.Errorf("reason = %q, want %q", check.Reason, "missing coordinates")
	}
}

func TestCanPairDistanceLimit(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	far := newBooking(t, 52.620, 13.500, "09:00", "10:00")

	check := CanPair(b1, far, 2.0, 30)
	if check.OK {
		t.Fatal("expected failure beyond 2x radius")
	}
	if !strings.Contains(check.Reason, "km apart") {
		t.Errorf("reason %q should include the formatted distance", check.Reason)
	}

	// The 2x factor: points ~3 km apart pass with a 2 km radius.
	mid := newBooking(t, 52.547, 13.400, "09:00", "10:00")
	if check := CanPair(b1, mid, 2.0, 30); !check.OK {
		t.Errorf("~3 km apart should pass the 2x2 km admission: %q", check.Reason)
	}
}

func TestCanPairTimeGap(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "09:30")
	late := newBooking(t, 52.520, 13.400, "10:30", "11:00")

	check := CanPair(b1, late, 2.0, 30)
	if check.OK {
		t.Fatal("expected failure for a 60 minute gap")
	}
	if !strings.Contains(check.Reason, "min apart") {
		t.Errorf("reason %q should describe the time gap", check.Reason)
	}

	touching := newBooking(t, 52.520, 13.400, "09:30", "10:00")
	if check := CanPair(b1, touching, 2.0, 30); !check.OK {
		t.Errorf("adjacent windows should pass: %q", check.Reason)
	}
}

func TestCanPairDogCountLimit(t *testing.T) {
	threeDogs := make([]domain.Dog, 3)
	for i := range threeDogs {
		threeDogs[i] = domain.Dog{ID: uuid.New(), Name: "d", FriendlyWithOthers: true, GroupApproved: true}
	}

	b1 := newBooking(t, 52.52, 13.40, "09:00", "10:00", withDogs(threeDogs...))
	b2 := newBooking(t, 52.52, 13.40, "09:00", "10:00", withDogs(threeDogs...))

	if check := CanPair(b1, b2, 2.0, 30); check.OK {
		t.Error("6 combined dogs must exceed the default group size limit")
	}

	// A customer's own tighter limit wins over the default.
	b3 := newBooking(t, 52.52, 13.40, "09:00", "10:00")
	b4 := newBooking(t, 52.52, 13.40, "09:00", "10:00")
	b4.Customer.MaxGroupSize = 1
	if check := CanPair(b3, b4, 2.0, 30); check.OK {
		t.Error("customer max group size of 1 must reject any pairing")
	}
}
