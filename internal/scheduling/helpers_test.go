package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

var testDate = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC) // a Monday

type bookingOpt func(*domain.Booking)

func withPreference(p domain.GroupPreference) bookingOpt {
	return func(b *domain.Booking) { b.Customer.Preference = p }
}

func withService(s domain.ServiceType) bookingOpt {
	return func(b *domain.Booking) { b.Service = s }
}

func withDogs(dogs ...domain.Dog) bookingOpt {
	return func(b *domain.Booking) { b.Dogs = dogs }
}

func withArea(code string) bookingOpt {
	return func(b *domain.Booking) { b.AreaCode = code }
}

func withNoPickup() bookingOpt {
	return func(b *domain.Booking) { b.Pickup = nil }
}

// newBooking builds a group-eligible one-dog booking with sane defaults.
func newBooking(t *testing.T, lat, lng float64, start, end string, opts ...bookingOpt) *domain.Booking {
	t.Helper()

	window, err := domain.ParseWindow(start, end)
	if err != nil {
		t.Fatalf("parse window %s-%s: %v", start, end, err)
	}

	customerID := uuid.New()
	b := &domain.Booking{
		ID: uuid.New(),
		Customer: domain.Customer{
			ID:         customerID,
			Name:       "customer",
			Preference: domain.Neutral,
		},
		Dogs: []domain.Dog{{
			ID:                 uuid.New(),
			CustomerID:         customerID,
			Name:               "Rex",
			Size:               domain.DogMedium,
			FriendlyWithOthers: true,
			GroupApproved:      true,
		}},
		Date:      testDate,
		Window:    window,
		Pickup:    &domain.Location{Lat: lat, Lng: lng},
		AreaCode:  "10115",
		Service:   domain.ServiceSingleWalk,
		Status:    domain.BookingConfirmed,
		BasePrice: 18,
	}

	for _, opt := range opts {
		opt(b)
	}
	return b
}

func defaultParams() domain.RunParams {
	return domain.RunParams{
		MaxRadiusKm:       2.0,
		MaxTimeGapMinutes: 30,
		MaxDogsPerGroup:   4,
		GroupDiscountRate: 0.15,
	}
}
