package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupPreference is a customer's standing choice about shared visits.
type GroupPreference string

const (
	PreferGroup GroupPreference = "prefer_group"
	Neutral     GroupPreference = "neutral"
	SoloOnly    GroupPreference = "solo_only"
)

// DefaultMaxGroupSize applies when a customer has not configured a limit.
const DefaultMaxGroupSize = 4

type DogSize string

const (
	DogSmall  DogSize = "small"
	DogMedium DogSize = "medium"
	DogLarge  DogSize = "large"
)

// Dog belongs to exactly one customer. GroupApproved is an administrative
// decision, independent of FriendlyWithOthers.
type Dog struct {
	ID                 uuid.UUID `json:"id"`
	CustomerID         uuid.UUID `json:"customer_id"`
	Name               string    `json:"name"`
	Size               DogSize   `json:"size"`
	FriendlyWithOthers bool      `json:"friendly_with_others"`
	GroupApproved      bool      `json:"group_approved"`
}

type Customer struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Preference   GroupPreference `json:"preference"`
	MaxGroupSize int             `json:"max_group_size"`
	Location     *Location       `json:"location,omitempty"`
}

// EffectiveMaxGroupSize returns the customer's configured group-size cap,
// falling back to the system default when unset.
func (c *Customer) EffectiveMaxGroupSize() int {
	if c.MaxGroupSize > 0 {
		return c.MaxGroupSize
	}
	return DefaultMaxGroupSize
}

type ServiceType string

const (
	ServiceSingleWalk  ServiceType = "single_walk"
	ServiceGroupWalk   ServiceType = "group_walk"
	ServicePrivateWalk ServiceType = "private_walk"
)

// Groupable reports whether a visit of this type may become a group visit.
func (t ServiceType) Groupable() bool {
	return t == ServiceSingleWalk || t == ServiceGroupWalk
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingGrouped   BookingStatus = "grouped"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is one customer's request for a visit. The dog list is fixed at
// creation; status, slot link and price are the only mutable fields.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	Customer      Customer      `json:"customer"`
	Dogs          []Dog         `json:"dogs"`
	Date          time.Time     `json:"date"`
	Window        TimeWindow    `json:"window"`
	Pickup        *Location     `json:"pickup,omitempty"`
	PickupAddress string        `json:"pickup_address,omitempty"`
	AreaCode      string        `json:"area_code"`
	Service       ServiceType   `json:"service"`
	Status        BookingStatus `json:"status"`
	SlotID        *uuid.UUID    `json:"slot_id,omitempty"`
	BasePrice     float64       `json:"base_price"`
	Price         float64       `json:"price"`
}

func (b *Booking) DogCount() int { return len(b.Dogs) }

// HasValidPickup reports whether the booking carries usable coordinates.
func (b *Booking) HasValidPickup() bool {
	return b.Pickup != nil && b.Pickup.Valid()
}

// BookingUpdate is the per-booking write set produced when a group is
// applied: new status, slot link and recomputed price.
type BookingUpdate struct {
	BookingID uuid.UUID
	SlotID    uuid.UUID
	Status    BookingStatus
	NewPrice  float64
	Dogs      int
}
