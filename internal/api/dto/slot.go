package dto

import (
	"github.com/google/uuid"
)

type JoinSlotRequest struct {
	SlotID    uuid.UUID `json:"slot_id"`
	BookingID uuid.UUID `json:"booking_id"`
}

type LeaveSlotRequest struct {
	SlotID    uuid.UUID `json:"slot_id"`
	BookingID uuid.UUID `json:"booking_id"`
}

type SlotTransitionRequest struct {
	SlotID uuid.UUID `json:"slot_id"`
}

type SlotResponse struct {
	ID          uuid.UUID         `json:"id"`
	WalkerID    uuid.UUID         `json:"walker_id"`
	Date        string            `json:"date"`
	Window      WindowResponse    `json:"window"`
	CurrentDogs int               `json:"current_dogs"`
	MaxDogs     int               `json:"max_dogs"`
	Status      string            `json:"status"`
	IsGroup     bool              `json:"is_group"`
	Center      *LocationResponse `json:"center,omitempty"`
	RadiusKm    float64           `json:"radius_km,omitempty"`
	BookingIDs  []uuid.UUID       `json:"booking_ids"`
}
