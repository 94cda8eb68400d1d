package dto

import (
	"time"

	"github.com/google/uuid"
)

type PreviewRequest struct {
	Date              string   `json:"date"` // YYYY-MM-DD
	MaxRadiusKm       *float64 `json:"max_radius_km"`
	MaxTimeGapMinutes *int     `json:"max_time_gap_minutes"`
	MaxDogsPerGroup   *int     `json:"max_dogs_per_group"`
	GroupDiscountRate *float64 `json:"group_discount_rate"`
}

type ApplyRequest struct {
	RunID uuid.UUID `json:"run_id"`
}

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type WindowResponse struct {
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`
}

type GroupMemberResponse struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Dogs       int       `json:"dogs"`
	Price      float64   `json:"price"`
}

type GroupResponse struct {
	Members    []GroupMemberResponse `json:"members"`
	Center     LocationResponse      `json:"center"`
	RadiusKm   float64               `json:"radius_km"`
	Window     WindowResponse        `json:"window"`
	Route      []LocationResponse    `json:"route"`
	DogCount   int                   `json:"dog_count"`
	Score      int                   `json:"score"`
	WalkerID   *uuid.UUID            `json:"walker_id,omitempty"`
	WalkerName string                `json:"walker_name,omitempty"`
}

type UngroupedResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
}

type RunResponse struct {
	ID               uuid.UUID           `json:"id"`
	Date             string              `json:"date"`
	Status           string              `json:"status"`
	BookingsAnalyzed int                 `json:"bookings_analyzed"`
	BookingsGrouped  int                 `json:"bookings_grouped"`
	GroupsCreated    int                 `json:"groups_created"`
	EstimatedSavings float64             `json:"estimated_savings"`
	Groups           []GroupResponse     `json:"groups,omitempty"`
	Ungrouped        []UngroupedResponse `json:"ungrouped,omitempty"`
	Error            string              `json:"error,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	FinishedAt       *time.Time          `json:"finished_at,omitempty"`
}

type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type AppliedGroupResponse struct {
	SlotID     uuid.UUID   `json:"slot_id"`
	WalkerID   uuid.UUID   `json:"walker_id"`
	BookingIDs []uuid.UUID `json:"booking_ids"`
}

type GroupErrorResponse struct {
	GroupIndex int    `json:"group_index"`
	Reason     string `json:"reason"`
}

type ApplyResponse struct {
	RunID   uuid.UUID              `json:"run_id"`
	Applied []AppliedGroupResponse `json:"applied"`
	Skipped []GroupErrorResponse   `json:"skipped"`
	Failed  []GroupErrorResponse   `json:"failed"`
}
