package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunParams are the caller-supplied policy knobs of one optimization run.
type RunParams struct {
	MaxRadiusKm       float64 `json:"max_radius_km"`
	MaxTimeGapMinutes int     `json:"max_time_gap_minutes"`
	MaxDogsPerGroup   int     `json:"max_dogs_per_group"`
	GroupDiscountRate float64 `json:"group_discount_rate"`
}

// Proposal is the serialized outcome of a preview: every materialized
// group plus every booking that stayed out, with its reason.
type Proposal struct {
	Groups    []Group            `json:"groups"`
	Ungrouped []UngroupedBooking `json:"ungrouped"`
}

// OptimizationRun is the immutable audit record of one optimization
// attempt. It is created RUNNING and finalized exactly once.
type OptimizationRun struct {
	ID               uuid.UUID  `json:"id"`
	Date             time.Time  `json:"date"`
	Params           RunParams  `json:"params"`
	Status           RunStatus  `json:"status"`
	BookingsAnalyzed int        `json:"bookings_analyzed"`
	BookingsGrouped  int        `json:"bookings_grouped"`
	GroupsCreated    int        `json:"groups_created"`
	EstimatedSavings float64    `json:"estimated_savings"`
	Proposal         *Proposal  `json:"proposal,omitempty"`
	Error            string     `json:"error,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// AppliedGroup records one committed group: the slot it landed on and
// the per-booking price after the group discount.
type AppliedGroup struct {
	SlotID     uuid.UUID   `json:"slot_id"`
	WalkerID   uuid.UUID   `json:"walker_id"`
	BookingIDs []uuid.UUID `json:"booking_ids"`
}

// GroupError records a group that could not be committed. Other groups
// in the same run are unaffected.
type GroupError struct {
	GroupIndex int    `json:"group_index"`
	Reason     string `json:"reason"`
}

// ApplyResult is the outcome of replaying a previewed proposal against
// live state.
type ApplyResult struct {
	RunID   uuid.UUID      `json:"run_id"`
	Applied []AppliedGroup `json:"applied"`
	Skipped []GroupError   `json:"skipped"` // groups without a matched walker
	Failed  []GroupError   `json:"failed"`  // capacity races and storage faults
}
