package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotOpen       SlotStatus = "open"
	SlotFull       SlotStatus = "full"
	SlotInProgress SlotStatus = "in_progress"
	SlotCompleted  SlotStatus = "completed"
	SlotCancelled  SlotStatus = "cancelled"
)

// Slot is one scheduled visit, individual or shared by a group of
// bookings. Group slots additionally carry a computed center, covering
// radius, score and ordered route waypoints.
type Slot struct {
	ID          uuid.UUID   `json:"id"`
	WalkerID    uuid.UUID   `json:"walker_id"`
	Date        time.Time   `json:"date"`
	Window      TimeWindow  `json:"window"`
	CurrentDogs int         `json:"current_dogs"`
	MaxDogs     int         `json:"max_dogs"`
	Status      SlotStatus  `json:"status"`
	IsGroup     bool        `json:"is_group"`
	Center      *Location   `json:"center,omitempty"`
	RadiusKm    float64     `json:"radius_km,omitempty"`
	Score       int         `json:"score,omitempty"`
	Route       []Location  `json:"route,omitempty"`
	BookingIDs  []uuid.UUID `json:"booking_ids"`
}

func (s *Slot) terminal() bool {
	return s.Status == SlotCompleted || s.Status == SlotCancelled
}

// mutable reports whether bookings may still join or leave.
func (s *Slot) mutable() bool {
	return s.Status == SlotOpen || s.Status == SlotFull
}

// Join adds a booking with the given dog count. The capacity check and
// increment are a single operation; callers that persist slots must use
// an equally atomic store operation.
func (s *Slot) Join(bookingID uuid.UUID, dogs int) error {
	if !s.mutable() {
		return fmt.Errorf("join slot %s in status %s: %w", s.ID, s.Status, ErrSlotClosed)
	}
	if dogs <= 0 {
		return fmt.Errorf("join slot %s: dog count must be positive", s.ID)
	}
	if s.CurrentDogs+dogs > s.MaxDogs {
		return fmt.Errorf("join slot %s: %d+%d dogs exceeds max %d: %w",
			s.ID, s.CurrentDogs, dogs, s.MaxDogs, ErrSlotFull)
	}

	s.CurrentDogs += dogs
	s.BookingIDs = append(s.BookingIDs, bookingID)
	if s.CurrentDogs == s.MaxDogs {
		s.Status = SlotFull
	} else {
		s.Status = SlotOpen
	}
	return nil
}

// Leave removes a booking and its dogs. A slot that was FULL returns to
// OPEN regardless of how full it remains.
func (s *Slot) Leave(bookingID uuid.UUID, dogs int) error {
	if !s.mutable() {
		return fmt.Errorf("leave slot %s in status %s: %w", s.ID, s.Status, ErrSlotClosed)
	}

	idx := -1
	for i, id := range s.BookingIDs {
		if id == bookingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("leave slot %s: booking %s: %w", s.ID, bookingID, ErrNotFound)
	}

	s.BookingIDs = append(s.BookingIDs[:idx], s.BookingIDs[idx+1:]...)
	s.CurrentDogs -= dogs
	if s.CurrentDogs < 0 {
		s.CurrentDogs = 0
	}
	s.Status = SlotOpen
	return nil
}

// Start is legal only from OPEN or FULL.
func (s *Slot) Start() error {
	if !s.mutable() {
		return fmt.Errorf("start slot %s from %s: %w", s.ID, s.Status, ErrInvalidTransition)
	}
	s.Status = SlotInProgress
	return nil
}

// Complete is legal only from IN_PROGRESS.
func (s *Slot) Complete() error {
	if s.Status != SlotInProgress {
		return fmt.Errorf("complete slot %s from %s: %w", s.ID, s.Status, ErrInvalidTransition)
	}
	s.Status = SlotCompleted
	return nil
}

// Cancel is legal from OPEN, FULL or (administratively) IN_PROGRESS.
func (s *Slot) Cancel() error {
	if s.terminal() {
		return fmt.Errorf("cancel slot %s from %s: %w", s.ID, s.Status, ErrInvalidTransition)
	}
	s.Status = SlotCancelled
	return nil
}
