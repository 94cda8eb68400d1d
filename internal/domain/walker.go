package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Walker is a field worker with a service area, daily hours, active
// weekdays and a maximum simultaneous dog capacity.
type Walker struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	AreaCodes []string   `json:"area_codes"`
	DayWindow TimeWindow `json:"day_window"`
	Weekdays  uint8      `json:"weekdays"` // bit i set = works on time.Weekday(i)
	MaxDogs   int        `json:"max_dogs"`
}

// WeekdayMask builds a Weekdays bitmask from a list of active weekdays.
func WeekdayMask(days ...time.Weekday) uint8 {
	var mask uint8
	for _, d := range days {
		mask |= 1 << uint(d)
	}
	return mask
}

func (w *Walker) WorksOn(day time.Weekday) bool {
	return w.Weekdays&(1<<uint(day)) != 0
}

func (w *Walker) ServesArea(code string) bool {
	return slices.Contains(w.AreaCodes, code)
}

// CoversWindow reports whether a visit window fits inside the walker's
// daily availability.
func (w *Walker) CoversWindow(tw TimeWindow) bool {
	return w.DayWindow.Contains(tw)
}

// WalkerRef is the minimal walker identity carried inside a proposal.
type WalkerRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
