package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeWindow is a half-open [Start,End) interval within one calendar day,
// expressed in minutes since midnight.
type TimeWindow struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

func (w TimeWindow) Valid() bool {
	return w.StartMin >= 0 && w.EndMin <= 24*60 && w.StartMin < w.EndMin
}

// Overlaps uses inclusive-exclusive interval semantics: windows that only
// touch at a boundary do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.StartMin < other.EndMin && other.StartMin < w.EndMin
}

// GapMinutes returns the separation between the closest boundaries of the
// two windows, or 0 when they overlap.
func (w TimeWindow) GapMinutes(other TimeWindow) int {
	if w.Overlaps(other) {
		return 0
	}
	if w.EndMin <= other.StartMin {
		return other.StartMin - w.EndMin
	}
	return w.StartMin - other.EndMin
}

// Contains reports whether the other window lies entirely within w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return w.StartMin <= other.StartMin && other.EndMin <= w.EndMin
}

// Merge returns the smallest window covering both w and other.
func (w TimeWindow) Merge(other TimeWindow) TimeWindow {
	out := w
	if other.StartMin < out.StartMin {
		out.StartMin = other.StartMin
	}
	if other.EndMin > out.EndMin {
		out.EndMin = other.EndMin
	}
	return out
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", formatClock(w.StartMin), formatClock(w.EndMin))
}

func formatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: hours: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: minutes: %w", s, err)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// ParseWindow converts "HH:MM" start and end strings to a TimeWindow.
func ParseWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parse window: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parse window: %w", err)
	}

	w := TimeWindow{StartMin: s, EndMin: e}
	if !w.Valid() {
		return TimeWindow{}, fmt.Errorf("parse window: %s must start before it ends", w)
	}
	return w, nil
}
