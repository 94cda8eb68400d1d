package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotFull is returned when a join would push CurrentDogs past MaxDogs.
	ErrSlotFull = errors.New("slot is at capacity")

	// ErrSlotClosed is returned for join/leave attempts once a slot is
	// in progress, completed or cancelled.
	ErrSlotClosed = errors.New("slot no longer accepts changes")

	// ErrInvalidTransition is returned for illegal slot status changes.
	ErrInvalidTransition = errors.New("invalid slot transition")

	// ErrCapacityExceeded is returned when an apply-time re-check finds a
	// group no longer fits its slot.
	ErrCapacityExceeded = errors.New("group no longer fits slot capacity")

	// ErrRunFinalized is returned when finalizing an optimization run twice.
	ErrRunFinalized = errors.New("optimization run already finalized")

	// ErrRunNotApplicable is returned when apply is requested for a run
	// that did not complete its preview computation.
	ErrRunNotApplicable = errors.New("optimization run has no applicable proposal")
)
