package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func testSlot(maxDogs int) *Slot {
	return &Slot{
		ID:      uuid.New(),
		MaxDogs: maxDogs,
		Status:  SlotOpen,
	}
}

func TestSlotJoinCapacity(t *testing.T) {
	s := testSlot(4)

	if err := s.Join(uuid.New(), 2); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if s.Status != SlotOpen || s.CurrentDogs != 2 {
		t.Errorf("after partial fill: status=%s dogs=%d", s.Status, s.CurrentDogs)
	}

	if err := s.Join(uuid.New(), 2); err != nil {
		t.Fatalf("second join: %v", err)
	}
	if s.Status != SlotFull || s.CurrentDogs != 4 {
		t.Errorf("at capacity: status=%s dogs=%d", s.Status, s.CurrentDogs)
	}

	err := s.Join(uuid.New(), 1)
	if !errors.Is(err, ErrSlotFull) {
		t.Errorf("join past capacity: got %v, want ErrSlotFull", err)
	}
	if s.CurrentDogs != 4 {
		t.Errorf("rejected join must not change dogs: %d", s.CurrentDogs)
	}
}

func TestSlotLeaveReopensFullSlot(t *testing.T) {
	s := testSlot(2)
	b1, b2 := uuid.New(), uuid.New()

	if err := s.Join(b1, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Join(b2, 1); err != nil {
		t.Fatal(err)
	}
	if s.Status != SlotFull {
		t.Fatalf("expected full slot, got %s", s.Status)
	}

	if err := s.Leave(b1, 1); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.Status != SlotOpen {
		t.Errorf("leave must reopen a full slot, got %s", s.Status)
	}
	if s.CurrentDogs != 1 {
		t.Errorf("dogs = %d, want 1", s.CurrentDogs)
	}
	if len(s.BookingIDs) != 1 || s.BookingIDs[0] != b2 {
		t.Errorf("remaining bookings = %v, want just %s", s.BookingIDs, b2)
	}
}

func TestSlotLeaveUnknownBooking(t *testing.T) {
	s := testSlot(2)
	if err := s.Join(uuid.New(), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Leave(uuid.New(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSlotLifecycle(t *testing.T) {
	s := testSlot(2)
	b := uuid.New()
	if err := s.Join(b, 1); err != nil {
		t.Fatal(err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("start from open: %v", err)
	}
	if s.Status != SlotInProgress {
		t.Fatalf("status = %s, want in_progress", s.Status)
	}

	// No membership changes once the walk started.
	if err := s.Join(uuid.New(), 1); !errors.Is(err, ErrSlotClosed) {
		t.Errorf("join while in progress: got %v, want ErrSlotClosed", err)
	}
	if err := s.Leave(b, 1); !errors.Is(err, ErrSlotClosed) {
		t.Errorf("leave while in progress: got %v, want ErrSlotClosed", err)
	}

	if err := s.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := s.Leave(b, 1); !errors.Is(err, ErrSlotClosed) {
		t.Errorf("leave after complete: got %v, want ErrSlotClosed", err)
	}
	if err := s.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start after complete: got %v, want ErrInvalidTransition", err)
	}
}

func TestSlotCompleteRequiresInProgress(t *testing.T) {
	s := testSlot(2)
	if err := s.Complete(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("complete from open: got %v, want ErrInvalidTransition", err)
	}
}

func TestSlotCancel(t *testing.T) {
	s := testSlot(2)
	if err := s.Join(uuid.New(), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	// Administrative cancel is allowed mid-walk.
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel in progress: %v", err)
	}
	if s.Status != SlotCancelled {
		t.Fatalf("status = %s, want cancelled", s.Status)
	}

	if err := s.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start from cancelled: got %v, want ErrInvalidTransition", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel twice: got %v, want ErrInvalidTransition", err)
	}
	if err := s.Join(uuid.New(), 1); !errors.Is(err, ErrSlotClosed) {
		t.Errorf("join after cancel: got %v, want ErrSlotClosed", err)
	}
}
