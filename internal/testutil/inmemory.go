// Package testutil provides in-memory port implementations for
// deterministic tests without external infrastructure.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

// BookingStore is an in-memory ports.BookingRepository.
type BookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*domain.Booking
	order    []uuid.UUID
}

func NewBookingStore(bookings ...*domain.Booking) *BookingStore {
	s := &BookingStore{bookings: make(map[uuid.UUID]*domain.Booking)}
	for _, b := range bookings {
		s.Add(b)
	}
	return s
}

func (s *BookingStore) Add(b *domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.bookings[b.ID] = b
}

func (s *BookingStore) ListBookings(ctx context.Context, q ports.BookingQuery) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Booking
	for _, id := range s.order {
		b := s.bookings[id]
		if !b.Date.Equal(q.Date) {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, b.Status) {
			continue
		}
		if q.OnlyUngrouped && b.SlotID != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *BookingStore) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

func (s *BookingStore) UpdateBookingSlot(ctx context.Context, id uuid.UUID, slotID *uuid.UUID, status domain.BookingStatus, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	b.SlotID = slotID
	b.Status = status
	b.Price = price
	return nil
}

// WalkerStore is an in-memory ports.WalkerRepository returning walkers
// in insertion order.
type WalkerStore struct {
	walkers []*domain.Walker
}

func NewWalkerStore(walkers ...*domain.Walker) *WalkerStore {
	return &WalkerStore{walkers: walkers}
}

func (s *WalkerStore) ListWalkers(ctx context.Context, q ports.WalkerQuery) ([]*domain.Walker, error) {
	var out []*domain.Walker
	for _, w := range s.walkers {
		if !w.WorksOn(q.Weekday) {
			continue
		}
		if q.AreaCode != "" && !w.ServesArea(q.AreaCode) {
			continue
		}
		if w.MaxDogs < q.MinCapacity {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// SlotStore is an in-memory ports.SlotRepository. A linked BookingStore
// receives the booking side of ApplyGroup writes, mirroring the
// transactional coupling of the real repository.
type SlotStore struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]*domain.Slot
	order    []uuid.UUID
	Bookings *BookingStore
}

func NewSlotStore(bookings *BookingStore, slots ...*domain.Slot) *SlotStore {
	s := &SlotStore{slots: make(map[uuid.UUID]*domain.Slot), Bookings: bookings}
	for _, sl := range slots {
		s.slots[sl.ID] = sl
		s.order = append(s.order, sl.ID)
	}
	return s
}

func (s *SlotStore) ListSlots(ctx context.Context, q ports.SlotQuery) ([]*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Slot
	for _, id := range s.order {
		sl := s.slots[id]
		if !sl.Date.Equal(q.Date) {
			continue
		}
		if q.WalkerID != nil && sl.WalkerID != *q.WalkerID {
			continue
		}
		out = append(out, sl)
	}
	return out, nil
}

func (s *SlotStore) GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", id, domain.ErrNotFound)
	}
	return sl, nil
}

func (s *SlotStore) JoinSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", slotID, domain.ErrNotFound)
	}
	if err := sl.Join(bookingID, dogs); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *SlotStore) LeaveSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", slotID, domain.ErrNotFound)
	}
	if err := sl.Leave(bookingID, dogs); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *SlotStore) UpdateSlotStatus(ctx context.Context, slotID uuid.UUID, status domain.SlotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok {
		return fmt.Errorf("slot %s: %w", slotID, domain.ErrNotFound)
	}
	sl.Status = status
	return nil
}

func (s *SlotStore) ApplyGroup(ctx context.Context, slot *domain.Slot, updates []domain.BookingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.slots[slot.ID]
	if ok {
		added := 0
		for _, u := range updates {
			if !slices.Contains(existing.BookingIDs, u.BookingID) {
				added += u.Dogs
			}
		}
		if existing.CurrentDogs+added > existing.MaxDogs {
			return fmt.Errorf("apply group to slot %s: %w", slot.ID, domain.ErrCapacityExceeded)
		}
		existing.CurrentDogs += added
		for _, u := range updates {
			if !slices.Contains(existing.BookingIDs, u.BookingID) {
				existing.BookingIDs = append(existing.BookingIDs, u.BookingID)
			}
		}
		if existing.CurrentDogs >= existing.MaxDogs {
			existing.Status = domain.SlotFull
		}
	} else {
		cp := *slot
		s.slots[slot.ID] = &cp
		s.order = append(s.order, slot.ID)
	}

	for _, u := range updates {
		if err := s.Bookings.UpdateBookingSlot(ctx, u.BookingID, &u.SlotID, u.Status, u.NewPrice); err != nil {
			return err
		}
	}
	return nil
}

// RunStore is an in-memory ports.RunRepository. A run with a finish
// timestamp rejects further finalizes, mirroring the SQL guard.
type RunStore struct {
	mu    sync.Mutex
	runs  map[uuid.UUID]*domain.OptimizationRun
	order []uuid.UUID
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[uuid.UUID]*domain.OptimizationRun)}
}

func (s *RunStore) CreateRun(ctx context.Context, run *domain.OptimizationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	s.order = append(s.order, run.ID)
	return nil
}

func (s *RunStore) FinalizeRun(ctx context.Context, run *domain.OptimizationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.runs[run.ID]
	if !ok {
		return fmt.Errorf("run %s: %w", run.ID, domain.ErrNotFound)
	}
	if stored.FinishedAt != nil {
		return fmt.Errorf("run %s: %w", run.ID, domain.ErrRunFinalized)
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*domain.OptimizationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return run, nil
}

func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]*domain.OptimizationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.OptimizationRun
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}

// CaptureNotifier records published events instead of dispatching them.
type CaptureNotifier struct {
	mu      sync.Mutex
	Grouped []domain.BookingGroupedEvent
	Slots   []domain.SlotStatusChangedEvent
}

func (n *CaptureNotifier) PublishBookingGrouped(ctx context.Context, ev domain.BookingGroupedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Grouped = append(n.Grouped, ev)
	return nil
}

func (n *CaptureNotifier) PublishSlotStatusChanged(ctx context.Context, ev domain.SlotStatusChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Slots = append(n.Slots, ev)
	return nil
}

// StaticGeocoder resolves addresses from a fixed map.
type StaticGeocoder struct {
	Locations map[string]domain.Location
}

func (g *StaticGeocoder) Geocode(ctx context.Context, address string) (domain.Location, error) {
	loc, ok := g.Locations[address]
	if !ok {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
	}
	return loc, nil
}
