package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/testutil"
)

type optimizerFixture struct {
	bookings *testutil.BookingStore
	walkers  *testutil.WalkerStore
	slots    *testutil.SlotStore
	runs     *testutil.RunStore
	notifier *testutil.CaptureNotifier
	opt      *Optimizer
}

func newFixture(t *testing.T, walkers []*domain.Walker, bookings ...*domain.Booking) *optimizerFixture {
	t.Helper()

	bs := testutil.NewBookingStore(bookings...)
	f := &optimizerFixture{
		bookings: bs,
		walkers:  testutil.NewWalkerStore(walkers...),
		slots:    testutil.NewSlotStore(bs),
		runs:     testutil.NewRunStore(),
		notifier: &testutil.CaptureNotifier{},
	}
	f.opt = &Optimizer{
		Bookings: f.bookings,
		Walkers:  f.walkers,
		Slots:    f.slots,
		Runs:     f.runs,
		Notifier: f.notifier,
		Log:      logger.Discard(),
	}
	return f
}

func weekdayWalker(name string) *domain.Walker {
	return testWalker(name, []string{"10115"},
		"08:00", "18:00",
		domain.WeekdayMask(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		6)
}

func TestPreviewRecordsCompletedRun(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")
	solo := newBooking(t, 52.520, 13.400, "09:00", "10:00", withPreference(domain.SoloOnly))

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1")}, b1, b2, solo)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != domain.RunCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.BookingsAnalyzed != 3 {
		t.Errorf("analyzed = %d, want 3", run.BookingsAnalyzed)
	}
	if run.BookingsGrouped != 2 {
		t.Errorf("grouped = %d, want 2", run.BookingsGrouped)
	}
	if run.GroupsCreated != 1 {
		t.Errorf("groups = %d, want 1", run.GroupsCreated)
	}
	if run.EstimatedSavings <= 0 {
		t.Errorf("savings = %v, want positive", run.EstimatedSavings)
	}

	if run.Proposal == nil || len(run.Proposal.Groups) != 1 {
		t.Fatal("proposal snapshot missing or incomplete")
	}
	g := run.Proposal.Groups[0]
	if g.Walker == nil || g.Walker.Name != "w1" {
		t.Errorf("group walker = %v, want w1", g.Walker)
	}

	if len(run.Proposal.Ungrouped) != 1 {
		t.Fatalf("ungrouped = %d, want 1", len(run.Proposal.Ungrouped))
	}
	if run.Proposal.Ungrouped[0].BookingID != solo.ID {
		t.Errorf("ungrouped booking should be the solo-only one")
	}

	// Preview performs no writes to schedule state.
	stored, err := f.bookings.GetBooking(context.Background(), b1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.SlotID != nil || stored.Status != domain.BookingConfirmed {
		t.Error("preview must not mutate bookings")
	}
}

func TestPreviewStampsFinishTimeOnce(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1")}, b1, b2)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.FinishedAt == nil {
		t.Fatal("completed run must carry a finish timestamp")
	}
	if run.FinishedAt.Before(run.CreatedAt) {
		t.Errorf("finished %v before created %v", run.FinishedAt, run.CreatedAt)
	}

	stored, err := f.runs.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.FinishedAt == nil {
		t.Fatal("persisted run lost its finish timestamp")
	}

	// A finished run is immutable: a late finalize must not overwrite it.
	stale := *stored
	stale.Status = domain.RunFailed
	if err := f.runs.FinalizeRun(context.Background(), &stale); !errors.Is(err, domain.ErrRunFinalized) {
		t.Fatalf("second finalize: got %v, want ErrRunFinalized", err)
	}
	stored, _ = f.runs.GetRun(context.Background(), run.ID)
	if stored.Status != domain.RunCompleted {
		t.Errorf("run status = %s, late finalize must not apply", stored.Status)
	}
}

func TestPreviewKeepsUnmatchedGroups(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")

	// No walkers at all: the group is retained, flagged unassignable.
	f := newFixture(t, nil, b1, b2)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run status = %s, want completed even without walkers", run.Status)
	}
	if len(run.Proposal.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(run.Proposal.Groups))
	}
	if run.Proposal.Groups[0].Walker != nil {
		t.Error("group should have no walker")
	}
}

func TestPreviewGeocodesMissingPickups(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 0, 0, "09:05", "10:05", withNoPickup())
	b2.PickupAddress = "Invalidenstr. 1, Berlin"

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1")}, b1, b2)
	f.opt.Geocoder = &testutil.StaticGeocoder{Locations: map[string]domain.Location{
		"Invalidenstr. 1, Berlin": {Lat: 52.5205, Lng: 13.4005},
	}}

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.BookingsGrouped != 2 {
		t.Errorf("grouped = %d, want 2 after geocoding", run.BookingsGrouped)
	}
}

func TestPreviewReportsMissingCoordinates(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 0, 0, "09:05", "10:05", withNoPickup())

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1")}, b1, b2)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, u := range run.Proposal.Ungrouped {
		if u.BookingID == b2.ID && u.Reason == "missing coordinates" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected missing-coordinates report, got %v", run.Proposal.Ungrouped)
	}
}

func TestApplyCommitsGroup(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1")}, b1, b2)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	result, err := f.opt.Apply(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if len(result.Applied) != 1 || len(result.Failed) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("apply result = %+v, want exactly one applied group", result)
	}

	slotID := result.Applied[0].SlotID
	slot, err := f.slots.GetSlot(context.Background(), slotID)
	if err != nil {
		t.Fatalf("slot not created: %v", err)
	}
	if slot.CurrentDogs != 2 {
		t.Errorf("slot current dogs = %d, want 2", slot.CurrentDogs)
	}
	if !slot.IsGroup {
		t.Error("slot should be a group slot")
	}

	// basePrice 18, one dog, 15% discount -> 15.30 each.
	for _, id := range []uuid.UUID{b1.ID, b2.ID} {
		b, err := f.bookings.GetBooking(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if b.Price != 15.30 {
			t.Errorf("booking %s price = %v, want 15.30", id, b.Price)
		}
		if b.SlotID == nil || *b.SlotID != slotID {
			t.Errorf("booking %s not linked to the group slot", id)
		}
		if b.Status != domain.BookingGrouped {
			t.Errorf("booking %s status = %s, want grouped", id, b.Status)
		}
	}

	if len(f.notifier.Grouped) != 2 {
		t.Errorf("notifications = %d, want one per customer", len(f.notifier.Grouped))
	}
}

func TestApplySkipsUnmatchedGroups(t *testing.T) {
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")

	f := newFixture(t, nil, b1, b2)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	result, err := f.opt.Apply(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Skipped) != 1 || len(result.Applied) != 0 {
		t.Fatalf("apply result = %+v, want one skipped group", result)
	}

	// Skipped means untouched: no partial application.
	b, _ := f.bookings.GetBooking(context.Background(), b1.ID)
	if b.SlotID != nil {
		t.Error("skipped group must leave bookings unassigned")
	}
}

func TestApplyIsolatesFailedGroups(t *testing.T) {
	// Group 1 is fresh and must commit. Group 2 re-applies onto a slot a
	// concurrent join has meanwhile filled, and must fail alone.
	b1 := newBooking(t, 52.520, 13.400, "09:00", "10:00")
	b2 := newBooking(t, 52.521, 13.401, "09:05", "10:05")
	b3 := newBooking(t, 52.540, 13.420, "12:00", "13:00")
	b4 := newBooking(t, 52.541, 13.421, "12:05", "13:05")

	f := newFixture(t, []*domain.Walker{weekdayWalker("w1"), weekdayWalker("w2")}, b1, b2, b3, b4)

	run, err := f.opt.Preview(context.Background(), testDate, defaultParams())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(run.Proposal.Groups) != 2 {
		t.Fatalf("fixture should yield 2 groups, got %d", len(run.Proposal.Groups))
	}

	// Simulate the race for whichever group holds b3: its members point
	// at a slot that is already at capacity with foreign bookings.
	fullWindow, _ := domain.ParseWindow("12:00", "13:05")
	fullSlot := &domain.Slot{
		ID:          uuid.New(),
		WalkerID:    uuid.New(),
		Date:        testDate,
		Window:      fullWindow,
		CurrentDogs: 4,
		MaxDogs:     4,
		Status:      domain.SlotFull,
		IsGroup:     true,
		BookingIDs:  []uuid.UUID{uuid.New(), uuid.New()},
	}
	f.slots = testutil.NewSlotStore(f.bookings, fullSlot)
	f.opt.Slots = f.slots
	for _, id := range []uuid.UUID{b3.ID, b4.ID} {
		b, _ := f.bookings.GetBooking(context.Background(), id)
		sid := fullSlot.ID
		b.SlotID = &sid
	}

	result, err := f.opt.Apply(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if len(result.Applied) != 1 {
		t.Errorf("applied = %d, want 1 (healthy group commits)", len(result.Applied))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("failed = %d, want 1 (capacity race recorded)", len(result.Failed))
	}

	// The full slot never exceeded its capacity.
	s, _ := f.slots.GetSlot(context.Background(), fullSlot.ID)
	if s.CurrentDogs > s.MaxDogs {
		t.Errorf("slot overfilled: %d/%d", s.CurrentDogs, s.MaxDogs)
	}
}

func TestApplyRequiresCompletedRun(t *testing.T) {
	f := newFixture(t, nil)

	running := &domain.OptimizationRun{
		ID:        uuid.New(),
		Date:      testDate,
		Status:    domain.RunRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.runs.CreateRun(context.Background(), running); err != nil {
		t.Fatal(err)
	}

	_, err := f.opt.Apply(context.Background(), running.ID)
	if !errors.Is(err, domain.ErrRunNotApplicable) {
		t.Errorf("expected ErrRunNotApplicable, got %v", err)
	}
}
