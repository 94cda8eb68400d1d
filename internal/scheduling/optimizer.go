package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/ports"
)

// Optimizer orchestrates one day's optimization as a traceable run.
// Preview performs only reads and records an immutable proposal
// snapshot; Apply replays a previewed proposal against live state with
// per-group atomicity.
type Optimizer struct {
	Bookings ports.BookingRepository
	Walkers  ports.WalkerRepository
	Slots    ports.SlotRepository
	Runs     ports.RunRepository
	Notifier ports.Notifier
	Geocoder ports.Geocoder // optional; resolves pickup addresses without coordinates
	Log      *logger.Logger
}

// Preview computes a grouping proposal for the target date and persists
// it as a finalized optimization run. The run completes even when some
// groups found no walker; only unexpected faults mark it FAILED.
func (o *Optimizer) Preview(ctx context.Context, date time.Time, params domain.RunParams) (*domain.OptimizationRun, error) {
	run := &domain.OptimizationRun{
		ID:        uuid.New(),
		Date:      date,
		Params:    params,
		Status:    domain.RunRunning,
		CreatedAt: time.Now().UTC(),
	}

	if err := o.Runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("preview: create run: %w", err)
	}

	proposal, analyzed, err := o.computeProposal(ctx, date, params)
	if err != nil {
		now := time.Now().UTC()
		run.Status = domain.RunFailed
		run.Error = err.Error()
		run.FinishedAt = &now
		o.finalize(ctx, run)
		return nil, fmt.Errorf("preview: %w", err)
	}

	grouped := 0
	savings := 0.0
	for _, g := range proposal.Groups {
		grouped += len(g.Bookings)
		for _, b := range g.Bookings {
			savings += GroupSavings(b.BasePrice, b.DogCount(), params.GroupDiscountRate)
		}
	}

	now := time.Now().UTC()
	run.Status = domain.RunCompleted
	run.BookingsAnalyzed = analyzed
	run.BookingsGrouped = grouped
	run.GroupsCreated = len(proposal.Groups)
	run.EstimatedSavings = savings
	run.Proposal = proposal
	run.FinishedAt = &now

	if err := o.Runs.FinalizeRun(ctx, run); err != nil {
		return nil, fmt.Errorf("preview: finalize run: %w", err)
	}

	o.Log.WithFields(map[string]any{
		"run_id":   run.ID,
		"date":     date.Format("2006-01-02"),
		"analyzed": analyzed,
		"grouped":  grouped,
		"groups":   len(proposal.Groups),
	}).Info("Optimization preview completed")

	return run, nil
}

// computeProposal is the read-only pipeline: load, geocode, filter,
// group, match.
func (o *Optimizer) computeProposal(ctx context.Context, date time.Time, params domain.RunParams) (*domain.Proposal, int, error) {
	bookings, err := o.Bookings.ListBookings(ctx, ports.BookingQuery{
		Date:          date,
		Statuses:      []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed},
		OnlyUngrouped: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	proposal := &domain.Proposal{}
	eligible := make([]*domain.Booking, 0, len(bookings))

	for _, b := range bookings {
		if !b.HasValidPickup() {
			o.resolvePickup(ctx, b)
		}

		if ok, reason := IsGroupEligible(b); !ok {
			proposal.Ungrouped = append(proposal.Ungrouped, domain.UngroupedBooking{BookingID: b.ID, Reason: reason})
			continue
		}
		if !b.HasValidPickup() {
			proposal.Ungrouped = append(proposal.Ungrouped, domain.UngroupedBooking{BookingID: b.ID, Reason: "missing coordinates"})
			continue
		}
		eligible = append(eligible, b)
	}

	result := BuildGroups(eligible, params)
	proposal.Ungrouped = append(proposal.Ungrouped, result.Ungrouped...)

	for i := range result.Groups {
		walker, err := MatchWalker(ctx, &result.Groups[i], date, o.Walkers, o.Slots)
		if err != nil {
			return nil, 0, err
		}
		result.Groups[i].Walker = walker
	}
	proposal.Groups = result.Groups

	return proposal, len(bookings), nil
}

// resolvePickup fills coordinates from the pickup address via the
// injected geocoder. Failure leaves the booking for the missing
// coordinates report.
func (o *Optimizer) resolvePickup(ctx context.Context, b *domain.Booking) {
	if o.Geocoder == nil || b.PickupAddress == "" {
		return
	}
	loc, err := o.Geocoder.Geocode(ctx, b.PickupAddress)
	if err != nil {
		o.Log.WithError(err).WithField("booking_id", b.ID).Warn("Geocoding pickup address failed")
		return
	}
	if loc.Valid() {
		b.Pickup = &loc
	}
}

// Apply replays a completed run's proposal. Each group with a matched
// walker is committed as one atomic unit; a failed group is recorded
// and never blocks the others. Groups without a walker are skipped.
func (o *Optimizer) Apply(ctx context.Context, runID uuid.UUID) (*domain.ApplyResult, error) {
	run, err := o.Runs.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("apply run %s: %w", runID, err)
	}
	if run.Status != domain.RunCompleted || run.Proposal == nil {
		return nil, fmt.Errorf("apply run %s in status %s: %w", runID, run.Status, domain.ErrRunNotApplicable)
	}

	result := &domain.ApplyResult{RunID: runID}

	for i := range run.Proposal.Groups {
		group := &run.Proposal.Groups[i]
		if group.Walker == nil {
			result.Skipped = append(result.Skipped, domain.GroupError{
				GroupIndex: i,
				Reason:     "no walker matched",
			})
			continue
		}

		applied, err := o.applyGroup(ctx, run, group)
		if err != nil {
			o.Log.WithError(err).WithFields(map[string]any{
				"run_id": runID,
				"group":  i,
			}).Warn("Group apply failed, continuing with remaining groups")
			result.Failed = append(result.Failed, domain.GroupError{GroupIndex: i, Reason: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, *applied)
	}

	o.Log.WithFields(map[string]any{
		"run_id":  runID,
		"applied": len(result.Applied),
		"skipped": len(result.Skipped),
		"failed":  len(result.Failed),
	}).Info("Optimization run applied")

	return result, nil
}

// applyGroup commits one group: slot create-or-reuse, booking updates
// and one notification per affected customer. The capacity re-check
// happens inside the repository's atomic ApplyGroup.
func (o *Optimizer) applyGroup(ctx context.Context, run *domain.OptimizationRun, group *domain.Group) (*domain.AppliedGroup, error) {
	slotID, err := o.existingGroupSlot(ctx, group)
	if err != nil {
		return nil, err
	}
	if slotID == uuid.Nil {
		slotID = uuid.New()
	}

	status := domain.SlotOpen
	if group.DogCount >= run.Params.MaxDogsPerGroup {
		status = domain.SlotFull
	}

	center := group.Center
	slot := &domain.Slot{
		ID:          slotID,
		WalkerID:    group.Walker.ID,
		Date:        run.Date,
		Window:      group.Window,
		CurrentDogs: group.DogCount,
		MaxDogs:     run.Params.MaxDogsPerGroup,
		Status:      status,
		IsGroup:     true,
		Center:      &center,
		RadiusKm:    group.RadiusKm,
		Score:       group.Score,
		Route:       group.Route,
		BookingIDs:  group.BookingIDs(),
	}

	updates := make([]domain.BookingUpdate, 0, len(group.Bookings))
	for _, b := range group.Bookings {
		updates = append(updates, domain.BookingUpdate{
			BookingID: b.ID,
			SlotID:    slotID,
			Status:    domain.BookingGrouped,
			NewPrice:  GroupPrice(b.BasePrice, b.DogCount(), run.Params.GroupDiscountRate),
			Dogs:      b.DogCount(),
		})
	}

	if err := o.Slots.ApplyGroup(ctx, slot, updates); err != nil {
		return nil, fmt.Errorf("commit group slot %s: %w", slotID, err)
	}

	// Notifications are dispatch requests only; a publish failure never
	// rolls back a committed group.
	for idx, b := range group.Bookings {
		ev := domain.BookingGroupedEvent{
			BookingID:  b.ID,
			CustomerID: b.Customer.ID,
			SlotID:     slotID,
			Date:       run.Date,
			Window:     group.Window,
			WalkerName: group.Walker.Name,
			NewPrice:   updates[idx].NewPrice,
		}
		if err := o.Notifier.PublishBookingGrouped(ctx, ev); err != nil {
			o.Log.WithError(err).WithField("booking_id", b.ID).Warn("Notification dispatch failed")
		}
	}

	return &domain.AppliedGroup{
		SlotID:     slotID,
		WalkerID:   group.Walker.ID,
		BookingIDs: group.BookingIDs(),
	}, nil
}

// existingGroupSlot detects a re-apply: when every member booking is
// already linked to the same slot, that slot is reused instead of
// creating a duplicate.
func (o *Optimizer) existingGroupSlot(ctx context.Context, group *domain.Group) (uuid.UUID, error) {
	var shared uuid.UUID
	for i, member := range group.Bookings {
		b, err := o.Bookings.GetBooking(ctx, member.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("load booking %s: %w", member.ID, err)
		}
		if b.SlotID == nil {
			return uuid.Nil, nil
		}
		if i == 0 {
			shared = *b.SlotID
			continue
		}
		if *b.SlotID != shared {
			return uuid.Nil, nil
		}
	}
	return shared, nil
}

func (o *Optimizer) finalize(ctx context.Context, run *domain.OptimizationRun) {
	if err := o.Runs.FinalizeRun(ctx, run); err != nil {
		o.Log.WithError(err).WithField("run_id", run.ID).Error("Failed to finalize optimization run")
	}
}
