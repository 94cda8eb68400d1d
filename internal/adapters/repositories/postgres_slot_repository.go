package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/platform/obs"
	"walk-scheduler/internal/ports"
)

// PostgresSlotRepository implements ports.SlotRepository on Postgres.
//
// Capacity admission is a single conditional UPDATE, so the check and the
// increment cannot interleave with a concurrent join on the same slot.
// Group applies run in one transaction holding a row lock on the slot.
type PostgresSlotRepository struct {
	DB *sql.DB
}

var _ ports.SlotRepository = (*PostgresSlotRepository)(nil)

const slotColumns = `
	s.id, s.walker_id, s.date, s.start_min, s.end_min,
	s.current_dogs, s.max_dogs, s.status, s.is_group,
	s.center_lat, s.center_lng, s.radius_km, s.score, s.route`

func (r *PostgresSlotRepository) ListSlots(ctx context.Context, q ports.SlotQuery) ([]*domain.Slot, error) {
	if r.DB == nil {
		return nil, errors.New("list slots: DB is nil")
	}

	query := `SELECT` + slotColumns + ` FROM slots s WHERE s.date = $1`
	args := []any{q.Date}
	if q.WalkerID != nil {
		query += ` AND s.walker_id = $2`
		args = append(args, *q.WalkerID)
	}
	query += ` ORDER BY s.start_min, s.id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: query: %w", err)
	}
	defer rows.Close()

	var slots []*domain.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: iterate rows: %w", err)
	}

	for _, s := range slots {
		if err := r.loadBookingIDs(ctx, r.DB, s); err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
	}

	return slots, nil
}

func (r *PostgresSlotRepository) GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	if r.DB == nil {
		return nil, errors.New("get slot: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, `SELECT`+slotColumns+` FROM slots s WHERE s.id = $1`, id)
	s, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get slot %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if err := r.loadBookingIDs(ctx, r.DB, s); err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return s, nil
}

func (r *PostgresSlotRepository) JoinSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error) {
	if r.DB == nil {
		return nil, errors.New("join slot: DB is nil")
	}
	if dogs <= 0 {
		return nil, fmt.Errorf("join slot %s: dog count must be positive", slotID)
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE slots
		SET current_dogs = current_dogs + $2,
		    status = CASE WHEN current_dogs + $2 >= max_dogs THEN 'full' ELSE 'open' END
		WHERE id = $1
		  AND status IN ('open', 'full')
		  AND current_dogs + $2 <= max_dogs`, slotID, dogs)
	if err != nil {
		return nil, fmt.Errorf("join slot: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("join slot: rows affected: %w", err)
	}
	if n == 0 {
		return nil, r.classifyJoinFailure(ctx, slotID, dogs)
	}

	slot, err := r.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	// The caller links the booking afterward; reflect it in the snapshot.
	slot.BookingIDs = append(slot.BookingIDs, bookingID)
	return slot, nil
}

// classifyJoinFailure turns a zero-row conditional update into the error
// the caller can act on.
func (r *PostgresSlotRepository) classifyJoinFailure(ctx context.Context, slotID uuid.UUID, dogs int) error {
	var (
		status               string
		currentDogs, maxDogs int
	)
	err := r.DB.QueryRowContext(ctx, `SELECT status, current_dogs, max_dogs FROM slots WHERE id = $1`, slotID).
		Scan(&status, &currentDogs, &maxDogs)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("join slot %s: %w", slotID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("join slot: inspect slot: %w", err)
	}

	st := domain.SlotStatus(status)
	if st != domain.SlotOpen && st != domain.SlotFull {
		return fmt.Errorf("join slot %s in status %s: %w", slotID, st, domain.ErrSlotClosed)
	}
	return fmt.Errorf("join slot %s: %d+%d dogs exceeds max %d: %w",
		slotID, currentDogs, dogs, maxDogs, domain.ErrSlotFull)
}

func (r *PostgresSlotRepository) LeaveSlot(ctx context.Context, slotID, bookingID uuid.UUID, dogs int) (*domain.Slot, error) {
	if r.DB == nil {
		return nil, errors.New("leave slot: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("leave slot: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var member bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings WHERE id = $1 AND slot_id = $2
	)`, bookingID, slotID).Scan(&member)
	if err != nil {
		return nil, fmt.Errorf("leave slot: check membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("leave slot %s: booking %s: %w", slotID, bookingID, domain.ErrNotFound)
	}

	res, err := tx.ExecContext(ctx, `UPDATE slots
		SET current_dogs = GREATEST(current_dogs - $2, 0), status = 'open'
		WHERE id = $1 AND status IN ('open', 'full')`, slotID, dogs)
	if err != nil {
		return nil, fmt.Errorf("leave slot: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("leave slot: rows affected: %w", err)
	}
	if n == 0 {
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT status FROM slots WHERE id = $1`, slotID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("leave slot %s: %w", slotID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("leave slot: inspect slot: %w", err)
		}
		return nil, fmt.Errorf("leave slot %s in status %s: %w", slotID, status, domain.ErrSlotClosed)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("leave slot: commit tx: %w", err)
	}

	return r.GetSlot(ctx, slotID)
}

func (r *PostgresSlotRepository) UpdateSlotStatus(ctx context.Context, slotID uuid.UUID, status domain.SlotStatus) error {
	if r.DB == nil {
		return errors.New("update slot status: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE slots SET status = $2 WHERE id = $1`, slotID, string(status))
	if err != nil {
		return fmt.Errorf("update slot status: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot status: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update slot status %s: %w", slotID, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresSlotRepository) ApplyGroup(ctx context.Context, slot *domain.Slot, updates []domain.BookingUpdate) (err error) {
	defer obs.Time(ctx, "slots.applyGroup")(&err)

	if r.DB == nil {
		return errors.New("apply group: DB is nil")
	}

	routeJSON, err := json.Marshal(slot.Route)
	if err != nil {
		return fmt.Errorf("apply group: marshal route: %w", err)
	}
	var centerLat, centerLng any
	if slot.Center != nil {
		centerLat, centerLng = slot.Center.Lat, slot.Center.Lng
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply group: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		exists               bool
		currentDogs, maxDogs int
		status               string
	)
	err = tx.QueryRowContext(ctx, `SELECT current_dogs, max_dogs, status
		FROM slots WHERE id = $1 FOR UPDATE`, slot.ID).
		Scan(&currentDogs, &maxDogs, &status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return fmt.Errorf("apply group: lock slot: %w", err)
	default:
		exists = true
	}

	if exists {
		st := domain.SlotStatus(status)
		if st != domain.SlotOpen && st != domain.SlotFull {
			return fmt.Errorf("apply group: slot %s in status %s: %w", slot.ID, st, domain.ErrSlotClosed)
		}

		// Only bookings not already linked to this slot add dogs.
		attached := make(map[uuid.UUID]bool)
		rows, err := tx.QueryContext(ctx, `SELECT id FROM bookings WHERE slot_id = $1`, slot.ID)
		if err != nil {
			return fmt.Errorf("apply group: list attached bookings: %w", err)
		}
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("apply group: scan attached booking: %w", err)
			}
			attached[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("apply group: iterate attached bookings: %w", err)
		}
		rows.Close()

		added := 0
		for _, u := range updates {
			if !attached[u.BookingID] {
				added += u.Dogs
			}
		}
		if currentDogs+added > maxDogs {
			return fmt.Errorf("apply group: slot %s: %d+%d dogs exceeds max %d: %w",
				slot.ID, currentDogs, added, maxDogs, domain.ErrCapacityExceeded)
		}

		newDogs := currentDogs + added
		newStatus := domain.SlotOpen
		if newDogs >= maxDogs {
			newStatus = domain.SlotFull
		}
		_, err = tx.ExecContext(ctx, `UPDATE slots
			SET current_dogs = $2, status = $3, is_group = TRUE,
			    center_lat = $4, center_lng = $5, radius_km = $6, score = $7, route = $8
			WHERE id = $1`,
			slot.ID, newDogs, string(newStatus), centerLat, centerLng, slot.RadiusKm, slot.Score, routeJSON)
		if err != nil {
			return fmt.Errorf("apply group: update slot: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO slots
			(id, walker_id, date, start_min, end_min, current_dogs, max_dogs, status, is_group,
			 center_lat, center_lng, radius_km, score, route)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			slot.ID, slot.WalkerID, slot.Date, slot.Window.StartMin, slot.Window.EndMin,
			slot.CurrentDogs, slot.MaxDogs, string(slot.Status), slot.IsGroup,
			centerLat, centerLng, slot.RadiusKm, slot.Score, routeJSON)
		if err != nil {
			return fmt.Errorf("apply group: insert slot: %w", err)
		}
	}

	for _, u := range updates {
		res, err := tx.ExecContext(ctx, `UPDATE bookings
			SET slot_id = $2, status = $3, price = $4
			WHERE id = $1`, u.BookingID, u.SlotID, string(u.Status), u.NewPrice)
		if err != nil {
			return fmt.Errorf("apply group: update booking %s: %w", u.BookingID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply group: rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("apply group: booking %s: %w", u.BookingID, domain.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply group: commit tx: %w", err)
	}

	return nil
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		s                    domain.Slot
		status               string
		centerLat, centerLng sql.NullFloat64
		routeJSON            []byte
	)

	err := row.Scan(
		&s.ID, &s.WalkerID, &s.Date, &s.Window.StartMin, &s.Window.EndMin,
		&s.CurrentDogs, &s.MaxDogs, &status, &s.IsGroup,
		&centerLat, &centerLng, &s.RadiusKm, &s.Score, &routeJSON,
	)
	if err != nil {
		return nil, err
	}

	s.Status = domain.SlotStatus(status)
	if centerLat.Valid && centerLng.Valid {
		s.Center = &domain.Location{Lat: centerLat.Float64, Lng: centerLng.Float64}
	}
	if len(routeJSON) > 0 {
		if err := json.Unmarshal(routeJSON, &s.Route); err != nil {
			return nil, fmt.Errorf("decode route: %w", err)
		}
	}

	return &s, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *PostgresSlotRepository) loadBookingIDs(ctx context.Context, q querier, s *domain.Slot) error {
	rows, err := q.QueryContext(ctx, `SELECT id FROM bookings WHERE slot_id = $1 ORDER BY start_min, id`, s.ID)
	if err != nil {
		return fmt.Errorf("load slot bookings: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("load slot bookings: scan row: %w", err)
		}
		s.BookingIDs = append(s.BookingIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load slot bookings: iterate rows: %w", err)
	}

	return nil
}
