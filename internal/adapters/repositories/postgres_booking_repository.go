package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

// PostgresBookingRepository implements ports.BookingRepository on Postgres.
type PostgresBookingRepository struct {
	DB *sql.DB
}

var _ ports.BookingRepository = (*PostgresBookingRepository)(nil)

const bookingColumns = `
	b.id, b.date, b.start_min, b.end_min, b.lat, b.lng,
	b.pickup_address, b.area_code, b.service, b.status, b.slot_id,
	b.base_price, b.price,
	c.id, c.name, c.preference, c.max_group_size, c.lat, c.lng`

func (r *PostgresBookingRepository) ListBookings(ctx context.Context, q ports.BookingQuery) ([]*domain.Booking, error) {
	if r.DB == nil {
		return nil, errors.New("list bookings: DB is nil")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.date = $1`)
	args := []any{q.Date}

	if len(q.Statuses) > 0 {
		placeholders := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			args = append(args, string(s))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		sb.WriteString(" AND b.status IN (" + strings.Join(placeholders, ", ") + ")")
	}
	if q.OnlyUngrouped {
		sb.WriteString(" AND b.slot_id IS NULL")
	}
	sb.WriteString(" ORDER BY b.start_min, b.id")

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: query: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: iterate rows: %w", err)
	}

	if err := r.attachDogs(ctx, bookings); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, nil
}

func (r *PostgresBookingRepository) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if r.DB == nil {
		return nil, errors.New("get booking: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, `SELECT`+bookingColumns+`
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`, id)

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if err := r.attachDogs(ctx, []*domain.Booking{b}); err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return b, nil
}

func (r *PostgresBookingRepository) UpdateBookingSlot(ctx context.Context, id uuid.UUID, slotID *uuid.UUID, status domain.BookingStatus, price float64) error {
	if r.DB == nil {
		return errors.New("update booking slot: DB is nil")
	}

	var slotArg any
	if slotID != nil {
		slotArg = *slotID
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE bookings
		SET slot_id = $2, status = $3, price = $4
		WHERE id = $1`, id, slotArg, string(status), price)
	if err != nil {
		return fmt.Errorf("update booking slot: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking slot: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update booking slot %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                domain.Booking
		lat, lng         sql.NullFloat64
		custLat, custLng sql.NullFloat64
		slotID           uuid.NullUUID
		service, status  string
		preference       string
	)

	err := row.Scan(
		&b.ID, &b.Date, &b.Window.StartMin, &b.Window.EndMin, &lat, &lng,
		&b.PickupAddress, &b.AreaCode, &service, &status, &slotID,
		&b.BasePrice, &b.Price,
		&b.Customer.ID, &b.Customer.Name, &preference, &b.Customer.MaxGroupSize, &custLat, &custLng,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		b.Pickup = &domain.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	if custLat.Valid && custLng.Valid {
		b.Customer.Location = &domain.Location{Lat: custLat.Float64, Lng: custLng.Float64}
	}
	if slotID.Valid {
		id := slotID.UUID
		b.SlotID = &id
	}
	b.Service = domain.ServiceType(service)
	b.Status = domain.BookingStatus(status)
	b.Customer.Preference = domain.GroupPreference(preference)

	return &b, nil
}

// attachDogs loads the dogs for every booking in one query.
func (r *PostgresBookingRepository) attachDogs(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]*domain.Booking, len(bookings))
	placeholders := make([]string, len(bookings))
	args := make([]any, len(bookings))
	for i, b := range bookings {
		index[b.ID] = b
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = b.ID
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT bd.booking_id, d.id, d.customer_id, d.name, d.size, d.friendly_with_others, d.group_approved
		FROM booking_dogs bd
		JOIN dogs d ON d.id = bd.dog_id
		WHERE bd.booking_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY d.name, d.id`, args...)
	if err != nil {
		return fmt.Errorf("load dogs: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookingID uuid.UUID
			dog       domain.Dog
			size      string
		)
		if err := rows.Scan(&bookingID, &dog.ID, &dog.CustomerID, &dog.Name, &size, &dog.FriendlyWithOthers, &dog.GroupApproved); err != nil {
			return fmt.Errorf("load dogs: scan row: %w", err)
		}
		dog.Size = domain.DogSize(size)
		b, ok := index[bookingID]
		if !ok {
			continue
		}
		b.Dogs = append(b.Dogs, dog)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load dogs: iterate rows: %w", err)
	}

	return nil
}
