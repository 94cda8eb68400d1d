package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

type CustomerSeed struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Preference   string    `json:"preference"`
	MaxGroupSize int       `json:"max_group_size"`
	Lat          *float64  `json:"lat"`
	Lng          *float64  `json:"lng"`
}

type DogSeed struct {
	ID                 uuid.UUID `json:"id"`
	CustomerID         uuid.UUID `json:"customer_id"`
	Name               string    `json:"name"`
	Size               string    `json:"size"`
	FriendlyWithOthers bool      `json:"friendly_with_others"`
	GroupApproved      bool      `json:"group_approved"`
}

type WalkerSeed struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	DayStart  string    `json:"day_start"` // HH:MM
	DayEnd    string    `json:"day_end"`
	Weekdays  []string  `json:"weekdays"` // lowercase day names
	MaxDogs   int       `json:"max_dogs"`
	AreaCodes []string  `json:"area_codes"`
}

type BookingSeed struct {
	ID            uuid.UUID   `json:"id"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	Date          string      `json:"date"` // YYYY-MM-DD
	Start         string      `json:"start"`
	End           string      `json:"end"`
	Lat           *float64    `json:"lat"`
	Lng           *float64    `json:"lng"`
	PickupAddress string      `json:"pickup_address"`
	AreaCode      string      `json:"area_code"`
	Service       string      `json:"service"`
	DogIDs        []uuid.UUID `json:"dog_ids"`
	BasePrice     float64     `json:"base_price"`
}

type SeedFile struct {
	Customers []CustomerSeed `json:"customers"`
	Dogs      []DogSeed      `json:"dogs"`
	Walkers   []WalkerSeed   `json:"walkers"`
	Bookings  []BookingSeed  `json:"bookings"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Populate the database with demo data from a JSON file. Rows are
// upserted, so reseeding an existing database is safe.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedCustomers(tx, data.Customers); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := seedDogs(tx, data.Dogs); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := seedWalkers(tx, data.Walkers); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := seedBookings(tx, data.Bookings); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func seedCustomers(tx *sql.Tx, customers []CustomerSeed) error {
	stmt, err := tx.Prepare(`INSERT INTO customers (id, name, preference, max_group_size, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, preference = EXCLUDED.preference,
			max_group_size = EXCLUDED.max_group_size,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng`)
	if err != nil {
		return fmt.Errorf("customers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range customers {
		if c.ID == uuid.Nil || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("customers: item at index %d needs id and name", i)
		}
		pref := c.Preference
		if pref == "" {
			pref = string(domain.Neutral)
		}
		if _, err := stmt.Exec(c.ID, c.Name, pref, c.MaxGroupSize, c.Lat, c.Lng); err != nil {
			return fmt.Errorf("customers: insert %s: %w", c.ID, err)
		}
	}
	return nil
}

func seedDogs(tx *sql.Tx, dogs []DogSeed) error {
	stmt, err := tx.Prepare(`INSERT INTO dogs (id, customer_id, name, size, friendly_with_others, group_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id, name = EXCLUDED.name,
			size = EXCLUDED.size,
			friendly_with_others = EXCLUDED.friendly_with_others,
			group_approved = EXCLUDED.group_approved`)
	if err != nil {
		return fmt.Errorf("dogs: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range dogs {
		if d.ID == uuid.Nil || d.CustomerID == uuid.Nil {
			return fmt.Errorf("dogs: item at index %d needs id and customer_id", i)
		}
		size := d.Size
		if size == "" {
			size = string(domain.DogMedium)
		}
		if _, err := stmt.Exec(d.ID, d.CustomerID, d.Name, size, d.FriendlyWithOthers, d.GroupApproved); err != nil {
			return fmt.Errorf("dogs: insert %s: %w", d.ID, err)
		}
	}
	return nil
}

func seedWalkers(tx *sql.Tx, walkers []WalkerSeed) error {
	walkerStmt, err := tx.Prepare(`INSERT INTO walkers (id, name, day_start_min, day_end_min, weekdays, max_dogs)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, day_start_min = EXCLUDED.day_start_min,
			day_end_min = EXCLUDED.day_end_min, weekdays = EXCLUDED.weekdays,
			max_dogs = EXCLUDED.max_dogs`)
	if err != nil {
		return fmt.Errorf("walkers: prepare insert: %w", err)
	}
	defer walkerStmt.Close()

	areaStmt, err := tx.Prepare(`INSERT INTO walker_areas (walker_id, area_code)
		VALUES ($1, $2)
		ON CONFLICT (walker_id, area_code) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("walkers: prepare area insert: %w", err)
	}
	defer areaStmt.Close()

	for i, w := range walkers {
		if w.ID == uuid.Nil || strings.TrimSpace(w.Name) == "" {
			return fmt.Errorf("walkers: item at index %d needs id and name", i)
		}

		window, err := domain.ParseWindow(w.DayStart, w.DayEnd)
		if err != nil {
			return fmt.Errorf("walkers: %s day window: %w", w.ID, err)
		}

		var days []time.Weekday
		for _, name := range w.Weekdays {
			day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return fmt.Errorf("walkers: %s: unknown weekday %q", w.ID, name)
			}
			days = append(days, day)
		}
		mask := domain.WeekdayMask(days...)

		if _, err := walkerStmt.Exec(w.ID, w.Name, window.StartMin, window.EndMin, mask, w.MaxDogs); err != nil {
			return fmt.Errorf("walkers: insert %s: %w", w.ID, err)
		}
		for _, code := range w.AreaCodes {
			if _, err := areaStmt.Exec(w.ID, code); err != nil {
				return fmt.Errorf("walkers: insert area %s/%s: %w", w.ID, code, err)
			}
		}
	}
	return nil
}

func seedBookings(tx *sql.Tx, bookings []BookingSeed) error {
	bookingStmt, err := tx.Prepare(`INSERT INTO bookings
		(id, customer_id, date, start_min, end_min, lat, lng, pickup_address, area_code, service, status, base_price, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'confirmed', $11, $11)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id, date = EXCLUDED.date,
			start_min = EXCLUDED.start_min, end_min = EXCLUDED.end_min,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			pickup_address = EXCLUDED.pickup_address,
			area_code = EXCLUDED.area_code, service = EXCLUDED.service,
			base_price = EXCLUDED.base_price`)
	if err != nil {
		return fmt.Errorf("bookings: prepare insert: %w", err)
	}
	defer bookingStmt.Close()

	dogStmt, err := tx.Prepare(`INSERT INTO booking_dogs (booking_id, dog_id)
		VALUES ($1, $2)
		ON CONFLICT (booking_id, dog_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("bookings: prepare dog insert: %w", err)
	}
	defer dogStmt.Close()

	for i, b := range bookings {
		if b.ID == uuid.Nil || b.CustomerID == uuid.Nil {
			return fmt.Errorf("bookings: item at index %d needs id and customer_id", i)
		}
		if len(b.DogIDs) == 0 {
			return fmt.Errorf("bookings: %s needs at least one dog", b.ID)
		}

		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			return fmt.Errorf("bookings: %s: date must be YYYY-MM-DD: %w", b.ID, err)
		}
		window, err := domain.ParseWindow(b.Start, b.End)
		if err != nil {
			return fmt.Errorf("bookings: %s window: %w", b.ID, err)
		}

		service := b.Service
		if service == "" {
			service = string(domain.ServiceSingleWalk)
		}

		if _, err := bookingStmt.Exec(b.ID, b.CustomerID, date, window.StartMin, window.EndMin,
			b.Lat, b.Lng, b.PickupAddress, b.AreaCode, service, b.BasePrice); err != nil {
			return fmt.Errorf("bookings: insert %s: %w", b.ID, err)
		}
		for _, dogID := range b.DogIDs {
			if _, err := dogStmt.Exec(b.ID, dogID); err != nil {
				return fmt.Errorf("bookings: insert dog link %s/%s: %w", b.ID, dogID, err)
			}
		}
	}
	return nil
}
