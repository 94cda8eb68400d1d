package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			preference TEXT NOT NULL DEFAULT 'neutral',
			max_group_size INT NOT NULL DEFAULT 0,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION
		);`,

		`CREATE TABLE IF NOT EXISTS dogs (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			size TEXT NOT NULL DEFAULT 'medium',
			friendly_with_others BOOLEAN NOT NULL DEFAULT FALSE,
			group_approved BOOLEAN NOT NULL DEFAULT FALSE
		);`,

		`CREATE TABLE IF NOT EXISTS walkers (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			day_start_min INT NOT NULL,
			day_end_min INT NOT NULL,
			weekdays INT NOT NULL,
			max_dogs INT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS walker_areas (
			walker_id UUID NOT NULL REFERENCES walkers(id),
			area_code TEXT NOT NULL,
			PRIMARY KEY (walker_id, area_code)
		);`,

		`CREATE TABLE IF NOT EXISTS slots (
			id UUID PRIMARY KEY,
			walker_id UUID NOT NULL REFERENCES walkers(id),
			date DATE NOT NULL,
			start_min INT NOT NULL,
			end_min INT NOT NULL,
			current_dogs INT NOT NULL DEFAULT 0,
			max_dogs INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			is_group BOOLEAN NOT NULL DEFAULT FALSE,
			center_lat DOUBLE PRECISION,
			center_lng DOUBLE PRECISION,
			radius_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			score INT NOT NULL DEFAULT 0,
			route JSONB,
			CONSTRAINT slots_capacity CHECK (current_dogs <= max_dogs)
		);`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customers(id),
			date DATE NOT NULL,
			start_min INT NOT NULL,
			end_min INT NOT NULL,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			pickup_address TEXT NOT NULL DEFAULT '',
			area_code TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL DEFAULT 'single_walk',
			status TEXT NOT NULL DEFAULT 'pending',
			slot_id UUID REFERENCES slots(id),
			base_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			price DOUBLE PRECISION NOT NULL DEFAULT 0
		);`,

		`CREATE TABLE IF NOT EXISTS booking_dogs (
			booking_id UUID NOT NULL REFERENCES bookings(id),
			dog_id UUID NOT NULL REFERENCES dogs(id),
			PRIMARY KEY (booking_id, dog_id)
		);`,

		`CREATE TABLE IF NOT EXISTS optimization_runs (
			id UUID PRIMARY KEY,
			date DATE NOT NULL,
			params JSONB NOT NULL,
			status TEXT NOT NULL,
			bookings_analyzed INT NOT NULL DEFAULT 0,
			bookings_grouped INT NOT NULL DEFAULT 0,
			groups_created INT NOT NULL DEFAULT 0,
			estimated_savings DOUBLE PRECISION NOT NULL DEFAULT 0,
			proposal JSONB,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ
		);`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_date_status
			ON bookings(date, status);`,

		`CREATE INDEX IF NOT EXISTS idx_slots_walker_date
			ON slots(walker_id, date);`,

		`CREATE INDEX IF NOT EXISTS idx_runs_created_at
			ON optimization_runs(created_at DESC);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
