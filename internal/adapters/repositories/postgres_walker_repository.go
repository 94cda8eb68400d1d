package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

// PostgresWalkerRepository implements ports.WalkerRepository on Postgres.
type PostgresWalkerRepository struct {
	DB *sql.DB
}

var _ ports.WalkerRepository = (*PostgresWalkerRepository)(nil)

func (r *PostgresWalkerRepository) ListWalkers(ctx context.Context, q ports.WalkerQuery) ([]*domain.Walker, error) {
	if r.DB == nil {
		return nil, errors.New("list walkers: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT w.id, w.name, w.day_start_min, w.day_end_min, w.weekdays, w.max_dogs
		FROM walkers w
		WHERE (w.weekdays & (1 << $1)) <> 0
		  AND w.max_dogs >= $2
		  AND ($3 = '' OR EXISTS (
			SELECT 1 FROM walker_areas a
			WHERE a.walker_id = w.id AND a.area_code = $3
		  ))
		ORDER BY w.name, w.id`, int(q.Weekday), q.MinCapacity, q.AreaCode)
	if err != nil {
		return nil, fmt.Errorf("list walkers: query: %w", err)
	}
	defer rows.Close()

	var walkers []*domain.Walker
	index := make(map[uuid.UUID]*domain.Walker)
	for rows.Next() {
		var w domain.Walker
		if err := rows.Scan(&w.ID, &w.Name, &w.DayWindow.StartMin, &w.DayWindow.EndMin, &w.Weekdays, &w.MaxDogs); err != nil {
			return nil, fmt.Errorf("list walkers: scan row: %w", err)
		}
		walkers = append(walkers, &w)
		index[w.ID] = &w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list walkers: iterate rows: %w", err)
	}
	if len(walkers) == 0 {
		return nil, nil
	}

	ids := make([]string, len(walkers))
	for i, w := range walkers {
		ids[i] = w.ID.String()
	}

	areaRows, err := r.DB.QueryContext(ctx, `SELECT walker_id, area_code
		FROM walker_areas
		WHERE walker_id = ANY($1::uuid[])
		ORDER BY walker_id, area_code`, ids)
	if err != nil {
		return nil, fmt.Errorf("list walkers: query areas: %w", err)
	}
	defer areaRows.Close()

	for areaRows.Next() {
		var (
			walkerID uuid.UUID
			code     string
		)
		if err := areaRows.Scan(&walkerID, &code); err != nil {
			return nil, fmt.Errorf("list walkers: scan area row: %w", err)
		}
		if w, ok := index[walkerID]; ok {
			w.AreaCodes = append(w.AreaCodes, code)
		}
	}
	if err := areaRows.Err(); err != nil {
		return nil, fmt.Errorf("list walkers: iterate area rows: %w", err)
	}

	return walkers, nil
}
