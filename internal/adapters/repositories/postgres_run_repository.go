package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

// PostgresRunRepository implements ports.RunRepository on Postgres. The
// proposal snapshot and run params are stored as JSONB.
type PostgresRunRepository struct {
	DB *sql.DB
}

var _ ports.RunRepository = (*PostgresRunRepository)(nil)

func (r *PostgresRunRepository) CreateRun(ctx context.Context, run *domain.OptimizationRun) error {
	if r.DB == nil {
		return errors.New("create run: DB is nil")
	}

	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("create run: marshal params: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `INSERT INTO optimization_runs
		(id, date, params, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Date, paramsJSON, string(run.Status), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("create run: insert: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) FinalizeRun(ctx context.Context, run *domain.OptimizationRun) error {
	if r.DB == nil {
		return errors.New("finalize run: DB is nil")
	}

	var proposalJSON any
	if run.Proposal != nil {
		b, err := json.Marshal(run.Proposal)
		if err != nil {
			return fmt.Errorf("finalize run: marshal proposal: %w", err)
		}
		proposalJSON = b
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE optimization_runs
		SET status = $2, bookings_analyzed = $3, bookings_grouped = $4,
		    groups_created = $5, estimated_savings = $6, proposal = $7,
		    error = $8, finished_at = $9
		WHERE id = $1 AND finished_at IS NULL`,
		run.ID, string(run.Status), run.BookingsAnalyzed, run.BookingsGrouped,
		run.GroupsCreated, run.EstimatedSavings, proposalJSON,
		run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("finalize run: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize run: rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM optimization_runs WHERE id = $1
		)`, run.ID).Scan(&exists); err != nil {
			return fmt.Errorf("finalize run: inspect run: %w", err)
		}
		if !exists {
			return fmt.Errorf("finalize run %s: %w", run.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("finalize run %s: %w", run.ID, domain.ErrRunFinalized)
	}

	return nil
}

func (r *PostgresRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*domain.OptimizationRun, error) {
	if r.DB == nil {
		return nil, errors.New("get run: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, `SELECT id, date, params, status,
		bookings_analyzed, bookings_grouped, groups_created, estimated_savings,
		proposal, error, created_at, finished_at
		FROM optimization_runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	return run, nil
}

func (r *PostgresRunRepository) ListRuns(ctx context.Context, limit int) ([]*domain.OptimizationRun, error) {
	if r.DB == nil {
		return nil, errors.New("list runs: DB is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT id, date, params, status,
		bookings_analyzed, bookings_grouped, groups_created, estimated_savings,
		proposal, error, created_at, finished_at
		FROM optimization_runs
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query: %w", err)
	}
	defer rows.Close()

	var runs []*domain.OptimizationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate rows: %w", err)
	}

	return runs, nil
}

func scanRun(row rowScanner) (*domain.OptimizationRun, error) {
	var (
		run          domain.OptimizationRun
		status       string
		paramsJSON   []byte
		proposalJSON []byte
		finishedAt   sql.NullTime
	)

	err := row.Scan(
		&run.ID, &run.Date, &paramsJSON, &status,
		&run.BookingsAnalyzed, &run.BookingsGrouped, &run.GroupsCreated, &run.EstimatedSavings,
		&proposalJSON, &run.Error, &run.CreatedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	if err := json.Unmarshal(paramsJSON, &run.Params); err != nil {
		return nil, fmt.Errorf("decode run params: %w", err)
	}
	if len(proposalJSON) > 0 {
		run.Proposal = &domain.Proposal{}
		if err := json.Unmarshal(proposalJSON, run.Proposal); err != nil {
			return nil, fmt.Errorf("decode run proposal: %w", err)
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}
