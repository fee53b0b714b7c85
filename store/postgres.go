package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS cycles (
    id          TEXT PRIMARY KEY,
    status      TEXT NOT NULL DEFAULT 'running',
    row_count   INTEGER NOT NULL DEFAULT 0,
    selected    INTEGER NOT NULL DEFAULT 0,
    answered    INTEGER NOT NULL DEFAULT 0,
    error       TEXT,
    started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles (started_at)`,
	`CREATE TABLE IF NOT EXISTS attempts (
    id             TEXT PRIMARY KEY,
    seq            BIGSERIAL,
    cycle_id       TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
    sheet_row      INTEGER NOT NULL,
    query          TEXT NOT NULL,
    stage          TEXT NOT NULL DEFAULT 'research',
    status         TEXT NOT NULL DEFAULT 'running',
    soft           BOOLEAN NOT NULL DEFAULT false,
    answer_preview TEXT NOT NULL DEFAULT '',
    error          TEXT,
    started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at    TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_cycle ON attempts (cycle_id, seq)`,
}

// NewPostgresBundle creates a Bundle backed by Postgres. The schema is
// created if it does not exist.
func NewPostgresBundle(ctx context.Context, dsn string) (*Bundle, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Bundle{
		Cycles:   &PostgresCycleStore{pool: pool},
		Attempts: &PostgresAttemptStore{pool: pool},
		closer: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

// pgTimeout bounds each ledger statement
const pgTimeout = 10 * time.Second

func pgContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), pgTimeout)
}

// =============================================================================
// PostgresCycleStore
// =============================================================================

type PostgresCycleStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresCycleStore) StartCycle(id string) error {
	ctx, cancel := pgContext()
	defer cancel()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cycles (id, status, started_at) VALUES ($1, $2, $3)`,
		id, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}
	return nil
}

func (s *PostgresCycleStore) SetCycleSelection(id string, rows, selected int) error {
	ctx, cancel := pgContext()
	defer cancel()
	_, err := s.pool.Exec(ctx,
		`UPDATE cycles SET row_count = $1, selected = $2 WHERE id = $3`,
		rows, selected, id,
	)
	return err
}

func (s *PostgresCycleStore) FinishCycle(id, status string, answered int, errMsg *string) error {
	ctx, cancel := pgContext()
	defer cancel()
	_, err := s.pool.Exec(ctx,
		`UPDATE cycles SET status = $1, answered = $2, error = $3, finished_at = $4 WHERE id = $5`,
		status, answered, errMsg, time.Now().UTC(), id,
	)
	return err
}

func (s *PostgresCycleStore) GetCycle(id string) (*Cycle, error) {
	ctx, cancel := pgContext()
	defer cancel()
	row := s.pool.QueryRow(ctx, `SELECT `+cycleColumns+` FROM cycles WHERE id = $1`, id)
	c, err := scanPgCycle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cycle %s not found", id)
	}
	return c, err
}

func (s *PostgresCycleStore) ListCycles(limit, offset int) ([]Cycle, int, error) {
	ctx, cancel := pgContext()
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cycles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+cycleColumns+` FROM cycles ORDER BY started_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		c, err := scanPgCycle(rows)
		if err != nil {
			return nil, 0, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, total, rows.Err()
}

func scanPgCycle(r pgx.Row) (*Cycle, error) {
	var c Cycle
	if err := r.Scan(&c.ID, &c.Status, &c.Rows, &c.Selected, &c.Answered, &c.Error, &c.StartedAt, &c.FinishedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// =============================================================================
// PostgresAttemptStore
// =============================================================================

type PostgresAttemptStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresAttemptStore) StartAttempt(cycleID string, row int, query string) (string, error) {
	ctx, cancel := pgContext()
	defer cancel()

	id := generateID()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, cycle_id, sheet_row, query, status, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, cycleID, row, query, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("start attempt: %w", err)
	}
	return id, nil
}

func (s *PostgresAttemptStore) SetAttemptStage(id, stage string) error {
	ctx, cancel := pgContext()
	defer cancel()
	_, err := s.pool.Exec(ctx, `UPDATE attempts SET stage = $1 WHERE id = $2`, stage, id)
	return err
}

func (s *PostgresAttemptStore) FinishAttempt(id, status string, soft bool, answer string, errMsg *string) error {
	ctx, cancel := pgContext()
	defer cancel()
	_, err := s.pool.Exec(ctx,
		`UPDATE attempts SET status = $1, soft = $2, answer_preview = $3, error = $4, finished_at = $5 WHERE id = $6`,
		status, soft, Preview(answer), errMsg, time.Now().UTC(), id,
	)
	return err
}

func (s *PostgresAttemptStore) GetAttemptsByCycle(cycleID string) ([]Attempt, error) {
	ctx, cancel := pgContext()
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, cycle_id, sheet_row, query, stage, status, soft, answer_preview, error, started_at, finished_at
		 FROM attempts WHERE cycle_id = $1 ORDER BY seq`,
		cycleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.CycleID, &a.Row, &a.Query, &a.Stage, &a.Status, &a.Soft, &a.AnswerPreview, &a.Error, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
