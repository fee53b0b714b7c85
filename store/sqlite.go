package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id TEXT PRIMARY KEY,
    status TEXT DEFAULT 'running',
    row_count INTEGER DEFAULT 0,
    selected INTEGER DEFAULT 0,
    answered INTEGER DEFAULT 0,
    error TEXT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at);

CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    cycle_id TEXT NOT NULL REFERENCES cycles(id),
    sheet_row INTEGER NOT NULL,
    query TEXT NOT NULL,
    stage TEXT NOT NULL DEFAULT 'research',
    status TEXT DEFAULT 'running',
    soft INTEGER DEFAULT 0,
    answer_preview TEXT,
    error TEXT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_attempts_cycle ON attempts(cycle_id);
`

// NewSQLiteBundle creates a Bundle backed by SQLite at the given path
func NewSQLiteBundle(dbPath string) (*Bundle, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Bundle{
		Cycles:   &SQLiteCycleStore{db: db},
		Attempts: &SQLiteAttemptStore{db: db},
		closer:   db.Close,
	}, nil
}

// =============================================================================
// SQLiteCycleStore
// =============================================================================

type SQLiteCycleStore struct {
	db *sql.DB
}

func (s *SQLiteCycleStore) StartCycle(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO cycles (id, status, started_at) VALUES (?, ?, ?)`,
		id, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}
	return nil
}

func (s *SQLiteCycleStore) SetCycleSelection(id string, rows, selected int) error {
	_, err := s.db.Exec(
		`UPDATE cycles SET row_count = ?, selected = ? WHERE id = ?`,
		rows, selected, id,
	)
	return err
}

func (s *SQLiteCycleStore) FinishCycle(id, status string, answered int, errMsg *string) error {
	_, err := s.db.Exec(
		`UPDATE cycles SET status = ?, answered = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, answered, errMsg, time.Now().UTC(), id,
	)
	return err
}

const cycleColumns = `id, status, row_count, selected, answered, error, started_at, finished_at`

func (s *SQLiteCycleStore) GetCycle(id string) (*Cycle, error) {
	row := s.db.QueryRow(`SELECT `+cycleColumns+` FROM cycles WHERE id = ?`, id)
	c, err := scanCycle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cycle %s not found", id)
	}
	return c, err
}

func (s *SQLiteCycleStore) ListCycles(limit, offset int) ([]Cycle, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cycles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(
		`SELECT `+cycleColumns+` FROM cycles ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, 0, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(r rowScanner) (*Cycle, error) {
	var c Cycle
	var errMsg sql.NullString
	var finishedAt sql.NullTime
	if err := r.Scan(&c.ID, &c.Status, &c.Rows, &c.Selected, &c.Answered, &errMsg, &c.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		c.Error = &errMsg.String
	}
	if finishedAt.Valid {
		c.FinishedAt = &finishedAt.Time
	}
	return &c, nil
}

// =============================================================================
// SQLiteAttemptStore
// =============================================================================

type SQLiteAttemptStore struct {
	db *sql.DB
}

func (s *SQLiteAttemptStore) StartAttempt(cycleID string, row int, query string) (string, error) {
	id := generateID()
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, seq, cycle_id, sheet_row, query, status, started_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM attempts), ?, ?, ?, ?, ?)`,
		id, cycleID, row, query, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("start attempt: %w", err)
	}
	return id, nil
}

func (s *SQLiteAttemptStore) SetAttemptStage(id, stage string) error {
	_, err := s.db.Exec(`UPDATE attempts SET stage = ? WHERE id = ?`, stage, id)
	return err
}

func (s *SQLiteAttemptStore) FinishAttempt(id, status string, soft bool, answer string, errMsg *string) error {
	softInt := 0
	if soft {
		softInt = 1
	}
	_, err := s.db.Exec(
		`UPDATE attempts SET status = ?, soft = ?, answer_preview = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, softInt, Preview(answer), errMsg, time.Now().UTC(), id,
	)
	return err
}

func (s *SQLiteAttemptStore) GetAttemptsByCycle(cycleID string) ([]Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, cycle_id, sheet_row, query, stage, status, soft, answer_preview, error, started_at, finished_at
		 FROM attempts WHERE cycle_id = ? ORDER BY seq`,
		cycleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var soft int
		var preview, errMsg sql.NullString
		var finishedAt sql.NullTime

		if err := rows.Scan(&a.ID, &a.CycleID, &a.Row, &a.Query, &a.Stage, &a.Status, &soft, &preview, &errMsg, &a.StartedAt, &finishedAt); err != nil {
			return nil, err
		}
		a.Soft = soft != 0
		a.AnswerPreview = preview.String
		if errMsg.Valid {
			a.Error = &errMsg.String
		}
		if finishedAt.Valid {
			a.FinishedAt = &finishedAt.Time
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
