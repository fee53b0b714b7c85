package store

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Cycle and attempt statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAnswered  = "answered"
)

// previewRunes caps the answer text kept per attempt
const previewRunes = 280

// Bundle holds the stores of the attempt ledger. The ledger is history only;
// which rows need answering is decided from the sheet alone.
type Bundle struct {
	Cycles   CycleStore
	Attempts AttemptStore
	closer   func() error
}

// Close cleans up the bundle resources
func (b *Bundle) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// CycleStore tracks sync cycles
type CycleStore interface {
	StartCycle(id string) error
	SetCycleSelection(id string, rows, selected int) error
	FinishCycle(id, status string, answered int, errMsg *string) error
	GetCycle(id string) (*Cycle, error)
	// ListCycles returns cycles newest first along with the total count
	ListCycles(limit, offset int) ([]Cycle, int, error)
}

// Cycle is one pass over the sheet
type Cycle struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Rows       int        `json:"rows"`
	Selected   int        `json:"selected"`
	Answered   int        `json:"answered"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// AttemptStore tracks the processing of single rows
type AttemptStore interface {
	StartAttempt(cycleID string, row int, query string) (id string, err error)
	SetAttemptStage(id, stage string) error
	FinishAttempt(id, status string, soft bool, answer string, errMsg *string) error
	GetAttemptsByCycle(cycleID string) ([]Attempt, error)
}

// Attempt is one row taken through research, rewrite and write
type Attempt struct {
	ID            string     `json:"id"`
	CycleID       string     `json:"cycleId"`
	Row           int        `json:"row"`
	Query         string     `json:"query"`
	Stage         string     `json:"stage"`
	Status        string     `json:"status"`
	Soft          bool       `json:"soft"`
	AnswerPreview string     `json:"answerPreview,omitempty"`
	Error         *string    `json:"error,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

// Preview shortens an answer for storage
func Preview(answer string) string {
	if utf8.RuneCountInString(answer) <= previewRunes {
		return answer
	}
	runes := []rune(answer)
	return string(runes[:previewRunes]) + "…"
}

func generateID() string {
	return uuid.NewString()
}
