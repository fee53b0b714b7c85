package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRetainedCycles is how many cycles a memory bundle keeps before the
// oldest are evicted along with their attempts.
const MemoryRetainedCycles = 1000

// NewMemoryBundle creates a Bundle backed entirely by in-memory stores
func NewMemoryBundle() *Bundle {
	return NewBoundedMemoryBundle(MemoryRetainedCycles)
}

// NewBoundedMemoryBundle keeps at most maxCycles cycles; maxCycles <= 0 means
// no limit.
func NewBoundedMemoryBundle(maxCycles int) *Bundle {
	attempts := &MemoryAttemptStore{attempts: make(map[string]*Attempt)}
	return &Bundle{
		Cycles: &MemoryCycleStore{
			cycles:    make(map[string]*Cycle),
			maxCycles: maxCycles,
			onEvict:   attempts.deleteCycle,
		},
		Attempts: attempts,
	}
}

// =============================================================================
// MemoryCycleStore
// =============================================================================

type MemoryCycleStore struct {
	mu        sync.Mutex
	cycles    map[string]*Cycle
	order     []string
	maxCycles int
	onEvict   func(cycleID string)
}

func (s *MemoryCycleStore) StartCycle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cycles[id]; ok {
		return fmt.Errorf("cycle %s already exists", id)
	}
	s.cycles[id] = &Cycle{ID: id, Status: StatusRunning, StartedAt: time.Now().UTC()}
	s.order = append(s.order, id)

	for s.maxCycles > 0 && len(s.order) > s.maxCycles {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cycles, oldest)
		if s.onEvict != nil {
			s.onEvict(oldest)
		}
	}
	return nil
}

func (s *MemoryCycleStore) SetCycleSelection(id string, rows, selected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cycles[id]
	if !ok {
		return fmt.Errorf("cycle %s not found", id)
	}
	c.Rows = rows
	c.Selected = selected
	return nil
}

func (s *MemoryCycleStore) FinishCycle(id, status string, answered int, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cycles[id]
	if !ok {
		return fmt.Errorf("cycle %s not found", id)
	}
	now := time.Now().UTC()
	c.Status = status
	c.Answered = answered
	c.Error = errMsg
	c.FinishedAt = &now
	return nil
}

func (s *MemoryCycleStore) GetCycle(id string) (*Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cycles[id]
	if !ok {
		return nil, fmt.Errorf("cycle %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryCycleStore) ListCycles(limit, offset int) ([]Cycle, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.order)
	var out []Cycle
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.cycles[s.order[i]])
	}
	return out, total, nil
}

// =============================================================================
// MemoryAttemptStore
// =============================================================================

type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	seq      map[string]int
}

func (s *MemoryAttemptStore) StartAttempt(cycleID string, row int, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		s.seq = make(map[string]int)
	}
	id := generateID()
	s.attempts[id] = &Attempt{
		ID:        id,
		CycleID:   cycleID,
		Row:       row,
		Query:     query,
		Stage:     "research",
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.seq[id] = len(s.seq)
	return id, nil
}

func (s *MemoryAttemptStore) SetAttemptStage(id, stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return fmt.Errorf("attempt %s not found", id)
	}
	a.Stage = stage
	return nil
}

func (s *MemoryAttemptStore) FinishAttempt(id, status string, soft bool, answer string, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return fmt.Errorf("attempt %s not found", id)
	}
	now := time.Now().UTC()
	a.Status = status
	a.Soft = soft
	a.AnswerPreview = Preview(answer)
	a.Error = errMsg
	a.FinishedAt = &now
	return nil
}

func (s *MemoryAttemptStore) deleteCycle(cycleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.attempts {
		if a.CycleID == cycleID {
			delete(s.attempts, id)
			delete(s.seq, id)
		}
	}
}

func (s *MemoryAttemptStore) GetAttemptsByCycle(cycleID string) ([]Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Attempt
	for _, a := range s.attempts {
		if a.CycleID == cycleID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}
