package streamers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"enquirysync/store"
)

// StoringSyncHandler is a SyncHandler decorator that records cycles and
// attempts in the ledger, then delegates to an inner handler (e.g. CLI or
// WebSocket).
type StoringSyncHandler struct {
	inner  SyncHandler
	bundle *store.Bundle
	logger hclog.Logger

	mu       sync.Mutex
	attempts map[string]string // "cycleID:row" → attemptID
	answered map[string]int    // cycleID → rows written so far
}

// NewStoringSyncHandler wraps an existing SyncHandler with ledger persistence.
// inner may be nil.
func NewStoringSyncHandler(inner SyncHandler, bundle *store.Bundle, logger hclog.Logger) *StoringSyncHandler {
	if inner == nil {
		inner = NopSyncHandler{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &StoringSyncHandler{
		inner:    inner,
		bundle:   bundle,
		logger:   logger,
		attempts: make(map[string]string),
		answered: make(map[string]int),
	}
}

// check logs (not fails) on a ledger error
func (h *StoringSyncHandler) check(op string, err error) {
	if err != nil {
		h.logger.Warn("ledger write failed", "op", op, "error", err)
	}
}

func attemptKey(cycleID string, row int) string {
	return fmt.Sprintf("%s:%d", cycleID, row)
}

func (h *StoringSyncHandler) attemptID(cycleID string, row int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.attempts[attemptKey(cycleID, row)]
	return id, ok
}

func (h *StoringSyncHandler) forgetCycle(cycleID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	prefix := cycleID + ":"
	for k := range h.attempts {
		if strings.HasPrefix(k, prefix) {
			delete(h.attempts, k)
		}
	}
	n := h.answered[cycleID]
	delete(h.answered, cycleID)
	return n
}

func (h *StoringSyncHandler) CycleStarted(cycleID string) {
	h.check("start cycle", h.bundle.Cycles.StartCycle(cycleID))
	h.inner.CycleStarted(cycleID)
}

func (h *StoringSyncHandler) TasksSelected(cycleID string, rowCount int, taskCount int) {
	h.check("set selection", h.bundle.Cycles.SetCycleSelection(cycleID, rowCount, taskCount))
	h.inner.TasksSelected(cycleID, rowCount, taskCount)
}

func (h *StoringSyncHandler) CycleCompleted(cycleID string, answered int) {
	h.forgetCycle(cycleID)
	h.check("finish cycle", h.bundle.Cycles.FinishCycle(cycleID, store.StatusCompleted, answered, nil))
	h.inner.CycleCompleted(cycleID, answered)
}

func (h *StoringSyncHandler) CycleFailed(cycleID string, err error) {
	answered := h.forgetCycle(cycleID)
	msg := err.Error()
	h.check("finish cycle", h.bundle.Cycles.FinishCycle(cycleID, store.StatusFailed, answered, &msg))
	h.inner.CycleFailed(cycleID, err)
}

func (h *StoringSyncHandler) TaskStarted(cycleID string, row int, query string) {
	id, err := h.bundle.Attempts.StartAttempt(cycleID, row, query)
	h.check("start attempt", err)
	if err == nil {
		h.mu.Lock()
		h.attempts[attemptKey(cycleID, row)] = id
		h.mu.Unlock()
	}
	h.inner.TaskStarted(cycleID, row, query)
}

func (h *StoringSyncHandler) ResearchOutput(cycleID string, row int, line string) {
	h.inner.ResearchOutput(cycleID, row, line)
}

func (h *StoringSyncHandler) TaskResearched(cycleID string, row int, soft bool) {
	if id, ok := h.attemptID(cycleID, row); ok {
		h.check("set stage", h.bundle.Attempts.SetAttemptStage(id, "rewrite"))
	}
	h.inner.TaskResearched(cycleID, row, soft)
}

func (h *StoringSyncHandler) TaskAnswered(cycleID string, row int, answer Answer) {
	if id, ok := h.attemptID(cycleID, row); ok {
		h.check("set stage", h.bundle.Attempts.SetAttemptStage(id, "write"))
		h.check("finish attempt", h.bundle.Attempts.FinishAttempt(id, store.StatusAnswered, answer.Soft, answer.Text, nil))
	}
	h.mu.Lock()
	h.answered[cycleID]++
	h.mu.Unlock()
	h.inner.TaskAnswered(cycleID, row, answer)
}

func (h *StoringSyncHandler) TaskFailed(cycleID string, row int, stage string, err error) {
	if id, ok := h.attemptID(cycleID, row); ok {
		msg := err.Error()
		h.check("set stage", h.bundle.Attempts.SetAttemptStage(id, stage))
		h.check("finish attempt", h.bundle.Attempts.FinishAttempt(id, store.StatusFailed, false, "", &msg))
	}
	h.inner.TaskFailed(cycleID, row, stage, err)
}
