package streamers

// SyncHandler receives the lifecycle events of the sheet sync engine.
// Different implementations can print to a terminal, persist to the ledger,
// or forward over a websocket.
//
// Rows are 1-based sheet row numbers.
type SyncHandler interface {
	// Cycle lifecycle
	CycleStarted(cycleID string)
	TasksSelected(cycleID string, rowCount int, taskCount int)
	CycleCompleted(cycleID string, answered int)
	CycleFailed(cycleID string, err error)

	// Task lifecycle
	TaskStarted(cycleID string, row int, query string)
	ResearchOutput(cycleID string, row int, line string)
	TaskResearched(cycleID string, row int, soft bool)
	TaskAnswered(cycleID string, row int, answer Answer)
	TaskFailed(cycleID string, row int, stage string, err error)
}

// Answer describes one answer written back to the sheet
type Answer struct {
	Target string  `json:"target"`
	Text   string  `json:"text"`
	Soft   bool    `json:"soft"`
	Model  string  `json:"model,omitempty"`
	Cost   float64 `json:"cost,omitempty"`
}

// NopSyncHandler ignores every event
type NopSyncHandler struct{}

func (NopSyncHandler) CycleStarted(string) {}
func (NopSyncHandler) TasksSelected(string, int, int) {}
func (NopSyncHandler) CycleCompleted(string, int) {}
func (NopSyncHandler) CycleFailed(string, error) {}
func (NopSyncHandler) TaskStarted(string, int, string) {}
func (NopSyncHandler) ResearchOutput(string, int, string) {}
func (NopSyncHandler) TaskResearched(string, int, bool) {}
func (NopSyncHandler) TaskAnswered(string, int, Answer) {}
func (NopSyncHandler) TaskFailed(string, int, string, error) {}

// MultiSyncHandler fans every event out to several handlers in order
type MultiSyncHandler []SyncHandler

func (m MultiSyncHandler) CycleStarted(cycleID string) {
	for _, h := range m {
		h.CycleStarted(cycleID)
	}
}

func (m MultiSyncHandler) TasksSelected(cycleID string, rowCount int, taskCount int) {
	for _, h := range m {
		h.TasksSelected(cycleID, rowCount, taskCount)
	}
}

func (m MultiSyncHandler) CycleCompleted(cycleID string, answered int) {
	for _, h := range m {
		h.CycleCompleted(cycleID, answered)
	}
}

func (m MultiSyncHandler) CycleFailed(cycleID string, err error) {
	for _, h := range m {
		h.CycleFailed(cycleID, err)
	}
}

func (m MultiSyncHandler) TaskStarted(cycleID string, row int, query string) {
	for _, h := range m {
		h.TaskStarted(cycleID, row, query)
	}
}

func (m MultiSyncHandler) ResearchOutput(cycleID string, row int, line string) {
	for _, h := range m {
		h.ResearchOutput(cycleID, row, line)
	}
}

func (m MultiSyncHandler) TaskResearched(cycleID string, row int, soft bool) {
	for _, h := range m {
		h.TaskResearched(cycleID, row, soft)
	}
}

func (m MultiSyncHandler) TaskAnswered(cycleID string, row int, answer Answer) {
	for _, h := range m {
		h.TaskAnswered(cycleID, row, answer)
	}
}

func (m MultiSyncHandler) TaskFailed(cycleID string, row int, stage string, err error) {
	for _, h := range m {
		h.TaskFailed(cycleID, row, stage, err)
	}
}
