package wsbridge

import (
	"github.com/hashicorp/go-hclog"

	"enquirysync/streamers"
)

// Sync event types
const (
	EventCycleStarted   = "cycle_started"
	EventTasksSelected  = "tasks_selected"
	EventCycleCompleted = "cycle_completed"
	EventCycleFailed    = "cycle_failed"
	EventTaskStarted    = "task_started"
	EventResearchOutput = "research_output"
	EventTaskResearched = "task_researched"
	EventTaskAnswered   = "task_answered"
	EventTaskFailed     = "task_failed"
)

// WSSyncHandler implements streamers.SyncHandler by sending events over WebSocket to commander.
type WSSyncHandler struct {
	client *Client
	logger hclog.Logger

	// Output lines are only forwarded when set
	forwardOutput bool
}

var _ streamers.SyncHandler = (*WSSyncHandler)(nil)

// NewWSSyncHandler creates a new WebSocket-backed sync handler.
func NewWSSyncHandler(client *Client, forwardOutput bool) *WSSyncHandler {
	return &WSSyncHandler{client: client, logger: client.logger, forwardOutput: forwardOutput}
}

func (h *WSSyncHandler) sendEvent(cycleID, eventType string, row int, data any) {
	env, err := NewEvent(TypeSyncEvent, &SyncEventPayload{
		CycleID:   cycleID,
		EventType: eventType,
		Row:       row,
		Data:      data,
	})
	if err != nil {
		h.logger.Warn("marshal sync event", "error", err)
		return
	}
	if err := h.client.SendEvent(env); err != nil {
		h.logger.Debug("send sync event", "error", err)
	}
}

func (h *WSSyncHandler) CycleStarted(cycleID string) {
	h.sendEvent(cycleID, EventCycleStarted, 0, nil)
}

func (h *WSSyncHandler) TasksSelected(cycleID string, rowCount int, taskCount int) {
	h.sendEvent(cycleID, EventTasksSelected, 0, map[string]int{"rows": rowCount, "tasks": taskCount})
}

func (h *WSSyncHandler) CycleCompleted(cycleID string, answered int) {
	h.sendEvent(cycleID, EventCycleCompleted, 0, map[string]int{"answered": answered})
}

func (h *WSSyncHandler) CycleFailed(cycleID string, err error) {
	h.sendEvent(cycleID, EventCycleFailed, 0, map[string]string{"error": err.Error()})
}

func (h *WSSyncHandler) TaskStarted(cycleID string, row int, query string) {
	h.sendEvent(cycleID, EventTaskStarted, row, map[string]string{"query": query})
}

func (h *WSSyncHandler) ResearchOutput(cycleID string, row int, line string) {
	if !h.forwardOutput {
		return
	}
	h.sendEvent(cycleID, EventResearchOutput, row, map[string]string{"line": line})
}

func (h *WSSyncHandler) TaskResearched(cycleID string, row int, soft bool) {
	h.sendEvent(cycleID, EventTaskResearched, row, map[string]bool{"soft": soft})
}

func (h *WSSyncHandler) TaskAnswered(cycleID string, row int, answer streamers.Answer) {
	h.sendEvent(cycleID, EventTaskAnswered, row, answer)
}

func (h *WSSyncHandler) TaskFailed(cycleID string, row int, stage string, err error) {
	h.sendEvent(cycleID, EventTaskFailed, row, map[string]string{"stage": stage, "error": err.Error()})
}
