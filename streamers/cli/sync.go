package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"enquirysync/streamers"
)

// SyncHandler implements streamers.SyncHandler for terminal output
type SyncHandler struct {
	mu  sync.Mutex
	out io.Writer

	// ShowOutput echoes the research backend's raw output lines
	ShowOutput bool
}

// NewSyncHandler creates a CLI sync handler writing to stdout
func NewSyncHandler(showOutput bool) *SyncHandler {
	return &SyncHandler{out: os.Stdout, ShowOutput: showOutput}
}

// NewSyncHandlerTo creates a CLI sync handler writing to w
func NewSyncHandlerTo(w io.Writer, showOutput bool) *SyncHandler {
	return &SyncHandler{out: w, ShowOutput: showOutput}
}

func (s *SyncHandler) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *SyncHandler) CycleStarted(cycleID string) {}

func (s *SyncHandler) TasksSelected(cycleID string, rowCount int, taskCount int) {
	if taskCount == 0 {
		return
	}
	s.printf("\n%s%s=== Cycle %s: %d of %d rows to answer ===%s\n", ColorBold, ColorCyan, shortID(cycleID), taskCount, rowCount, ColorReset)
}

func (s *SyncHandler) CycleCompleted(cycleID string, answered int) {
	if answered == 0 {
		return
	}
	s.printf("%s%s=== Cycle %s completed: %d answered ===%s\n", ColorBold, ColorGreen, shortID(cycleID), answered, ColorReset)
}

func (s *SyncHandler) CycleFailed(cycleID string, err error) {
	s.printf("%s%s[Cycle %s FAILED: %v]%s\n", ColorBold, ColorRed, shortID(cycleID), err, ColorReset)
}

func (s *SyncHandler) TaskStarted(cycleID string, row int, query string) {
	s.printf("\n%s--- Row %d ---%s\n", ColorBold, row, ColorReset)
	s.printf("%sProcessing: %s%s\n", ColorGray, query, ColorReset)
}

func (s *SyncHandler) ResearchOutput(cycleID string, row int, line string) {
	if !s.ShowOutput {
		return
	}
	s.printf("%s%s%s\n", ColorGray, line, ColorReset)
}

func (s *SyncHandler) TaskResearched(cycleID string, row int, soft bool) {
	if soft {
		s.printf("%s[Row %d: research degraded, writing fallback answer]%s\n", ColorOrange, row, ColorReset)
	}
}

func (s *SyncHandler) TaskAnswered(cycleID string, row int, answer streamers.Answer) {
	s.printf("%s%sWrote answer to %s%s\n", ColorBold, ColorGreen, answer.Target, ColorReset)
	if answer.Text != "" {
		s.printf("%s%s%s\n", ColorGray, truncate(answer.Text, 300), ColorReset)
	}
}

func (s *SyncHandler) TaskFailed(cycleID string, row int, stage string, err error) {
	s.printf("%s%s[Row %d FAILED during %s: %v]%s\n", ColorBold, ColorRed, row, stage, err, ColorReset)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
