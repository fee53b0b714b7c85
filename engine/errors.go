package engine

import "fmt"

// Stage is the step of a task a cycle failed in
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageResearch Stage = "research"
	StageRewrite  Stage = "rewrite"
	StageWrite    Stage = "write"
)

// CycleError abandons the rest of a cycle. Row is the sheet row of the task
// being processed, or 0 when the failure is not tied to a row.
type CycleError struct {
	CycleID string
	Stage   Stage
	Row     int
	Err     error
}

func (e *CycleError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("cycle %s: %s row %d: %v", e.CycleID, e.Stage, e.Row, e.Err)
	}
	return fmt.Sprintf("cycle %s: %s: %v", e.CycleID, e.Stage, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}
