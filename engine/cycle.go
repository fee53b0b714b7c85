package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"enquirysync/research"
	"enquirysync/sheets"
	"enquirysync/streamers"
)

// CycleReport summarizes one pass over the sheet
type CycleReport struct {
	ID       string
	Rows     int
	Selected int
	Answered int
	Soft     int
	// Rows skipped after a non-success research response
	Failed int
}

// RunCycle reads the sheet once and processes every selected task in row
// order. A *research.TransportError fails only its own task, which stays
// unanswered for the next cycle. Any other hard failure abandons the
// remaining tasks and is returned as a *CycleError; answers already written
// stay written.
func (e *Engine) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{ID: uuid.NewString()}
	log := e.logger.With("cycle", report.ID)
	e.handler.CycleStarted(report.ID)

	table, err := e.source.Fetch(ctx)
	if err != nil {
		return report, e.fail(report.ID, StageFetch, 0, err)
	}
	report.Rows = len(table.Rows)

	tasks := Select(table, e.schema)
	report.Selected = len(tasks)
	e.handler.TasksSelected(report.ID, report.Rows, report.Selected)

	if len(tasks) > 0 {
		if _, ok := table.ColumnIndex(e.schema.AnswerColumn); !ok {
			return report, e.fail(report.ID, StageFetch, 0,
				fmt.Errorf("column %q not found in header", e.schema.AnswerColumn))
		}
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, e.fail(report.ID, StageResearch, task.SheetRow, err)
		}

		log.Info("processing", "row", task.SheetRow, "query", task.Query)
		soft, stage, err := e.process(ctx, report.ID, table, task)
		if err != nil {
			e.handler.TaskFailed(report.ID, task.SheetRow, string(stage), err)

			var terr *research.TransportError
			if stage == StageResearch && errors.As(err, &terr) {
				log.Warn("research failed, row left unanswered", "row", task.SheetRow, "status", terr.StatusCode)
				report.Failed++
				continue
			}
			return report, e.fail(report.ID, stage, task.SheetRow, err)
		}
		report.Answered++
		if soft {
			report.Soft++
		}
	}

	e.handler.CycleCompleted(report.ID, report.Answered)
	return report, nil
}

// process runs one task through research, rewrite and write. On failure it
// returns the stage that failed.
func (e *Engine) process(ctx context.Context, cycleID string, table *sheets.Table, task Task) (bool, Stage, error) {
	row := task.SheetRow
	e.handler.TaskStarted(cycleID, row, task.Query)

	raw, err := e.executor.Research(ctx, research.Request{
		Query:   task.Query,
		Prompt:  task.Prompt,
		Context: task.Context,
		OnLine: func(line string) {
			e.handler.ResearchOutput(cycleID, row, line)
		},
	})
	if err != nil {
		return false, StageResearch, err
	}

	soft := research.IsSoftFailure(raw)
	if soft {
		e.logger.Warn("research degraded, writing fallback", "cycle", cycleID, "row", row)
	}
	e.handler.TaskResearched(cycleID, row, soft)

	result, err := e.rewriter.Transform(ctx, task.Query, raw, task.Prompt)
	if err != nil {
		return soft, StageRewrite, err
	}

	target, err := e.writer.Write(ctx, table.Header, e.schema.AnswerColumn, row, result.Text)
	if err != nil {
		return soft, StageWrite, err
	}

	e.logger.Info("wrote answer", "cycle", cycleID, "range", target)
	e.handler.TaskAnswered(cycleID, row, streamers.Answer{
		Target: target,
		Text:   result.Text,
		Soft:   soft,
		Model:  result.Model,
		Cost:   result.Cost,
	})
	return soft, "", nil
}

func (e *Engine) fail(cycleID string, stage Stage, row int, err error) error {
	cerr := &CycleError{CycleID: cycleID, Stage: stage, Row: row, Err: err}
	e.handler.CycleFailed(cycleID, cerr)
	return cerr
}
