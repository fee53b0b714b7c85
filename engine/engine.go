// Package engine polls the enquiry sheet and answers every unanswered row:
// research, rewrite, then write back, one row at a time.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"enquirysync/config"
	"enquirysync/research"
	"enquirysync/rewrite"
	"enquirysync/sheets"
	"enquirysync/streamers"
)

// Rewriter polishes a researched answer. *rewrite.Transformer implements it.
type Rewriter interface {
	Transform(ctx context.Context, query, answer, prompt string) (*rewrite.Result, error)
}

// Deps are the external services the engine talks to
type Deps struct {
	Sheets   sheets.Client
	Executor research.Executor
	Rewriter Rewriter

	// Optional
	Handler streamers.SyncHandler
	Logger  hclog.Logger
}

type Engine struct {
	source   *sheets.Source
	writer   *sheets.Writer
	schema   Schema
	executor research.Executor
	rewriter Rewriter
	handler  streamers.SyncHandler
	interval time.Duration
	logger   hclog.Logger
}

// New wires an engine for one sheet. sync may be nil for the default interval.
func New(sheet *config.SheetConfig, sync *config.SyncConfig, deps Deps) (*Engine, error) {
	if sheet == nil {
		return nil, fmt.Errorf("no sheet configured")
	}
	if deps.Sheets == nil || deps.Executor == nil || deps.Rewriter == nil {
		return nil, fmt.Errorf("sheets client, executor and rewriter are required")
	}

	schema, err := SchemaFor(sheet.Schema)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	handler := deps.Handler
	if handler == nil {
		handler = streamers.NopSyncHandler{}
	}

	if sync == nil {
		sync = &config.SyncConfig{}
		sync.Defaults()
	}

	return &Engine{
		source:   sheets.NewSource(deps.Sheets, sheet.ReadRange(), logger.Named("sheets")),
		writer:   sheets.NewWriter(deps.Sheets, sheet.SheetName),
		schema:   schema,
		executor: deps.Executor,
		rewriter: deps.Rewriter,
		handler:  handler,
		interval: sync.IntervalDuration(),
		logger:   logger,
	}, nil
}

// Interval returns the pause between cycles.
func (e *Engine) Interval() time.Duration {
	return e.interval
}
