// Package research runs customer queries through a DeerFlow research backend,
// either over its streaming HTTP API or by invoking it as a local process.
package research

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"enquirysync/config"
)

// Executor turns one query into a raw researched answer.
//
// Soft failures (the process printed no report, or could not be started) are
// returned as answer text with a nil error. A non-nil error means the task
// must not be written.
type Executor interface {
	Research(ctx context.Context, req Request) (string, error)
}

// Request is one research job.
type Request struct {
	Query   string
	Prompt  string
	Context map[string]string

	// OnLine, when set, receives every raw output line as it arrives.
	OnLine func(line string)
}

func (r Request) echo(line string) {
	if r.OnLine != nil {
		r.OnLine(line)
	}
}

// New builds the executor selected by the executor block's label.
func New(cfg *config.ExecutorConfig, logger hclog.Logger) (Executor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no executor configured")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	switch cfg.Kind {
	case config.ExecutorStream:
		return NewStreamExecutor(cfg, logger), nil
	case config.ExecutorProcess:
		return NewProcessExecutor(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown executor kind '%s'", cfg.Kind)
	}
}
