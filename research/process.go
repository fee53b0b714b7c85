package research

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"enquirysync/config"
)

// ProcessExecutor runs the research script as a child process and extracts
// the report printed after the marker.
type ProcessExecutor struct {
	runner string
	args   []string
	script string
	dir    string
	marker string
	logger hclog.Logger
}

func NewProcessExecutor(cfg *config.ExecutorConfig, logger hclog.Logger) *ProcessExecutor {
	c := *cfg
	c.Defaults()

	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ProcessExecutor{
		runner: c.Runner,
		args:   c.Args,
		script: c.Script,
		dir:    c.Dir,
		marker: c.Marker,
		logger: logger,
	}
}

// Command returns the argv used for a query.
func (p *ProcessExecutor) Command(query string) []string {
	argv := []string{p.runner}
	argv = append(argv, p.args...)
	return append(argv, p.script, query)
}

func (p *ProcessExecutor) Research(ctx context.Context, req Request) (string, error) {
	argv := p.Command(req.Query)

	output, err := p.run(ctx, argv, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		invocation := &ProcessInvocationError{Command: argv, Err: err}
		p.logger.Error("research process failed", "command", argv[0], "error", err)
		return invocation.Answer(), nil
	}

	if i := strings.Index(output, p.marker); i >= 0 {
		return strings.TrimSpace(output[i+len(p.marker):]), nil
	}

	missing := &MarkerNotFoundError{Marker: p.marker, Output: strings.TrimSpace(output)}
	p.logger.Warn("research report missing", "error", missing)
	return missing.Answer(), nil
}

// run executes argv with stdout and stderr merged into one pipe, echoing each
// line as it arrives. A non-zero exit status is not an error.
func (p *ProcessExecutor) run(ctx context.Context, argv []string, req Request) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	defer r.Close()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.dir
	cmd.Stdout = w
	cmd.Stderr = w
	killProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		w.Close()
		return "", err
	}
	// the child holds its own copy of the write end
	w.Close()

	// a descendant that left the process group could still hold the pipe
	stop := context.AfterFunc(ctx, func() { r.Close() })
	defer stop()

	var output strings.Builder
	reader := bufio.NewReader(r)
	var readErr error
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			output.WriteString(line)
			req.echo(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}

	waitErr := cmd.Wait()
	if readErr != nil {
		return "", readErr
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return "", waitErr
	}
	if exitErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger.Debug("research process exited non-zero", "code", exitErr.ExitCode())
	}
	return output.String(), nil
}
