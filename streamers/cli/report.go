package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"enquirysync/research"
)

// ReportPrinter shows progress for a single research run and renders the
// finished report as markdown.
type ReportPrinter struct {
	out        io.Writer
	spinner    *spinner
	renderer   *glamour.TermRenderer
	showOutput bool
	mu         sync.Mutex
}

// NewReportPrinter creates a printer writing to stdout. With showOutput the
// raw executor lines are echoed instead of a spinner.
func NewReportPrinter(showOutput bool) *ReportPrinter {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	return &ReportPrinter{
		out:        os.Stdout,
		spinner:    newSpinner(os.Stdout),
		renderer:   renderer,
		showOutput: showOutput,
	}
}

func (p *ReportPrinter) Start(query string) {
	fmt.Fprintf(p.out, "%s%sResearching:%s %s\n\n", ColorBold, ColorOrange, ColorReset, query)
	if !p.showOutput {
		p.spinner.Start("Waiting for report...")
	}
}

// Line is passed as research.Request.OnLine
func (p *ReportPrinter) Line(line string) {
	if !p.showOutput {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s%s%s\n", ColorGray, line, ColorReset)
}

func (p *ReportPrinter) Error(err error) {
	p.spinner.Stop()
	fmt.Fprintf(os.Stderr, "%sError:%s %v\n", ColorRed, ColorReset, err)
}

func (p *ReportPrinter) Finish(report string) {
	p.spinner.Stop()

	if research.IsSoftFailure(report) {
		fmt.Fprintf(p.out, "%s%s%s\n", ColorRed, report, ColorReset)
		return
	}

	rendered := report
	if p.renderer != nil {
		if out, err := p.renderer.Render(report); err == nil {
			rendered = out
		}
	}

	// Glamour adds leading/trailing newlines - trim them
	rendered = strings.TrimSpace(rendered)
	fmt.Fprintf(p.out, "\n%s•%s%s\n\n", ColorGray, ColorReset, rendered)
}

// spinner handles the loading animation
type spinner struct {
	out     io.Writer
	frames  []string
	stop    chan struct{}
	stopped chan struct{}
	mu      sync.Mutex
	running bool
}

func newSpinner(out io.Writer) *spinner {
	return &spinner{
		out:     out,
		frames:  []string{"◐", "◓", "◑", "◒"},
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *spinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		i := 0
		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K") // Clear line
				return
			default:
				fmt.Fprintf(s.out, "\r%s%s%s %s", ColorGray, s.frames[i%len(s.frames)], ColorReset, message)
				i++
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	<-s.stopped
}
