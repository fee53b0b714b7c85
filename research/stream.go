package research

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"enquirysync/config"
)

const (
	dataPrefix = "data: "

	// maxErrorBody caps how much of a failed response is kept
	maxErrorBody = 64 << 10
)

// StreamExecutor posts the query to DeerFlow's chat stream endpoint and
// concatenates the content fragments of the reply.
type StreamExecutor struct {
	url    string
	cfg    config.ExecutorConfig
	client *http.Client
	logger hclog.Logger
}

type streamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mcpSettings struct {
	Role             string   `json:"role"`
	ContextualGoals  []string `json:"contextual_goals"`
	PreferredSources []string `json:"preferred_sources"`
	Tone             string   `json:"tone"`
	Tools            []string `json:"tools"`
	ResponseFormat   string   `json:"response_format"`
}

type streamPayload struct {
	Messages                      []streamMessage `json:"messages"`
	ThreadID                      string          `json:"thread_id"`
	MaxPlanIterations             int             `json:"max_plan_iterations"`
	MaxStepNum                    int             `json:"max_step_num"`
	AutoAcceptedPlan              bool            `json:"auto_accepted_plan"`
	InterruptFeedback             string          `json:"interrupt_feedback"`
	MCPSettings                   mcpSettings     `json:"mcp_settings"`
	EnableBackgroundInvestigation bool            `json:"enable_background_investigation"`
	Debug                         bool            `json:"debug"`
}

type fragment struct {
	Content string `json:"content"`
}

func NewStreamExecutor(cfg *config.ExecutorConfig, logger hclog.Logger) *StreamExecutor {
	c := *cfg
	if cfg.MCPSettings != nil {
		mcp := *cfg.MCPSettings
		c.MCPSettings = &mcp
	}
	c.Defaults()

	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &StreamExecutor{
		url:    c.URL,
		cfg:    c,
		client: http.DefaultClient,
		logger: logger,
	}
}

// WithHTTPClient replaces the client used for the research call.
func (s *StreamExecutor) WithHTTPClient(client *http.Client) *StreamExecutor {
	s.client = client
	return s
}

func (s *StreamExecutor) payload(query string) streamPayload {
	mcp := s.cfg.MCPSettings
	return streamPayload{
		Messages:          []streamMessage{{Role: "user", Content: query}},
		ThreadID:          s.cfg.ThreadID,
		MaxPlanIterations: s.cfg.MaxPlanIterations,
		MaxStepNum:        s.cfg.MaxStepNum,
		AutoAcceptedPlan:  *s.cfg.AutoAcceptedPlan,
		InterruptFeedback: s.cfg.InterruptFeedback,
		MCPSettings: mcpSettings{
			Role:             mcp.Role,
			ContextualGoals:  mcp.ContextualGoals,
			PreferredSources: mcp.PreferredSources,
			Tone:             mcp.Tone,
			Tools:            mcp.Tools,
			ResponseFormat:   mcp.ResponseFormat,
		},
		EnableBackgroundInvestigation: *s.cfg.EnableBackgroundInvestigation,
		Debug:                         s.cfg.Debug,
	}
}

func (s *StreamExecutor) Research(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(s.payload(req.Query))
	if err != nil {
		return "", fmt.Errorf("encode research payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build research request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("research request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	var answer strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			req.echo(line)
			if content, err := parseFragment(line); err != nil {
				s.logger.Debug("skipping stream line", "error", err)
			} else {
				answer.WriteString(content)
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read research stream: %w", readErr)
		}
	}

	return strings.TrimSpace(answer.String()), nil
}

// parseFragment returns the content carried by a "data: " line. Other lines
// carry no content.
func parseFragment(line string) (string, error) {
	raw, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return "", nil
	}
	var f fragment
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return "", &MalformedFragmentError{Line: line, Err: err}
	}
	return f.Content, nil
}
