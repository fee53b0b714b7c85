package config

import "fmt"

// Executor kinds, used as the executor block label
const (
	ExecutorStream  = "stream"
	ExecutorProcess = "process"
)

// DefaultMarker separates the research backend's log output from its final report
const DefaultMarker = "reporter response:"

// ExecutorConfig selects and configures the research backend.
//
//	executor "stream"  { url = "http://localhost:8000/api/chat/stream" }
//	executor "process" { runner = "uv"  script = "/opt/deer-flow/main.py" }
type ExecutorConfig struct {
	Kind string `hcl:"kind,label"`

	// stream
	URL                           string       `hcl:"url,optional"`
	ThreadID                      string       `hcl:"thread_id,optional"`
	MaxPlanIterations             int          `hcl:"max_plan_iterations,optional"`
	MaxStepNum                    int          `hcl:"max_step_num,optional"`
	AutoAcceptedPlan              *bool        `hcl:"auto_accepted_plan,optional"`
	InterruptFeedback             string       `hcl:"interrupt_feedback,optional"`
	EnableBackgroundInvestigation *bool        `hcl:"enable_background_investigation,optional"`
	Debug                         bool         `hcl:"debug,optional"`
	MCPSettings                   *MCPSettings `hcl:"mcp_settings,block"`

	// process: runs [runner, args..., script, query]
	Runner string   `hcl:"runner,optional"`
	Script string   `hcl:"script,optional"`
	Args   []string `hcl:"args,optional"`
	Dir    string   `hcl:"dir,optional"`
	Marker string   `hcl:"marker,optional"`
}

// MCPSettings steers the research agent's persona and sources
type MCPSettings struct {
	Role             string   `hcl:"role,optional"`
	ContextualGoals  []string `hcl:"contextual_goals,optional"`
	PreferredSources []string `hcl:"preferred_sources,optional"`
	Tone             string   `hcl:"tone,optional"`
	Tools            []string `hcl:"tools,optional"`
	ResponseFormat   string   `hcl:"response_format,optional"`
}

// Defaults fills in default values for unset fields
func (e *ExecutorConfig) Defaults() {
	switch e.Kind {
	case ExecutorStream:
		if e.ThreadID == "" {
			e.ThreadID = "_default_"
		}
		if e.MaxPlanIterations <= 0 {
			e.MaxPlanIterations = 5
		}
		if e.MaxStepNum <= 0 {
			e.MaxStepNum = 5
		}
		if e.AutoAcceptedPlan == nil {
			t := true
			e.AutoAcceptedPlan = &t
		}
		if e.EnableBackgroundInvestigation == nil {
			t := true
			e.EnableBackgroundInvestigation = &t
		}
		if e.MCPSettings == nil {
			e.MCPSettings = &MCPSettings{}
		}
		e.MCPSettings.Defaults()
	case ExecutorProcess:
		if e.Runner == "" {
			e.Runner = "uv"
			if e.Args == nil {
				e.Args = []string{"run"}
			}
		}
		if e.Marker == "" {
			e.Marker = DefaultMarker
		}
	}
}

// Validate checks that the fields required by the executor kind are set
func (e *ExecutorConfig) Validate() error {
	switch e.Kind {
	case ExecutorStream:
		if e.URL == "" {
			return fmt.Errorf("url is required")
		}
	case ExecutorProcess:
		if e.Script == "" {
			return fmt.Errorf("script is required")
		}
	default:
		return fmt.Errorf("unknown executor kind (expected '%s' or '%s')", ExecutorStream, ExecutorProcess)
	}
	return nil
}

// Defaults fills the travel concierge persona
func (m *MCPSettings) Defaults() {
	if m.Role == "" {
		m.Role = "Concierge and Research Assistant specialized in restaurants and travel"
	}
	if len(m.ContextualGoals) == 0 {
		m.ContextualGoals = []string{
			"Find and list restaurants or beach clubs based on cuisine, rating, and location",
			"Provide accurate and detailed information about reservation processes, pricing, ambiance, and user reviews",
			"Use latest and trusted travel and restaurant data",
			"Be polite, clear, and provide thorough explanations with examples or highlights",
		}
	}
	if len(m.PreferredSources) == 0 {
		m.PreferredSources = []string{
			"Google Maps",
			"Michelin Guide",
			"TripAdvisor",
			"Zomato",
			"Official Restaurant Websites",
		}
	}
	if m.Tone == "" {
		m.Tone = "Polite, helpful, and detailed"
	}
	if len(m.Tools) == 0 {
		m.Tools = []string{"web_search", "reservation_info_api", "review_aggregation_api"}
	}
	if m.ResponseFormat == "" {
		m.ResponseFormat = "JSON with detailed fields: name, location, type, rating, reservation details, ambiance, price range, and brief summary"
	}
}
