package research

import (
	"fmt"
	"strings"
)

// Leading tags of answers produced by a degraded research run. They are
// written to the sheet like any other answer.
const (
	WarningTag = "⚠️"
	ErrorTag   = "❌"
)

// IsSoftFailure reports whether an answer is one of the rendered fallback
// strings rather than a real report.
func IsSoftFailure(answer string) bool {
	return strings.HasPrefix(answer, WarningTag) || strings.HasPrefix(answer, ErrorTag)
}

// TransportError is a non-2xx reply from the streaming research endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("research endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("research endpoint returned status %d: %s", e.StatusCode, body)
}

// MalformedFragmentError is a "data: " line whose payload is not a JSON
// object. The line is skipped.
type MalformedFragmentError struct {
	Line string
	Err  error
}

func (e *MalformedFragmentError) Error() string {
	return fmt.Sprintf("malformed fragment %q: %v", e.Line, e.Err)
}

func (e *MalformedFragmentError) Unwrap() error {
	return e.Err
}

// ProcessInvocationError means the research process could not be started or
// its output could not be read.
type ProcessInvocationError struct {
	Command []string
	Err     error
}

func (e *ProcessInvocationError) Error() string {
	return e.Err.Error()
}

func (e *ProcessInvocationError) Unwrap() error {
	return e.Err
}

// Answer renders the failure as the text stored in the sheet.
func (e *ProcessInvocationError) Answer() string {
	return ErrorTag + " Error: " + e.Error()
}

// MarkerNotFoundError means the process finished without printing the report
// marker. Output holds everything it printed, trimmed.
type MarkerNotFoundError struct {
	Marker string
	Output string
}

func (e *MarkerNotFoundError) Error() string {
	return fmt.Sprintf("'%s' not found in output", e.Marker)
}

// Answer renders the failure as the text stored in the sheet.
func (e *MarkerNotFoundError) Answer() string {
	return WarningTag + " " + e.Error() + ".\n" + e.Output
}
