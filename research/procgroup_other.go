//go:build !unix

package research

import "os/exec"

// killProcessGroup is a no-op where process groups are unavailable; only the
// direct child is killed on cancellation.
func killProcessGroup(cmd *exec.Cmd) {}
