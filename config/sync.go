package config

import (
	"fmt"
	"time"
)

// SyncConfig controls the polling loop
type SyncConfig struct {
	Interval int `hcl:"interval,optional"` // seconds between cycles (default: 10)
}

// Defaults fills in default values for unset fields
func (s *SyncConfig) Defaults() {
	if s.Interval == 0 {
		s.Interval = 10
	}
}

func (s *SyncConfig) Validate() error {
	if s == nil {
		return nil
	}
	if s.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	return nil
}

// IntervalDuration returns the sleep between cycles
func (s *SyncConfig) IntervalDuration() time.Duration {
	if s == nil || s.Interval == 0 {
		return 10 * time.Second
	}
	return time.Duration(s.Interval) * time.Second
}
