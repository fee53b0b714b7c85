package sheets

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// Source fetches table snapshots from a fixed range.
type Source struct {
	client    Client
	readRange string
	logger    hclog.Logger
}

func NewSource(client Client, readRange string, logger hclog.Logger) *Source {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Source{client: client, readRange: readRange, logger: logger}
}

// Range returns the A1 range this source reads.
func (s *Source) Range() string {
	return s.readRange
}

// Fetch reads the range and builds a fresh snapshot. Ragged rows are
// normalized silently; an all-blank range is a warning, not an error.
func (s *Source) Fetch(ctx context.Context) (*Table, error) {
	grid, err := s.client.Values(ctx, s.readRange)
	if err != nil {
		return nil, err
	}

	table := NewTableAt(grid, FirstRow(s.readRange))
	if table.Empty() {
		s.logger.Warn("no data found in sheet", "range", s.readRange)
	}
	return table, nil
}
