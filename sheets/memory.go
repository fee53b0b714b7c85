package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-process Client holding a single sheet grid. Reads
// return the whole grid regardless of the requested range.
type MemoryClient struct {
	mu     sync.Mutex
	sheet  string
	grid   [][]string
	writes []MemoryWrite

	// ValuesErr and UpdateErr, when set, are returned by the next calls.
	ValuesErr error
	UpdateErr error
}

// MemoryWrite records one Update call.
type MemoryWrite struct {
	Range string
	Value string
}

func NewMemoryClient(sheet string, grid [][]string) *MemoryClient {
	c := &MemoryClient{sheet: sheet}
	for _, row := range grid {
		c.grid = append(c.grid, append([]string(nil), row...))
	}
	return c
}

func (c *MemoryClient) Values(ctx context.Context, a1Range string) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ValuesErr != nil {
		return nil, c.ValuesErr
	}
	out := make([][]string, len(c.grid))
	for i, row := range c.grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (c *MemoryClient) Update(ctx context.Context, a1Range string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.UpdateErr != nil {
		return c.UpdateErr
	}
	sheet, col, row, err := ParseCell(a1Range)
	if err != nil {
		return err
	}
	if sheet != "" && sheet != c.sheet {
		return fmt.Errorf("unknown sheet %q", sheet)
	}

	for len(c.grid) < row {
		c.grid = append(c.grid, nil)
	}
	r := c.grid[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = value
	c.grid[row-1] = r

	c.writes = append(c.writes, MemoryWrite{Range: a1Range, Value: value})
	return nil
}

// Writes returns every Update applied so far, oldest first.
func (c *MemoryClient) Writes() []MemoryWrite {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MemoryWrite(nil), c.writes...)
}

// Cell returns the current value at a 1-based row and 0-based column.
func (c *MemoryClient) Cell(row, column int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 1 || row > len(c.grid) || column >= len(c.grid[row-1]) {
		return ""
	}
	return c.grid[row-1][column]
}
