package sheets

import (
	"context"
	"fmt"
)

// Writer puts one answer into one cell.
type Writer struct {
	client    Client
	sheetName string
}

func NewWriter(client Client, sheetName string) *Writer {
	return &Writer{client: client, sheetName: sheetName}
}

// Write stores answer in column of the given 1-based sheet row and returns
// the A1 range it wrote. The value is written literally (no formula evaluation).
func (w *Writer) Write(ctx context.Context, header []string, column string, sheetRow int, answer string) (string, error) {
	index := -1
	for i, name := range header {
		if name == column {
			index = i
			break
		}
	}
	if index < 0 {
		return "", fmt.Errorf("column %q not found in header", column)
	}

	target, err := CellRange(w.sheetName, index, sheetRow)
	if err != nil {
		return "", fmt.Errorf("address %q: %w", column, err)
	}

	if err := w.client.Update(ctx, target, answer); err != nil {
		return "", err
	}
	return target, nil
}
