package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client is an authenticated handle on one spreadsheet.
type Client interface {
	// Values returns the row-major grid for an A1 range, every cell as a string.
	Values(ctx context.Context, a1Range string) ([][]string, error)
	// Update writes a single literal value into the cell at a1Range.
	Update(ctx context.Context, a1Range string, value string) error
}

// GoogleClient implements Client on the Sheets v4 API.
type GoogleClient struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewGoogleClient builds a client for spreadsheetID. Authentication comes
// entirely from opts (see ClientOptions).
func NewGoogleClient(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleClient, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *GoogleClient) Values(ctx context.Context, a1Range string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", a1Range, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		grid[i] = cells
	}
	return grid, nil
}

func (c *GoogleClient) Update(ctx context.Context, a1Range string, value string) error {
	body := &gsheets.ValueRange{
		Range:  a1Range,
		Values: [][]interface{}{{value}},
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", a1Range, err)
	}
	return nil
}

// cellString renders a decoded JSON cell without coercing it.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
