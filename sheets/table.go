package sheets

import "strings"

// Table is one point-in-time read of a sheet range: a header plus the data
// rows below it, every row exactly as wide as the header.
type Table struct {
	Header []string
	Rows   []Row

	index map[string]int
}

// Row is one record of the data body.
type Row struct {
	// Position is the 0-based index within the data body (header excluded).
	Position int
	// SheetRow is the 1-based row number of this record in the sheet. With no
	// blank rows above it, SheetRow == Position + 2.
	SheetRow int
	Cells    []string

	table *Table
}

// NewTable builds a snapshot from a grid read starting at sheet row 1.
func NewTable(grid [][]string) *Table {
	return NewTableAt(grid, 1)
}

// NewTableAt drops blank rows, takes the first remaining row as the header and
// pads or truncates every other row to the header's width. firstRow is the
// sheet row number of grid[0]. An empty grid yields an empty Table.
func NewTableAt(grid [][]string, firstRow int) *Table {
	var kept [][]string
	var rowNumbers []int
	for i, row := range grid {
		if !isBlank(row) {
			kept = append(kept, row)
			rowNumbers = append(rowNumbers, firstRow+i)
		}
	}

	t := &Table{index: make(map[string]int)}
	if len(kept) == 0 {
		return t
	}

	t.Header = append([]string(nil), kept[0]...)
	for i, name := range t.Header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	body := kept[1:]
	t.Rows = make([]Row, len(body))
	for i, raw := range body {
		t.Rows[i] = Row{
			Position: i,
			SheetRow: rowNumbers[i+1],
			Cells:    normalize(raw, len(t.Header)),
			table:    t,
		}
	}
	return t
}

// Empty reports whether the snapshot has no header at all.
func (t *Table) Empty() bool {
	return len(t.Header) == 0
}

// ColumnIndex returns the 0-based index of a header column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Get returns the cell under the named column, or "" if the column is absent.
func (r Row) Get(column string) string {
	if r.table == nil {
		return ""
	}
	i, ok := r.table.index[column]
	if !ok {
		return ""
	}
	return r.Cells[i]
}

// Map returns the row as column name → value, first column wins on duplicates.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.Cells))
	if r.table == nil {
		return m
	}
	for name, i := range r.table.index {
		m[name] = r.Cells[i]
	}
	return m
}

func normalize(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
