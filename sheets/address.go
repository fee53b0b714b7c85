package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ColumnLetter maps a 0-based column index to its letter. Only single-letter
// columns (A–Z) are addressable.
func ColumnLetter(index int) (string, error) {
	if index < 0 || index > 25 {
		return "", fmt.Errorf("column index %d outside A–Z", index)
	}
	return string(rune('A' + index)), nil
}

// CellRange returns the A1 address of one cell, e.g. "CustomerEnquiry!C2".
func CellRange(sheetName string, columnIndex, sheetRow int) (string, error) {
	col, err := ColumnLetter(columnIndex)
	if err != nil {
		return "", err
	}
	if sheetRow < 1 {
		return "", fmt.Errorf("row %d outside the sheet", sheetRow)
	}
	return fmt.Sprintf("%s!%s%d", sheetName, col, sheetRow), nil
}

// FirstRow returns the sheet row number where an A1 range starts, e.g. 1 for
// "Sheet1!A1:D100" and 5 for "B5:C9". Ranges without a row start at 1.
func FirstRow(a1Range string) int {
	ref := a1Range
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	digits := strings.IndexFunc(ref, unicode.IsDigit)
	if digits < 0 {
		return 1
	}
	n, err := strconv.Atoi(ref[digits:])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseCell splits a single-cell A1 address into sheet name, 0-based column
// and 1-based row. Used by the in-memory client.
func ParseCell(a1 string) (sheet string, column int, row int, err error) {
	ref := a1
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		sheet, ref = a1[:i], a1[i+1:]
	}

	split := strings.IndexFunc(ref, unicode.IsDigit)
	if split != 1 || !unicode.IsUpper(rune(ref[0])) {
		return "", 0, 0, fmt.Errorf("unsupported cell reference %q", a1)
	}
	row, err = strconv.Atoi(ref[split:])
	if err != nil || row < 1 {
		return "", 0, 0, fmt.Errorf("unsupported cell reference %q", a1)
	}
	return sheet, int(ref[0] - 'A'), row, nil
}
