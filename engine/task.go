package engine

import "enquirysync/sheets"

// Task is one unanswered row picked for research.
type Task struct {
	// Position is the row's index in the data body
	Position int
	// SheetRow is where the answer goes (1-based)
	SheetRow int

	Query  string
	Prompt string
	// Context holds the row's other non-empty cells by column name
	Context map[string]string
}

// Select returns a task for every row with a query and no answer, in row
// order. Selection depends only on the table's contents.
func Select(table *sheets.Table, schema Schema) []Task {
	var tasks []Task
	for _, row := range table.Rows {
		query := schema.Query(row)
		if query == "" || schema.Answered(row) {
			continue
		}

		ctx := make(map[string]string)
		for col, val := range row.Map() {
			if col == "" || val == "" || schema.isQueryOrAnswer(col) {
				continue
			}
			ctx[col] = val
		}

		tasks = append(tasks, Task{
			Position: row.Position,
			SheetRow: row.SheetRow,
			Query:    query,
			Prompt:   schema.Prompt(row),
			Context:  ctx,
		})
	}
	return tasks
}
