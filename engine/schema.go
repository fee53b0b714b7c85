package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"enquirysync/config"
	"enquirysync/sheets"
)

// Schema names the columns a sheet layout uses for queries and answers.
type Schema struct {
	Name string

	// QueryColumns are joined with Separator to form the query
	QueryColumns []string
	Separator    string

	AnswerColumn string
	// PromptColumn holds optional per-row rewrite instructions
	PromptColumn string
}

var (
	// DeerFlowSchema: the query lives in a single "DeerFlow" column
	DeerFlowSchema = Schema{
		Name:         config.SchemaDeerFlow,
		QueryColumns: []string{"DeerFlow"},
		AnswerColumn: "Answer",
	}

	// TaskSchema: the query is "task_type:task_info" and rows may carry a Prompt
	TaskSchema = Schema{
		Name:         config.SchemaTask,
		QueryColumns: []string{"task_type", "task_info"},
		Separator:    ":",
		AnswerColumn: "Answer",
		PromptColumn: "Prompt",
	}
)

// SchemaFor returns the schema registered under name
func SchemaFor(name string) (Schema, error) {
	switch name {
	case config.SchemaDeerFlow:
		return DeerFlowSchema, nil
	case config.SchemaTask:
		return TaskSchema, nil
	default:
		return Schema{}, fmt.Errorf("unknown sheet schema '%s'", name)
	}
}

// Query extracts the normalized query of a row. It is empty when every query
// column is empty.
func (s Schema) Query(row sheets.Row) string {
	parts := make([]string, len(s.QueryColumns))
	empty := true
	for i, col := range s.QueryColumns {
		parts[i] = fold(row.Get(col))
		if parts[i] != "" {
			empty = false
		}
	}
	if empty {
		return ""
	}
	return strings.Join(parts, s.Separator)
}

// Answered reports whether the row's answer cell holds anything besides whitespace.
func (s Schema) Answered(row sheets.Row) bool {
	return fold(row.Get(s.AnswerColumn)) != ""
}

// Prompt returns the per-row instruction, normalized like the query, if the
// schema has one.
func (s Schema) Prompt(row sheets.Row) string {
	if s.PromptColumn == "" {
		return ""
	}
	return fold(row.Get(s.PromptColumn))
}

func (s Schema) isQueryOrAnswer(column string) bool {
	if column == s.AnswerColumn {
		return true
	}
	for _, c := range s.QueryColumns {
		if c == column {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
