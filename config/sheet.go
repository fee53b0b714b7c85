package config

import (
	"fmt"
	"strings"
)

// Row schema variants understood by the task selector
const (
	SchemaDeerFlow = "deerflow"
	SchemaTask     = "task"
)

// SheetConfig locates the spreadsheet range that holds customer enquiries
// and the credentials used to reach it.
type SheetConfig struct {
	SpreadsheetID   string `hcl:"spreadsheet_id"`
	SheetName       string `hcl:"sheet_name,optional"` // default: "Sheet1"
	Range           string `hcl:"range,optional"`      // A1 range without the sheet name (default: "A1:Z1000")
	Schema          string `hcl:"schema,optional"`     // "deerflow" or "task" (default: "deerflow")
	CredentialsFile string `hcl:"credentials_file,optional"`
	TokenFile       string `hcl:"token_file,optional"`
}

// Defaults fills in default values for unset fields
func (s *SheetConfig) Defaults() {
	if s.SheetName == "" {
		s.SheetName = "Sheet1"
	}
	if s.Range == "" {
		s.Range = "A1:Z1000"
	}
	if s.Schema == "" {
		s.Schema = SchemaDeerFlow
	}
}

// Validate checks that required fields are set
func (s *SheetConfig) Validate() error {
	if s.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet_id is required")
	}
	if strings.Contains(s.Range, "!") {
		return fmt.Errorf("range '%s' must not include a sheet name; use sheet_name", s.Range)
	}
	switch s.Schema {
	case SchemaDeerFlow, SchemaTask:
	default:
		return fmt.Errorf("unknown schema '%s' (expected '%s' or '%s')", s.Schema, SchemaDeerFlow, SchemaTask)
	}
	if s.TokenFile != "" && s.CredentialsFile == "" {
		return fmt.Errorf("token_file requires credentials_file (the OAuth client secrets)")
	}
	return nil
}

// ReadRange returns the fully qualified A1 range to fetch
func (s *SheetConfig) ReadRange() string {
	return s.SheetName + "!" + s.Range
}
