package config

import "fmt"

// Storage backends for the attempt ledger
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StorageConfig defines the storage backend for the attempt ledger
type StorageConfig struct {
	Backend string `hcl:"backend,optional"` // "memory", "sqlite" (default) or "postgres"
	Path    string `hcl:"path,optional"`    // SQLite file path (default: ".enquirysync/ledger.db")
	DSN     string `hcl:"dsn,optional"`     // Postgres connection string
}

// Defaults fills in default values for unset fields
func (s *StorageConfig) Defaults() {
	if s.Backend == "" {
		s.Backend = BackendSQLite
	}
	if s.Path == "" {
		s.Path = ".enquirysync/ledger.db"
	}
}

func (s *StorageConfig) Validate() error {
	if s == nil {
		return nil
	}
	switch s.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend '%s' (expected 'memory', 'sqlite' or 'postgres')", s.Backend)
	}
	return nil
}
