package device

import (
	"fmt"
	"path/filepath"
)

// RepositoryConfig contains configuration for creating a binding repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories (DBTX interface)
	DB DBTX
	// DataDir is required for file and sqlite repositories
	DataDir string
}

// NewBindingRepository creates a new binding repository based on the persistence type
func NewBindingRepository(persistenceType string, config RepositoryConfig) (BindingRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresBindingRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileBindingRepository(config.DataDir)
	case "sqlite":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for sqlite repository")
		}
		return NewSQLiteBindingRepository(filepath.Join(config.DataDir, sqliteFileName))
	case "inmem", "memory":
		return NewInMemBindingRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, sqlite, inmem)", persistenceType)
	}
}
