// Package backend selects the record store implementation from
// configuration.
package backend

import (
	"fmt"

	"moneyplus/internal/config"
	"moneyplus/internal/ledger"
	"moneyplus/internal/log"
	"moneyplus/internal/storage"
)

// New returns the record store named by cfg.DataBackend. The caller owns the
// returned store and must Close it.
func New(cfg *config.Config, logger *log.Logger) (ledger.RecordStore, error) {
	blog := logger.WithComponent(log.ComponentBackend)

	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite record store: %w", err)
		}
		blog.Info("Initialized SQLite record store",
			log.FieldBackend, cfg.DataBackend, "db_path", cfg.SQLiteDBPath)
		return repo, nil

	case "file":
		store, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file record store: %w", err)
		}
		blog.Info("Initialized file record store",
			log.FieldBackend, cfg.DataBackend, "data_dir", cfg.DataDir)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
