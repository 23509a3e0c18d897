package exercise

import (
	"fmt"

	"github.com/felixgeelhaar/codelab/internal/config"
	"github.com/felixgeelhaar/codelab/internal/storage/sqlite"
)

// OpenSource builds the configured exercise source. The returned close
// function releases any database handle and is always safe to call.
func OpenSource(cfg config.CatalogConfig) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case "", config.CatalogBuiltin:
		return BuiltinSource{}, noop, nil

	case config.CatalogYAML:
		return PackSource{Loader: NewLoader(cfg.Path), PackID: cfg.Pack}, noop, nil

	case config.CatalogSQLite:
		db, err := sqlite.OpenMigrated(cfg.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open catalog database: %w", err)
		}
		return sqlite.NewExerciseStore(db), db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
