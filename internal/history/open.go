package history

import (
	"fmt"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// Drivers accepted in domain.HistoryConfig.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the store selected by cfg. databaseURL is only used by the
// postgres driver.
func Open(cfg domain.HistoryConfig, databaseURL string) (Store, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "./data/history.db"
		}
		return NewSQLiteStore(path)
	case DriverPostgres:
		return NewPostgresStoreFromURL(databaseURL)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}
