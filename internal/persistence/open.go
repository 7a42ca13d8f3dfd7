package persistence

import (
	"context"
	"fmt"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenStore opens the slot store for driver. For sqlite, target is a file
// path; for postgres, a connection URL.
func OpenStore(ctx context.Context, driver, target string) (SlotStore, error) {
	switch driver {
	case "", DriverSQLite:
		db, err := Open(target)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverPostgres:
		pg, err := OpenPostgres(ctx, target)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
