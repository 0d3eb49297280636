package tracker

import (
	"context"

	"github.com/rotisserie/eris"
)

// Drivers accepted by [Open].
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Open returns the tracker for driver, storing its data at path.
func Open(ctx context.Context, driver, path string) (Tracker, error) {
	switch driver {
	case "", DriverCSV:
		return NewCSV(path), nil
	case DriverSQLite:
		t, err := NewSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, eris.Errorf("tracker: unknown driver %q", driver)
	}
}
