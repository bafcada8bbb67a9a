// internal/storage/database.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"querygate/internal/logger"
)

var customLog = logger.NewLogger()

// Connect opens the backing store and verifies the connection. The
// executor is driver-agnostic; the sqlite driver is registered here for
// the default deployment and for tests.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	customLog.Printf("Storage: Opening %s data source", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		customLog.Warnf("Storage: Failed to open data source: %v", err)
		return nil, fmt.Errorf("%w: failed to open data source: %v", ErrDataSource, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping data source: %v", err)
		return nil, fmt.Errorf("%w: failed to connect to data source: %v", ErrDataSource, err)
	}

	customLog.Println("Storage: Data source connection successful.")
	return db, nil
}
