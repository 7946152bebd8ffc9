package store

import (
	"context"
	"fmt"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Open connects to the store selected by driver
func Open(ctx context.Context, driver, dsn string, pool PoolOptions) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, dsn)
	case DriverMySQL:
		return OpenMySQL(ctx, dsn, pool)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, pool)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
