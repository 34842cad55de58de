package database

import "fmt"

// Supported backend drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenStore opens an existing case store for the configured driver.
// For sqlite, dsn is the database file path; for postgres it is a
// connection string.
func OpenStore(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// CreateStore opens a case store and ensures its schema exists.
func CreateStore(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return CreateSQLite(dsn)
	case DriverPostgres:
		return CreatePostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
