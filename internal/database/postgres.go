package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres opens an existing PostgreSQL case store.
func OpenPostgres(connStr string) (*SQLStore, error) {
	d := &PostgresDialect{}

	conn, err := openConn(d, connStr)
	if err != nil {
		return nil, err
	}
	return &SQLStore{path: connStr, conn: conn, dialect: d}, nil
}

// CreatePostgres opens a PostgreSQL case store and ensures the schema
// exists. The database itself must already exist; only tables and
// indexes are created here.
func CreatePostgres(connStr string) (*SQLStore, error) {
	db, err := OpenPostgres(connStr)
	if err != nil {
		return nil, err
	}

	if err := db.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}
