package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/passgate/passgate/internal/errorz"
)

// Store is responsible for interacting with a database.
//
// Reads and writes may use different pools, see db.OpenSQLite. Every
// operation acquires its own connection and releases it before returning.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// New creates a new Store.
func New(readDB, writeDB *sql.DB) *Store {
	return &Store{
		readDB:  readDB,
		writeDB: writeDB,
	}
}

// conn acquires a dedicated connection from pool. The caller must close it.
func conn(ctx context.Context, pool *sql.DB) (*sql.Conn, error) {
	c, err := pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", errorz.MapDBErr(err))
	}

	return c, nil
}
