package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO is the cgo based github.com/mattn/go-sqlite3 driver.
	DriverCGO = "sqlite3"
	// DriverPure is the pure Go modernc.org/sqlite driver.
	DriverPure = "sqlite"
)

// Both drivers are configured the same way, but they expect their options
// in a different format:
// - WAL Mode so that reads and writes don't block eachother.
// - A busy timeout, specifying the duration a connection will wait for a lock.
// - Foreign keys are enforced.
// - Write connections use immediate transactions to prevent locking issues.
var driverOptions = map[string]struct {
	write string
	read  string
}{
	DriverCGO: {
		write: "_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate",
		read:  "_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000",
	},
	DriverPure: {
		write: "_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_txlock=immediate",
		read:  "_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)",
	},
}

// ValidDriver reports whether driver is one of the supported SQLite drivers.
func ValidDriver(driver string) bool {
	_, ok := driverOptions[driver]
	return ok
}

// OpenSQLite opens a pool of SQLite connections using the given driver.
// Different settings are appropriate for reading and writing, so this
// function needs to know what the sql.DB will be used for.
//
// See this comment for more information:
// https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func OpenSQLite(driver, dbFile string, write bool) (*sql.DB, error) {
	opts, ok := driverOptions[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	if dbFile == "" {
		return nil, fmt.Errorf("no database file provided")
	}

	optsPostfix := opts.read
	if write {
		optsPostfix = opts.write
	}

	sep := "?"
	if strings.Contains(dbFile, "?") {
		sep = "&"
	}

	db, err := sql.Open(driver, dbFile+sep+optsPostfix)
	if err != nil {
		return nil, err
	}

	if write {
		// use only a single connection for writing.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		// don't close this connection.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	return db, nil
}

// Ping checks that a connection to db can be established.
func Ping(ctx context.Context, db *sql.DB) error {
	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
