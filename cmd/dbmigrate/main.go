package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/passgate/passgate/internal"
	"github.com/passgate/passgate/internal/db"
	"github.com/passgate/passgate/internal/db/migrate"
	"github.com/passgate/passgate/migrations"
)

const helpText = `Usage: dbmigrate [sqlite3|sqlite] [sqlite_file]`

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, helpText)
		os.Exit(1)
	}

	driver, dbFile := os.Args[1], os.Args[2]

	sqlDB, err := db.OpenSQLite(driver, dbFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	meta := migrate.Metadata{
		AppVersion: internal.BuildInfo.Revision,
		Timestamp:  time.Now().UTC(),
	}

	ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	for _, m := range ran {
		fmt.Printf("%d: %s\n", m.Sequence, m.Filename)
	}
}
