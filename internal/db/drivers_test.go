package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/passgate/passgate/internal/db"
	"github.com/passgate/passgate/internal/db/migrate"
	"github.com/passgate/passgate/migrations"
)

const userRows = 200

type userRow struct {
	id    int
	email string
	hash  string
}

// Test_Drivers runs the same users workload against both drivers and logs
// their timings, so the two can be compared with go test -v.
func Test_Drivers(t *testing.T) {
	data := make([]userRow, 0, userRows)
	for i := 0; i < userRows; i++ {
		data = append(data, userRow{
			email: fmt.Sprintf("%s@example.com", randString(24)),
			hash:  "$argon2id$v=19$m=47104,t=1,p=1$" + randString(22) + "$" + randString(43),
		})
	}

	for _, driver := range []string{db.DriverCGO, db.DriverPure} {
		t.Run("ok, users workload with driver "+driver, func(t *testing.T) {
			w, r := setupPools(t, driver)

			start := time.Now()

			for _, u := range data {
				_, err := w.Exec("INSERT INTO users (email, password_hash) VALUES (?, ?)", u.email, u.hash)
				if err != nil {
					t.Fatalf("failed to insert user: %v", err)
				}
			}

			t.Logf("%s writes: %v", driver, time.Since(start))

			start = time.Now()

			stmt, err := r.Prepare("SELECT id, email, password_hash FROM users WHERE email = ?")
			if err != nil {
				t.Fatalf("failed to prepare query: %v", err)
			}
			defer stmt.Close()

			for _, u := range data {
				got := userRow{}
				err := stmt.QueryRow(u.email).Scan(&got.id, &got.email, &got.hash)
				if err != nil {
					t.Fatalf("failed to query user: %v", err)
				}

				if got.email != u.email || got.hash != u.hash {
					t.Fatalf("got %+v, want %+v", got, u)
				}
			}

			t.Logf("%s reads: %v", driver, time.Since(start))

			_, err = w.Exec("INSERT INTO users (email, password_hash) VALUES (?, ?)", data[0].email, data[0].hash)
			if err == nil {
				t.Errorf("expected unique constraint error, got <nil>")
			}
		})
	}
}

func setupPools(t *testing.T, driver string) (*sql.DB, *sql.DB) {
	t.Helper()

	file := filepath.Join(t.TempDir(), driver+".db")

	w, err := db.OpenSQLite(driver, file, true)
	if err != nil {
		t.Fatalf("failed to open write pool: %v", err)
	}

	r, err := db.OpenSQLite(driver, file, false)
	if err != nil {
		t.Fatalf("failed to open read pool: %v", err)
	}

	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("failed to close read pool: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("failed to close write pool: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = migrate.RunFS(ctx, w, migrations.FS, migrate.Metadata{})
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return w, r
}

func randString(nr int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	out := make([]byte, nr)
	for i := 0; i < nr; i++ {
		out[i] = alphabet[rand.Intn(len(alphabet))]
	}

	return string(out)
}
