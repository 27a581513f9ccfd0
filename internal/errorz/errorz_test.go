package errorz_test

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/passgate/passgate/internal/errorz"
	_ "modernc.org/sqlite"
)

func Test_MapDBErr(t *testing.T) {
	t.Run("ok, nil", func(t *testing.T) {
		if err := errorz.MapDBErr(nil); err != nil {
			t.Errorf("got %v, want <nil>", err)
		}
	})

	t.Run("ok, no rows", func(t *testing.T) {
		err := errorz.MapDBErr(fmt.Errorf("query: %w", sql.ErrNoRows))
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Errorf("got %v, want %v (via errors.Is)", err, errorz.ErrNotFound)
		}
	})

	t.Run("ok, other errors are unavailable", func(t *testing.T) {
		original := errors.New("disk I/O error")

		err := errorz.MapDBErr(original)
		if !errors.Is(err, errorz.ErrUnavailable) {
			t.Errorf("got %v, want %v (via errors.Is)", err, errorz.ErrUnavailable)
		}

		if !errors.Is(err, original) {
			t.Errorf("expected original error to be kept in the chain, got %v", err)
		}
	})

	for _, driver := range []string{"sqlite3", "sqlite"} {
		t.Run(fmt.Sprintf("ok, unique constraint with driver %s", driver), func(t *testing.T) {
			db := openForTest(t, driver)

			_, err := db.Exec(`INSERT INTO things (name) VALUES ('a')`)
			if err != nil {
				t.Fatalf("failed to insert first row: %v", err)
			}

			_, err = db.Exec(`INSERT INTO things (name) VALUES ('a')`)
			err = errorz.MapDBErr(err)
			if !errors.Is(err, errorz.ErrConstraintViolated) {
				t.Errorf("got %v, want %v (via errors.Is)", err, errorz.ErrConstraintViolated)
			}

			if errors.Is(err, errorz.ErrUnavailable) {
				t.Errorf("did not expect %v to be %v", err, errorz.ErrUnavailable)
			}
		})

		t.Run(fmt.Sprintf("ok, missing table with driver %s", driver), func(t *testing.T) {
			db := openForTest(t, driver)

			_, err := db.Exec(`INSERT INTO thingz (name) VALUES ('a')`)
			err = errorz.MapDBErr(err)
			if !errors.Is(err, errorz.ErrUnavailable) {
				t.Errorf("got %v, want %v (via errors.Is)", err, errorz.ErrUnavailable)
			}
		})
	}
}

func Test_InvalidInput(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	err := errorz.InvalidInput{
		errorz.Keyed{Key: "email", Err: errA},
		errorz.Keyed{Key: "password", Err: errB},
	}

	for _, want := range []error{errA, errB} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v to wrap %v", err, want)
		}
	}

	want := "invalid input: email: a; password: b"
	if err.Error() != want {
		t.Errorf("got\n%q\nwant\n%q", err.Error(), want)
	}
}

func Test_InvalidInput_Keys(t *testing.T) {
	tests := map[string]struct {
		err  errorz.InvalidInput
		want []string
	}{
		"ok, no errors": {
			err:  nil,
			want: []string{},
		},
		"ok, keys in order": {
			err: errorz.InvalidInput{
				errorz.Keyed{Key: "password", Err: errors.New("b")},
				errorz.Keyed{Key: "email", Err: errors.New("a")},
			},
			want: []string{"password", "email"},
		},
		"ok, skips errors without key": {
			err: errorz.InvalidInput{
				errors.New("malformed form"),
				errorz.Keyed{Key: "email"},
			},
			want: []string{"email"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := tc.err.Keys()
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("ok, keyed without error", func(t *testing.T) {
		got := errorz.Keyed{Key: "email"}.Error()
		if got != "email: invalid" {
			t.Errorf("got %q, want %q", got, "email: invalid")
		}
	})
}

func openForTest(t *testing.T, driver string) *sql.DB {
	t.Helper()

	db, err := sql.Open(driver, ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// every connection to :memory: is a new database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	_, err = db.Exec(`CREATE TABLE things (name TEXT NOT NULL UNIQUE)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	return db
}
