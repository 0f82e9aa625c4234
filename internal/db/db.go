package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// ContainsFold is a SQL function reporting whether its first argument
// contains its second, ignoring Unicode case. Either argument being NULL
// yields 0.
const ContainsFold = "contains_fold"

// pragmas are applied by the driver to every new connection.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(ContainsFold, 2, containsFold)
}

func containsFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	haystack, ok1 := text(args[0])
	needle, ok2 := text(args[1])
	if !ok1 || !ok2 {
		return int64(0), nil
	}
	if strings.Contains(cases.Fold().String(haystack), cases.Fold().String(needle)) {
		return int64(1), nil
	}
	return int64(0), nil
}

func text(v driver.Value) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// DSN appends the connection pragmas to a database path.
func DSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Open opens a SQLite database. Pragmas are part of the DSN so every pooled
// connection gets them, not just the first.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database exists per connection; keep a single one so
	// every query sees the same data.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}
