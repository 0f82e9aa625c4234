package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestItemTypeImmutable(t *testing.T) {
	database := NewTestDB(t)
	now := time.Now().UTC()

	_, err := database.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"u1", "Ana", "ana@example.com", "hash", "user", now,
	)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	_, err = database.Exec(
		`INSERT INTO items (id, title, description, location, date, type, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"i1", "Wallet", "Black leather", "Library", now, "lost", "u1", now, now,
	)
	if err != nil {
		t.Fatalf("inserting item: %v", err)
	}

	if _, err := database.Exec(`UPDATE items SET type = 'found' WHERE id = 'i1'`); err == nil {
		t.Error("expected changing item type to fail")
	}
	if _, err := database.Exec(`UPDATE items SET status = 'Returned' WHERE id = 'i1'`); err != nil {
		t.Errorf("status update should succeed: %v", err)
	}
}

func TestItemCheckConstraints(t *testing.T) {
	database := NewTestDB(t)
	now := time.Now().UTC()

	database.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES ('u1', 'Ana', 'ana@example.com', 'h', 'user', ?)`,
		now,
	)

	_, err := database.Exec(
		`INSERT INTO items (id, title, description, location, date, type, user_id, created_at, updated_at)
		 VALUES ('i1', 't', 'd', 'l', ?, 'misplaced', 'u1', ?, ?)`,
		now, now, now,
	)
	if err == nil {
		t.Error("expected unknown item type to be rejected")
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "najdeno.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	first, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("first Conn: %v", err)
	}
	defer first.Close()
	second, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("second Conn: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var foreignKeys, busyTimeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
			t.Fatalf("conn %d: reading foreign_keys: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
			t.Fatalf("conn %d: reading busy_timeout: %v", i, err)
		}
		if foreignKeys != 1 || busyTimeout != 5000 {
			t.Errorf("conn %d: expected foreign_keys=1 busy_timeout=5000, got %d and %d", i, foreignKeys, busyTimeout)
		}
	}
}

func TestContainsFold(t *testing.T) {
	database := NewTestDB(t)

	tests := []struct {
		haystack, needle string
		want             int
	}{
		{"Črna denarnica", "črna", 1},
		{"Črna denarnica", "ČRNA", 1},
		{"ŠOLSKA TORBA", "šolska", 1},
		{"Black wallet", "WALLET", 1},
		{"Black wallet", "purse", 0},
		{"100% cotton", "%", 1},
		{"plain", "_", 0},
	}
	for _, tt := range tests {
		var got int
		err := database.QueryRow("SELECT "+ContainsFold+"(?, ?)", tt.haystack, tt.needle).Scan(&got)
		if err != nil {
			t.Fatalf("%s(%q, %q): %v", ContainsFold, tt.haystack, tt.needle, err)
		}
		if got != tt.want {
			t.Errorf("%s(%q, %q) = %d, want %d", ContainsFold, tt.haystack, tt.needle, got, tt.want)
		}
	}

	var null int
	if err := database.QueryRow("SELECT " + ContainsFold + "(NULL, 'a')").Scan(&null); err != nil || null != 0 {
		t.Errorf("expected NULL haystack to yield 0, got %d, %v", null, err)
	}
}
