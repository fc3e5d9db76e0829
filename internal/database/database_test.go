package database

import (
	"context"
	"testing"
	"time"
)

func TestOpenMemoryRunsMigrations(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var n int
	if err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM families`).Scan(&n); err != nil {
		t.Fatalf("query families: %v", err)
	}
	if n != 0 {
		t.Errorf("families = %d, want 0", n)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := Now()
	_, err = db.ExecContext(context.Background(),
		`INSERT INTO families (id, name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"f1", "Smiths", "no-such-user", now, now,
	)
	if err == nil {
		t.Error("expected foreign key violation")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{SQLite, `SELECT * FROM t WHERE a = ? AND b = ?`, `SELECT * FROM t WHERE a = ? AND b = ?`},
		{Postgres, `SELECT * FROM t WHERE a = ? AND b = ?`, `SELECT * FROM t WHERE a = $1 AND b = $2`},
		{Postgres, `SELECT '?' FROM t WHERE a = ?`, `SELECT '?' FROM t WHERE a = $1`},
	}
	for _, tt := range tests {
		db := &DB{Dialect: tt.dialect}
		if got := db.Rebind(tt.in); got != tt.want {
			t.Errorf("Rebind(%s, %q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestTimeArgsOrderAsText(t *testing.T) {
	db := &DB{Dialect: SQLite}
	early := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	late := early.Add(500 * time.Millisecond)

	args := db.args([]any{early, &late, (*time.Time)(nil), "x"})
	a, b := args[0].(string), args[1].(string)
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}
	if args[2] != nil {
		t.Errorf("nil time arg = %v, want nil", args[2])
	}
	if args[3] != "x" {
		t.Errorf("string arg = %v, want x", args[3])
	}
}

func TestTimeRoundTrip(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	now := Now()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"u1", "Alice", "alice@example.com", now, now,
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	var got time.Time
	if err := db.QueryRowContext(ctx, `SELECT created_at FROM users WHERE id = ?`, "u1").Scan(&got); err != nil {
		t.Fatalf("scan created_at: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("created_at = %v, want %v", got, now)
	}
}
