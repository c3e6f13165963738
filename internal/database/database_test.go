package database

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count == 0 {
		t.Error("Expected recorded migrations")
	}
}

func TestRewriteQueryPostgres(t *testing.T) {
	dialect := NewPostgresDialect()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO sessions (id, user_id) VALUES (?, ?)",
			want:  "INSERT INTO sessions (id, user_id) VALUES ($1, $2)",
		},
		{
			name:  "no placeholders",
			query: "DELETE FROM quiz_results",
			want:  "DELETE FROM quiz_results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dialect.RewriteQuery(tt.query)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRewriteQuerySQLiteIsPassthrough(t *testing.T) {
	dialect := NewSQLiteDialect()

	query := "SELECT * FROM users WHERE id = ?"
	if got := dialect.RewriteQuery(query); got != query {
		t.Errorf("Expected unchanged query, got %q", got)
	}
}

func TestExecReturningID(t *testing.T) {
	db := newTestDB(t)

	id, err := db.ExecReturningID(
		"INSERT INTO users (phone, grade) VALUES (?, ?)", "5551234567", "")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id == 0 {
		t.Error("Expected a nonzero id")
	}

	second, err := db.ExecReturningID(
		"INSERT INTO users (phone, grade) VALUES (?, ?)", "5557654321", "")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if second <= id {
		t.Errorf("Expected increasing ids, got %d then %d", id, second)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("boom")
	err := db.WithTx(func(tx *Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO users (phone, grade) VALUES (?, ?)", "5551234567", ""); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to drop the insert, got %d rows", count)
	}
}

func TestWithTxCommits(t *testing.T) {
	db := newTestDB(t)

	err := db.WithTx(func(tx *Tx) error {
		_, err := tx.Exec(
			"INSERT INTO users (phone, grade) VALUES (?, ?)", "5551234567", "")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}
}
