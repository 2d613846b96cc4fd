// ABOUTME: Tests for SQL rendering
// ABOUTME: Verifies placeholders, escaping and identifier validation

package query

import (
	"errors"
	"testing"
	"time"
)

func TestToSQLTextSearch(t *testing.T) {
	n := AndOf(
		OrOf(Contains("title", "a"), Contains("body", "a")),
		OrOf(Contains("title", "b"), Contains("body", "b")),
	)

	where, args, err := ToSQL(n, Postgres)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	want := `(("title" ILIKE $1 ESCAPE '\') OR ("body" ILIKE $2 ESCAPE '\')) AND (("title" ILIKE $3 ESCAPE '\') OR ("body" ILIKE $4 ESCAPE '\'))`
	if where != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, where)
	}
	if len(args) != 4 || args[0] != "%a%" || args[3] != "%b%" {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestToSQLEscapesLikePattern(t *testing.T) {
	_, args, err := ToSQL(Contains("title", `50%_off\`), SQLite)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if args[0] != `%50\%\_off\\%` {
		t.Errorf("Unexpected pattern: %v", args[0])
	}
}

func TestToSQLSQLiteValues(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	n := AndOf(Range("created", from, to), Is("published", true), In("status", []string{"a", "b"}))

	where, args, err := ToSQL(n, SQLite)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	want := `("created" BETWEEN ? AND ?) AND ("published" = ?) AND ("status" IN (?, ?))`
	if where != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, where)
	}
	if args[0] != "2020-01-01T00:00:00.000000000Z" {
		t.Errorf("Unexpected time arg: %v", args[0])
	}
	if args[2] != int64(1) {
		t.Errorf("Expected bool as 1, got %v", args[2])
	}
}

func TestToSQLIdentityAndEmptyIn(t *testing.T) {
	where, args, err := ToSQL(All(), SQLite)
	if err != nil || where != "1=1" || len(args) != 0 {
		t.Errorf("Unexpected identity rendering: %q %v %v", where, args, err)
	}

	where, _, err = ToSQL(In("status", nil), SQLite)
	if err != nil || where != "1=0" {
		t.Errorf("Unexpected empty IN rendering: %q %v", where, err)
	}
}

func TestToSQLRejectsBadField(t *testing.T) {
	_, _, err := ToSQL(Contains(`title"; DROP TABLE x; --`, "a"), SQLite)
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField, got %v", err)
	}
}

func TestColumnRelationPath(t *testing.T) {
	col, err := Column("author__name")
	if err != nil {
		t.Fatalf("Failed to quote: %v", err)
	}
	if col != `"author"."name"` {
		t.Errorf("Unexpected column: %s", col)
	}
}
