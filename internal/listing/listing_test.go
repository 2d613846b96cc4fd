package listing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nainya/simplesearch/internal/metrics"
	"github.com/nainya/simplesearch/pkg/query"
	"github.com/nainya/simplesearch/pkg/search"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testArticles() []query.Record {
	return []query.Record{
		{"title": "Go concurrency patterns", "body": "channels and select", "status": "published", "created": day(2020, 1, 10), "featured": true},
		{"title": "Parsing dates", "body": "layouts in go", "status": "draft", "created": day(2020, 6, 1), "featured": false},
		{"title": "Rust ownership", "body": "borrow checker", "status": "published", "created": day(2021, 3, 5), "featured": false},
		{"title": "Go modules", "body": "versioning", "status": "archived", "created": day(2021, 8, 20), "featured": true},
	}
}

func testConfig() search.Config {
	return search.Config{
		Fields: search.FieldSet{
			Text:    []string{"title", "body"},
			Date:    []string{"created"},
			Choice:  []string{"status"},
			Boolean: []string{"featured"},
		},
	}
}

func setupView(t *testing.T, store Store) (*View, *metrics.Metrics) {
	tr, err := search.NewTranslator(testConfig())
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewView("articles", "articles", tr, store, nil, m), m
}

func titles(items []query.Record) []string {
	out := make([]string, len(items))
	for i, rec := range items {
		out[i], _ = rec["title"].(string)
	}
	return out
}

func TestPageNormalize(t *testing.T) {
	if p := (Page{}).Normalize(); p.Limit != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p := (Page{Limit: 5000, Offset: -3}).Normalize(); p.Limit != MaxLimit || p.Offset != 0 {
		t.Errorf("Expected clamped page, got %+v", p)
	}
}

func TestMemoryStoreFind(t *testing.T) {
	store := NewMemoryStore()
	store.Insert("articles", testArticles()...)
	ctx := context.Background()

	all, err := store.Find(ctx, "articles", query.All(), Page{})
	if err != nil {
		t.Fatalf("Failed to find: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 records, got %d", len(all))
	}

	paged, err := store.Find(ctx, "articles", query.All(), Page{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Failed to find page: %v", err)
	}
	got := titles(paged)
	if len(got) != 2 || got[0] != "Parsing dates" || got[1] != "Rust ownership" {
		t.Errorf("Unexpected page: %v", got)
	}

	if _, err := store.Find(ctx, "missing", query.All(), Page{}); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Expected ErrUnknownCollection, got %v", err)
	}
}

func TestViewList(t *testing.T) {
	store := NewMemoryStore()
	store.Insert("articles", testArticles()...)
	view, m := setupView(t, store)

	listing, err := view.List(context.Background(), search.Params{
		"q":      {"go"},
		"status": {"published", "archived"},
	}, Page{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}

	got := titles(listing.Items)
	if len(got) != 2 || got[0] != "Go concurrency patterns" || got[1] != "Go modules" {
		t.Errorf("Unexpected items: %v", got)
	}
	if listing.Applied["q"] != "go" || listing.Applied["status"] != "published, archived" {
		t.Errorf("Unexpected applied values: %v", listing.Applied)
	}
	if len(listing.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", listing.Warnings)
	}

	if v := testutil.ToFloat64(m.ListingsTotal.WithLabelValues("articles", "success")); v != 1 {
		t.Errorf("Expected 1 successful listing, got %v", v)
	}
}

func TestViewListDateWarning(t *testing.T) {
	store := NewMemoryStore()
	store.Insert("articles", testArticles()...)
	view, m := setupView(t, store)

	listing, err := view.List(context.Background(), search.Params{
		"df":       {"2020-01-01"},
		"featured": {"True"},
	}, Page{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}

	if len(listing.Warnings) != 1 || !strings.Contains(listing.Warnings[0], "MM/DD/YYYY") {
		t.Errorf("Expected date format warning, got %v", listing.Warnings)
	}
	// the bad date is dropped but the boolean still applies
	if len(listing.Items) != 2 {
		t.Errorf("Expected 2 featured items, got %v", titles(listing.Items))
	}
	if v := testutil.ToFloat64(m.FieldIssuesTotal.WithLabelValues("articles", "df")); v != 1 {
		t.Errorf("Expected 1 field issue, got %v", v)
	}
}

func TestViewListInvalidBoolean(t *testing.T) {
	store := NewMemoryStore()
	store.Insert("articles", testArticles()...)
	view, m := setupView(t, store)

	_, err := view.List(context.Background(), search.Params{"featured": {"yes"}}, Page{})
	if !errors.Is(err, search.ErrInvalidBoolean) {
		t.Fatalf("Expected ErrInvalidBoolean, got %v", err)
	}
	if v := testutil.ToFloat64(m.TranslationsTotal.WithLabelValues("articles", "error")); v != 1 {
		t.Errorf("Expected 1 failed translation, got %v", v)
	}
}

func setupSQLite(t *testing.T) *SQLStore {
	store, err := OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	schema := `CREATE TABLE articles (title TEXT, body TEXT, status TEXT, created TEXT, featured INTEGER)`
	if err := store.Exec(ctx, schema); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for _, rec := range testArticles() {
		if err := store.Insert(ctx, "articles", rec); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}
	return store
}

func TestSQLStoreFind(t *testing.T) {
	store := setupSQLite(t)
	view, _ := setupView(t, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		params search.Params
		want   int
	}{
		{"no params", search.Params{}, 4},
		{"text is case insensitive", search.Params{"q": {"GO"}}, 3},
		{"phrase", search.Params{"q": {`"borrow checker"`}}, 1},
		{"date range", search.Params{"df": {"01/01/2020"}, "dt": {"12/31/2020"}}, 2},
		{"date from only", search.Params{"df": {"01/01/2021"}}, 2},
		{"choice", search.Params{"status": {"draft"}}, 1},
		{"boolean", search.Params{"featured": {"false"}}, 2},
		{"combined", search.Params{"q": {"go"}, "featured": {"true"}, "dt": {"12/31/2020"}}, 1},
	}

	for _, tt := range tests {
		listing, err := view.List(ctx, tt.params, Page{})
		if err != nil {
			t.Errorf("%s: failed to list: %v", tt.name, err)
			continue
		}
		if len(listing.Items) != tt.want {
			t.Errorf("%s: expected %d items, got %v", tt.name, tt.want, titles(listing.Items))
		}
	}
}

func TestSQLStoreEscapesLikeWildcards(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()
	if err := store.Insert(ctx, "articles", query.Record{"title": "100% coverage"}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	items, err := store.Find(ctx, "articles", query.Contains("title", "%"), Page{})
	if err != nil {
		t.Fatalf("Failed to find: %v", err)
	}
	if len(items) != 1 || items[0]["title"] != "100% coverage" {
		t.Errorf("Expected only the literal percent match, got %v", titles(items))
	}
}

func TestSelectStatementPostgres(t *testing.T) {
	pred := query.AndOf(query.Contains("title", "go"), query.Is("featured", true))
	stmt, args, err := selectStatement("articles", pred, Page{Limit: 10, Offset: 20}, query.Postgres)
	if err != nil {
		t.Fatalf("Failed to build statement: %v", err)
	}

	want := `SELECT * FROM "articles" WHERE ("title" ILIKE $1 ESCAPE '\') AND ("featured" = $2) LIMIT $3 OFFSET $4`
	if stmt != want {
		t.Errorf("Expected %s, got %s", want, stmt)
	}
	if len(args) != 4 || args[2] != 10 || args[3] != 20 {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestSelectStatementRejectsBadCollection(t *testing.T) {
	for _, name := range []string{"articles; DROP TABLE x", "author__name", ""} {
		if _, _, err := selectStatement(name, query.All(), Page{}, query.SQLite); !errors.Is(err, query.ErrInvalidField) {
			t.Errorf("Expected ErrInvalidField for %q, got %v", name, err)
		}
	}
}

func TestMemoryStoreLoadJSON(t *testing.T) {
	store := NewMemoryStore()
	fixtures := `{"articles": [
		{"title": "Go modules", "created": "2021-08-20", "featured": true},
		{"title": "Rust ownership", "created": "2021-03-05", "featured": false}
	], "empty": []}`
	if err := store.LoadJSON(strings.NewReader(fixtures)); err != nil {
		t.Fatalf("Failed to load fixtures: %v", err)
	}

	ctx := context.Background()
	pred := query.AndOf(query.Gte("created", day(2021, 6, 1)), query.Is("featured", true))
	items, err := store.Find(ctx, "articles", pred, Page{})
	if err != nil {
		t.Fatalf("Failed to find: %v", err)
	}
	if got := titles(items); len(got) != 1 || got[0] != "Go modules" {
		t.Errorf("Unexpected items: %v", got)
	}

	empty, err := store.Find(ctx, "empty", query.All(), Page{})
	if err != nil {
		t.Fatalf("Expected empty collection to exist: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no records, got %d", len(empty))
	}
}
