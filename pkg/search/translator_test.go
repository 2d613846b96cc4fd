package search

import (
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/nainya/simplesearch/pkg/query"
)

func newTestTranslator(t *testing.T) *Translator {
	tr, err := NewTranslator(Config{
		Fields: FieldSet{
			Text:    []string{"title", "body"},
			Date:    []string{"created"},
			Choice:  []string{"status"},
			Boolean: []string{"published"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}
	return tr
}

func TestTranslateAllCategories(t *testing.T) {
	tr := newTestTranslator(t)

	values, _ := url.ParseQuery("q=go+channels&df=01/01/2020&status=draft&status=published&status=&published=TRUE")
	res, err := tr.Translate(Params(values))
	if err != nil {
		t.Fatalf("Failed to translate: %v", err)
	}

	want := "(title~go OR body~go) AND (title~channels OR body~channels) AND created>=2020-01-01 AND status IN (draft,published) AND published=true"
	if res.Predicate.String() != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, res.Predicate)
	}

	if res.Applied["q"] != "go channels" {
		t.Errorf("Expected applied q, got %q", res.Applied["q"])
	}
	if res.Applied["df"] != "01/01/2020" {
		t.Errorf("Expected applied df, got %q", res.Applied["df"])
	}
	if _, ok := res.Applied["dt"]; ok {
		t.Error("Blank dt should not be recorded")
	}
	if res.Applied["status"] != "draft, published" {
		t.Errorf("Unexpected applied status: %q", res.Applied["status"])
	}
	if res.Applied["published"] != "true" {
		t.Errorf("Unexpected applied published: %q", res.Applied["published"])
	}
	if len(res.Terms) != 2 {
		t.Errorf("Expected 2 terms, got %v", res.Terms)
	}
	if len(res.Issues()) != 0 {
		t.Errorf("Expected no issues, got %v", res.Issues())
	}
}

func TestTranslateNoParamsMatchesAll(t *testing.T) {
	tr := newTestTranslator(t)

	res, err := tr.Translate(Params{"q": {"   "}, "status": {"", ""}})
	if err != nil {
		t.Fatalf("Failed to translate: %v", err)
	}
	if !query.IsAll(res.Predicate) {
		t.Errorf("Expected identity predicate, got %s", res.Predicate)
	}
	if len(res.Applied) != 0 {
		t.Errorf("Expected nothing applied, got %v", res.Applied)
	}
}

func TestTranslateBadDateContinues(t *testing.T) {
	tr := newTestTranslator(t)

	res, err := tr.Translate(Params{"q": {"go"}, "dt": {"13/40/2020"}})
	if err != nil {
		t.Fatalf("Bad date should not fail the call: %v", err)
	}

	if res.Predicate.String() != "title~go OR body~go" {
		t.Errorf("Expected only the text predicate, got %s", res.Predicate)
	}

	issues := res.Issues()
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if issues[0].Param != "dt" || issues[0].Category != CategoryDate {
		t.Errorf("Unexpected issue: %+v", issues[0])
	}
	if issues[0].Message() != "Invalid date. Please use MM/DD/YYYY." {
		t.Errorf("Unexpected message: %q", issues[0].Message())
	}
	if !errors.Is(issues[0].Err, ErrDateFormat) {
		t.Errorf("Expected ErrDateFormat, got %v", issues[0].Err)
	}
	if res.Applied["dt"] != "13/40/2020" {
		t.Errorf("Submitted date should still be echoed back, got %v", res.Applied)
	}
}

func TestTranslateInvalidBoolFails(t *testing.T) {
	tr := newTestTranslator(t)

	_, err := tr.Translate(Params{"published": {"maybe"}})
	if !errors.Is(err, ErrInvalidBoolean) {
		t.Errorf("Expected ErrInvalidBoolean, got %v", err)
	}
}

func TestTranslateLastValueWins(t *testing.T) {
	tr := newTestTranslator(t)

	res, err := tr.Translate(Params{"q": {"first", "second"}})
	if err != nil {
		t.Fatalf("Failed to translate: %v", err)
	}
	if res.Applied["q"] != "second" {
		t.Errorf("Expected last value, got %q", res.Applied["q"])
	}
}

func TestTranslateCustomParams(t *testing.T) {
	tr, err := NewTranslator(Config{
		QueryParam:    "search",
		DateFromParam: "from",
		DateToParam:   "to",
		Fields:        FieldSet{Text: []string{"title"}, Date: []string{"created"}},
		Exact:         true,
	})
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}

	res, err := tr.Translate(Params{"search": {"intro"}, "from": {"01/01/2020"}, "to": {"02/01/2020"}})
	if err != nil {
		t.Fatalf("Failed to translate: %v", err)
	}
	want := "title=intro AND created IN [2020-01-01,2020-02-01]"
	if res.Predicate.String() != want {
		t.Errorf("Expected %q, got %q", want, res.Predicate)
	}
}

func TestNewTranslatorNeedsFields(t *testing.T) {
	_, err := NewTranslator(Config{})

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("Expected ConfigurationError, got %v", err)
	}
}

func TestNewTranslatorFor(t *testing.T) {
	categories := map[string]Category{
		"title":     CategoryText,
		"created":   CategoryDate,
		"status":    CategoryChoice,
		"published": CategoryBoolean,
	}
	categorize := func(field string) (Category, error) {
		if c, ok := categories[field]; ok {
			return c, nil
		}
		return CategoryUnsupported, &UnsupportedFieldTypeError{Field: field, Kind: "integer"}
	}

	tr, err := NewTranslatorFor([]string{"title", "created", "status", "published"}, categorize, Config{})
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}
	fs := tr.Config().Fields
	if len(fs.Text) != 1 || len(fs.Date) != 1 || len(fs.Choice) != 1 || len(fs.Boolean) != 1 {
		t.Errorf("Unexpected field set: %+v", fs)
	}

	_, err = NewTranslatorFor([]string{"title", "views"}, categorize, Config{})
	if !errors.Is(err, ErrUnsupportedFieldType) {
		t.Errorf("Expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestTranslateConcurrent(t *testing.T) {
	tr := newTestTranslator(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := tr.Translate(Params{"q": {"go"}, "published": {"false"}})
			if err != nil {
				t.Errorf("Failed to translate: %v", err)
				return
			}
			if res.Predicate.String() != "(title~go OR body~go) AND published=false" {
				t.Errorf("Unexpected predicate: %s", res.Predicate)
			}
		}()
	}
	wg.Wait()
}

func TestConfigIsACopy(t *testing.T) {
	text := []string{"title", "body"}
	tr, err := NewTranslator(Config{Fields: FieldSet{Text: text}})
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}
	text[0] = "secret"

	cfg := tr.Config()
	cfg.Fields.Text[1] = "password"
	cfg.Fields.Choice = append(cfg.Fields.Choice, "status")

	res, err := tr.Translate(Params{"q": {"go"}, "status": {"draft"}})
	if err != nil {
		t.Fatalf("Failed to translate: %v", err)
	}
	if res.Predicate.String() != "title~go OR body~go" {
		t.Errorf("Translator fields changed through Config: %s", res.Predicate)
	}
	if got := tr.Config().Fields.Text; got[0] != "title" || got[1] != "body" {
		t.Errorf("Unexpected text fields: %v", got)
	}
}
