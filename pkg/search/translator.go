package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nainya/simplesearch/pkg/query"
)

// Default query-string parameter names
const (
	DefaultQueryParam    = "q"
	DefaultDateFromParam = "df"
	DefaultDateToParam   = "dt"
)

// Params is a parsed query string. It has the shape of url.Values, so
// Params(r.URL.Query()) converts directly.
type Params map[string][]string

// Get returns the last value for key, or "" when absent
func (p Params) Get(key string) string {
	vals := p[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// List returns every value for key
func (p Params) List(key string) []string {
	return p[key]
}

// Applied records the values that actually produced predicates, keyed by
// parameter name, for re-rendering search forms.
type Applied map[string]string

// Merge copies other into a. Later values win.
func (a Applied) Merge(other Applied) {
	for k, v := range other {
		a[k] = v
	}
}

// FieldResult is the per-parameter outcome of a translation. Err is set
// only for recoverable failures; the parameter then contributes no predicate.
type FieldResult struct {
	Param     string
	Category  Category
	Predicate query.Node
	Err       error
}

// Message is the user-facing warning for a failed field
func (r FieldResult) Message() string {
	var dfe *DateFormatError
	if errors.As(r.Err, &dfe) {
		return fmt.Sprintf("Invalid date. Please use %s.", dfe.Format)
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Result is the outcome of Translate
type Result struct {
	Predicate query.Node
	Applied   Applied
	Fields    []FieldResult
	Terms     []string
}

// Issues returns the recoverable failures
func (r *Result) Issues() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Config declares which fields are searched and how parameters are named
type Config struct {
	QueryParam    string
	DateFromParam string
	DateToParam   string
	Fields        FieldSet
	// Exact switches text search from substring to equality
	Exact bool
	Date  DateOptions
}

// Validate fills default parameter names and checks that fields are declared
func (c *Config) Validate() error {
	if c.Fields.Empty() {
		return &ConfigurationError{Reason: "please provide at least one of fields, date fields, choice fields or bool fields"}
	}
	if c.QueryParam == "" {
		c.QueryParam = DefaultQueryParam
	}
	if c.DateFromParam == "" {
		c.DateFromParam = DefaultDateFromParam
	}
	if c.DateToParam == "" {
		c.DateToParam = DefaultDateToParam
	}
	return nil
}

// Translator turns query-string parameters into one predicate. It holds only
// its configuration and is safe for concurrent use.
type Translator struct {
	cfg Config
}

// NewTranslator creates a translator for the given configuration
func NewTranslator(cfg Config) (*Translator, error) {
	cfg.Fields = cfg.Fields.clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Translator{cfg: cfg}, nil
}

// NewTranslatorFor categorizes bare field names and creates a translator.
// Any field set in cfg.Fields is replaced.
func NewTranslatorFor(fields []string, categorize Categorizer, cfg Config) (*Translator, error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{Reason: "please provide at least one field"}
	}
	fs, err := Classify(fields, categorize)
	if err != nil {
		return nil, err
	}
	cfg.Fields = fs
	return NewTranslator(cfg)
}

// Config returns a copy of the effective configuration
func (t *Translator) Config() Config {
	cfg := t.cfg
	cfg.Fields = cfg.Fields.clone()
	return cfg
}

// Translate builds the AND of every sub-predicate the parameters ask for.
// A date bound that does not parse is reported in Result.Fields and the
// remaining parameters still apply; an invalid boolean fails the call.
func (t *Translator) Translate(params Params) (*Result, error) {
	res := &Result{Applied: Applied{}}
	b := query.NewBuilder()

	if len(t.cfg.Fields.Text) > 0 {
		raw := params.Get(t.cfg.QueryParam)
		if strings.TrimSpace(raw) != "" {
			n, err := TextQuery(raw, t.cfg.Fields.Text, t.cfg.Exact)
			if err != nil {
				return nil, err
			}
			res.Applied[t.cfg.QueryParam] = raw
			res.Terms = NormalizeQuery(raw)
			res.Fields = append(res.Fields, FieldResult{Param: t.cfg.QueryParam, Category: CategoryText, Predicate: n})
			b.Where(n)
		}
	}

	if len(t.cfg.Fields.Date) > 0 {
		fr, ok, err := t.translateDates(params, res.Applied)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Fields = append(res.Fields, fr)
			b.Where(fr.Predicate)
		}
	}

	for _, field := range t.cfg.Fields.Choice {
		values := CleanChoices(params.List(field))
		if len(values) == 0 {
			continue
		}
		n := ChoiceQuery(values, field)
		res.Applied[field] = strings.Join(values, ", ")
		res.Fields = append(res.Fields, FieldResult{Param: field, Category: CategoryChoice, Predicate: n})
		b.Where(n)
	}

	for _, field := range t.cfg.Fields.Boolean {
		raw := params.Get(field)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := BoolQuery(raw, field)
		if err != nil {
			return nil, err
		}
		res.Applied[field] = strings.ToLower(strings.TrimSpace(raw))
		res.Fields = append(res.Fields, FieldResult{Param: field, Category: CategoryBoolean, Predicate: n})
		b.Where(n)
	}

	res.Predicate = b.Build()
	return res, nil
}

// translateDates returns ok=true when the parameters asked for a date
// filter. A format failure comes back inside the FieldResult.
func (t *Translator) translateDates(params Params, applied Applied) (FieldResult, bool, error) {
	from := params.Get(t.cfg.DateFromParam)
	to := params.Get(t.cfg.DateToParam)
	if strings.TrimSpace(from) != "" {
		applied[t.cfg.DateFromParam] = from
	}
	if strings.TrimSpace(to) != "" {
		applied[t.cfg.DateToParam] = to
	}
	if strings.TrimSpace(from) == "" && strings.TrimSpace(to) == "" {
		return FieldResult{}, false, nil
	}

	param := t.cfg.DateFromParam
	if strings.TrimSpace(from) == "" {
		param = t.cfg.DateToParam
	}

	n, err := DateQuery(from, to, t.cfg.Fields.Date, t.cfg.Date)
	if err != nil {
		var dfe *DateFormatError
		if !errors.As(err, &dfe) {
			return FieldResult{}, false, err
		}
		if dfe.Value == strings.TrimSpace(to) && dfe.Value != strings.TrimSpace(from) {
			param = t.cfg.DateToParam
		}
		fr := FieldResult{Param: param, Category: CategoryDate, Predicate: query.All(), Err: err}
		return fr, true, nil
	}
	return FieldResult{Param: param, Category: CategoryDate, Predicate: n}, true, nil
}

func (fs FieldSet) clone() FieldSet {
	return FieldSet{
		Text:    cloneStrings(fs.Text),
		Date:    cloneStrings(fs.Date),
		Choice:  cloneStrings(fs.Choice),
		Boolean: cloneStrings(fs.Boolean),
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
