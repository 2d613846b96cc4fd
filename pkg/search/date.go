package search

import (
	"strings"
	"time"

	"github.com/nainya/simplesearch/pkg/query"
)

// DateFormat pairs a Go parse layout with the form shown to users
type DateFormat struct {
	Layout  string
	Display string
}

// DefaultDateFormat is fixed-width month/day/year
var DefaultDateFormat = DateFormat{Layout: "01/02/2006", Display: "MM/DD/YYYY"}

// DateOptions controls parsing of date bounds
type DateOptions struct {
	Format DateFormat
	// Location the parsed calendar dates are interpreted in. Nil means UTC.
	Location *time.Location
}

func (o DateOptions) format() DateFormat {
	if o.Format.Layout == "" {
		return DefaultDateFormat
	}
	if o.Format.Display == "" {
		return DateFormat{Layout: o.Format.Layout, Display: o.Format.Layout}
	}
	return o.Format
}

func (o DateOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// DateRange holds the parsed, zone-aware bounds. A nil bound was not given.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDate parses one bound strictly and localizes it
func ParseDate(value string, opts DateOptions) (time.Time, error) {
	f := opts.format()
	t, err := time.ParseInLocation(f.Layout, value, opts.location())
	if err != nil {
		return time.Time{}, &DateFormatError{Value: value, Format: f.Display, Err: err}
	}
	return t, nil
}

// ParseDateRange parses the non-blank bounds. It fails on the first bound
// that does not parse and when neither bound is given.
func ParseDateRange(from, to string, opts DateOptions) (DateRange, error) {
	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, err := ParseDate(from, opts)
		if err != nil {
			return DateRange{}, err
		}
		r.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := ParseDate(to, opts)
		if err != nil {
			return DateRange{}, err
		}
		r.To = &t
	}
	if r.From == nil && r.To == nil {
		return DateRange{}, ErrMissingDateBounds
	}
	return r, nil
}

// Predicate returns, per field, an inclusive range when both bounds are
// set or a one-sided bound otherwise, OR-combined across fields.
func (r DateRange) Predicate(fields []string) (query.Node, error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{Reason: "date search needs at least one date field"}
	}
	perField := make([]query.Node, 0, len(fields))
	for _, field := range fields {
		switch {
		case r.From != nil && r.To != nil:
			perField = append(perField, query.Range(field, *r.From, *r.To))
		case r.From != nil:
			perField = append(perField, query.Gte(field, *r.From))
		case r.To != nil:
			perField = append(perField, query.Lte(field, *r.To))
		default:
			return nil, ErrMissingDateBounds
		}
	}
	return query.OrOf(perField...), nil
}

// DateQuery builds the date predicate for the given bounds
func DateQuery(from, to string, fields []string, opts DateOptions) (query.Node, error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{Reason: "date search needs at least one date field"}
	}
	r, err := ParseDateRange(from, to, opts)
	if err != nil {
		return nil, err
	}
	return r.Predicate(fields)
}
