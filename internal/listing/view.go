// Package listing attaches query-string search to record listings.
//
// A View holds a search.Translator and a Store and calls them explicitly:
// translate the request parameters, then fetch the matching records.
package listing

import (
	"context"
	"errors"
	"time"

	"github.com/nainya/simplesearch/internal/logger"
	"github.com/nainya/simplesearch/internal/metrics"
	"github.com/nainya/simplesearch/pkg/query"
	"github.com/nainya/simplesearch/pkg/search"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ErrUnknownCollection is returned by stores for collections they do not hold
var ErrUnknownCollection = errors.New("listing: unknown collection")

// Page bounds the records returned by a store
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default and maximum limit
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Store evaluates predicates against stored records
type Store interface {
	Find(ctx context.Context, collection string, pred query.Node, page Page) ([]query.Record, error)
}

// Listing is one page of search results plus what was applied
type Listing struct {
	View      string
	Items     []query.Record
	Applied   search.Applied
	Warnings  []string
	Predicate query.Node
	Page      Page
}

// View is a searchable listing of one collection
type View struct {
	name       string
	collection string
	translator *search.Translator
	store      Store
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewView creates a view. log may be nil.
func NewView(name, collection string, tr *search.Translator, store Store, log *logger.Logger, m *metrics.Metrics) *View {
	if log == nil {
		log = logger.Nop()
	}
	return &View{
		name:       name,
		collection: collection,
		translator: tr,
		store:      store,
		log:        log.ViewLogger(name),
		metrics:    m,
	}
}

// Name returns the view name
func (v *View) Name() string { return v.name }

// Translate runs only the translation step, recording metrics and logging
// ignored parameters.
func (v *View) Translate(params search.Params) (*search.Result, error) {
	res, err := v.translator.Translate(params)
	if err != nil {
		v.metrics.RecordTranslation(v.name, "error", 0)
		return nil, err
	}
	v.metrics.RecordTranslation(v.name, "success", len(res.Terms))
	for _, issue := range res.Issues() {
		v.metrics.RecordFieldIssue(v.name, issue.Param)
		v.log.LogFieldIssue(issue.Param, params.Get(issue.Param), issue.Err)
	}
	return res, nil
}

// List translates params and returns the matching page of records
func (v *View) List(ctx context.Context, params search.Params, page Page) (*Listing, error) {
	start := time.Now()
	page = page.Normalize()

	res, err := v.Translate(params)
	if err != nil {
		return nil, err
	}

	items, err := v.store.Find(ctx, v.collection, res.Predicate, page)
	duration := time.Since(start)
	if err != nil {
		v.metrics.RecordListing(v.name, "error", 0, duration)
		v.log.LogListing(res.Predicate.String(), len(res.Terms), 0, duration, err)
		return nil, err
	}
	v.metrics.RecordListing(v.name, "success", len(items), duration)
	v.log.LogListing(res.Predicate.String(), len(res.Terms), len(items), duration, nil)

	listing := &Listing{
		View:      v.name,
		Items:     items,
		Applied:   res.Applied,
		Predicate: res.Predicate,
		Page:      page,
	}
	for _, issue := range res.Issues() {
		listing.Warnings = append(listing.Warnings, issue.Message())
	}
	return listing, nil
}
