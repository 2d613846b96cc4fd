// ABOUTME: Registry of models with relation path resolution
// ABOUTME: Maps fields to search categories, choices before storage type

package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nainya/simplesearch/pkg/query"
	"github.com/nainya/simplesearch/pkg/search"
)

// Registry holds models by name
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds or replaces a model
func (r *Registry) Register(m *Model) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("schema: model name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.Name] = m
	return nil
}

// Model returns the named model
func (r *Registry) Model(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names returns the registered model names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// Resolve walks a "__" path from model, following relation fields, and
// returns the field the path ends on.
func (r *Registry) Resolve(model, path string) (*Field, error) {
	m, ok := r.Model(model)
	if !ok {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("unknown model %q", model)}
	}

	hops := strings.Split(path, query.PathSeparator)
	for i, hop := range hops {
		f := m.Field(hop)
		if f == nil {
			return nil, &search.ConfigurationError{Reason: fmt.Sprintf("unknown field %q on model %q", hop, m.Name)}
		}
		if i == len(hops)-1 {
			return f, nil
		}
		if !f.Kind.IsRelation() {
			return nil, &search.ConfigurationError{Reason: fmt.Sprintf("field %q on model %q is not a relation", hop, m.Name)}
		}
		next, ok := r.Model(f.Related)
		if !ok {
			return nil, &search.ConfigurationError{Reason: fmt.Sprintf("relation %s.%s points at unknown model %q", m.Name, hop, f.Related)}
		}
		m = next
	}
	return nil, &search.ConfigurationError{Reason: "empty field path"}
}

// Categorize picks the search category of a field. Restricted value sets
// (declared choices or relations) always route to Choice, whatever the
// underlying storage type.
func Categorize(f *Field) (search.Category, error) {
	if f.HasChoices() || f.Kind.IsRelation() {
		return search.CategoryChoice, nil
	}
	switch f.Kind {
	case KindChar, KindText, KindEmail, KindSlug, KindURL:
		return search.CategoryText, nil
	case KindDate, KindDateTime:
		return search.CategoryDate, nil
	case KindBoolean:
		return search.CategoryBoolean, nil
	}
	return search.CategoryUnsupported, &search.UnsupportedFieldTypeError{Field: f.Name, Kind: f.Kind.String()}
}

// Categorizer returns a search.Categorizer for field paths of model
func (r *Registry) Categorizer(model string) search.Categorizer {
	return func(path string) (search.Category, error) {
		f, err := r.Resolve(model, path)
		if err != nil {
			return search.CategoryUnsupported, err
		}
		cat, err := Categorize(f)
		if err != nil {
			return cat, &search.UnsupportedFieldTypeError{Field: path, Kind: f.Kind.String()}
		}
		return cat, nil
	}
}

// Translator categorizes fields of model and builds a translator. With no
// fields, every field of the model that has a category is searched.
func (r *Registry) Translator(model string, fields []string, cfg search.Config) (*search.Translator, error) {
	if len(fields) == 0 {
		m, ok := r.Model(model)
		if !ok {
			return nil, &search.ConfigurationError{Reason: fmt.Sprintf("unknown model %q", model)}
		}
		for _, f := range m.Fields {
			if _, err := Categorize(f); err == nil {
				fields = append(fields, f.Name)
			}
		}
	}
	return search.NewTranslatorFor(fields, r.Categorizer(model), cfg)
}
