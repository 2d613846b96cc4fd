// Package app wires configuration into stores, translators and views
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/nainya/simplesearch/internal/config"
	"github.com/nainya/simplesearch/internal/listing"
	"github.com/nainya/simplesearch/internal/logger"
	"github.com/nainya/simplesearch/internal/metrics"
	"github.com/nainya/simplesearch/pkg/schema"
	"github.com/nainya/simplesearch/pkg/search"
)

// App holds everything built from a Config
type App struct {
	Config   *config.Config
	Registry *schema.Registry
	Store    listing.Store
	Views    []*listing.View

	closers []func()
}

// Build opens the configured store and creates one view per declaration
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Schema.Path != "" {
		reg, err := schema.LoadFile(cfg.Schema.Path)
		if err != nil {
			return nil, err
		}
		a.Registry = reg
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	for _, vc := range cfg.Views {
		tr, err := a.Translator(vc)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("view %s: %w", vc.Name, err)
		}
		if mem, ok := store.(*listing.MemoryStore); ok {
			// views over an empty memory store list nothing rather than fail
			mem.Insert(vc.CollectionName())
		}
		a.Views = append(a.Views, listing.NewView(vc.Name, vc.CollectionName(), tr, store, log, m))
	}
	return a, nil
}

// Translator builds the translator for one view declaration
func (a *App) Translator(vc config.ViewConfig) (*search.Translator, error) {
	date, err := a.Config.DateOptions()
	if err != nil {
		return nil, err
	}
	sc := vc.SearchConfig(date)
	if vc.Auto {
		if a.Registry == nil {
			return nil, &search.ConfigurationError{Reason: "auto fields need a schema"}
		}
		return a.Registry.Translator(vc.Model, vc.Fields, sc)
	}
	return search.NewTranslator(sc)
}

// View returns the view with the given name
func (a *App) View(name string) (*listing.View, bool) {
	for _, v := range a.Views {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Close releases the store
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) (listing.Store, error) {
	sc := a.Config.Store
	switch sc.Driver {
	case "memory":
		store := listing.NewMemoryStore()
		if sc.DSN != "" {
			f, err := os.Open(sc.DSN)
			if err != nil {
				return nil, fmt.Errorf("failed to open fixtures: %w", err)
			}
			defer f.Close()
			if err := store.LoadJSON(f); err != nil {
				return nil, err
			}
		}
		return store, nil
	case "sqlite":
		store, err := listing.OpenSQLite(sc.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })
		return store, nil
	case "postgres":
		store, err := listing.OpenPostgres(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
}
