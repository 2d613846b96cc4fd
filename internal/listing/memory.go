package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/nainya/simplesearch/pkg/query"
)

// MemoryStore keeps records in memory and filters them with query.Match
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]query.Record
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]query.Record)}
}

// Insert appends records to a collection, creating it if needed
func (s *MemoryStore) Insert(collection string, recs ...query.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], recs...)
}

// LoadJSON inserts fixtures shaped {"collection": [{...}, ...]}
func (s *MemoryStore) LoadJSON(r io.Reader) error {
	var fixtures map[string][]query.Record
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return fmt.Errorf("failed to decode fixtures: %w", err)
	}
	for collection, recs := range fixtures {
		s.Insert(collection, recs...)
	}
	return nil
}

// Find returns matching records in insertion order
func (s *MemoryStore) Find(ctx context.Context, collection string, pred query.Node, page Page) ([]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	page = page.Normalize()
	out := make([]query.Record, 0)
	skipped := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !query.Match(pred, rec) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if len(out) == page.Limit {
			break
		}
	}
	return out, nil
}
