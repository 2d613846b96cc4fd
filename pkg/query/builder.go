// ABOUTME: Fluent builder for predicate trees
// ABOUTME: Accumulates sub-predicates and joins them with AND on Build

package query

import "time"

// Builder provides a fluent interface for building a conjunction
type Builder struct {
	nodes []Node
}

// NewBuilder creates an empty builder. Build on an empty builder returns All().
func NewBuilder() *Builder {
	return &Builder{}
}

// Where adds a sub-predicate
func (b *Builder) Where(n Node) *Builder {
	b.nodes = append(b.nodes, n)
	return b
}

// Contains adds a case-insensitive substring condition
func (b *Builder) Contains(field, term string) *Builder {
	return b.Where(Contains(field, term))
}

// Equals adds an equality condition
func (b *Builder) Equals(field string, value any) *Builder {
	return b.Where(Equals(field, value))
}

// Between adds an inclusive range condition
func (b *Builder) Between(field string, from, to time.Time) *Builder {
	return b.Where(Range(field, from, to))
}

// In adds a membership condition
func (b *Builder) In(field string, values []string) *Builder {
	return b.Where(In(field, values))
}

// Is adds a boolean condition
func (b *Builder) Is(field string, value bool) *Builder {
	return b.Where(Is(field, value))
}

// AnyOf adds a disjunction of the given nodes
func (b *Builder) AnyOf(nodes ...Node) *Builder {
	return b.Where(OrOf(nodes...))
}

// Len returns the number of accumulated sub-predicates
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Build returns the constructed predicate. The builder can keep being used;
// later calls do not affect trees already built.
func (b *Builder) Build() Node {
	return AndOf(b.nodes...)
}
