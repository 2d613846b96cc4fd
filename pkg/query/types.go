// ABOUTME: Predicate tree types for search filters
// ABOUTME: Field conditions combined with AND / OR into immutable trees

package query

import (
	"fmt"
	"strings"
	"time"
)

// Operator identifies the comparison a Condition performs
type Operator int

const (
	OpContains Operator = iota // case-insensitive substring
	OpEquals
	OpRange // inclusive [From, To]
	OpGte
	OpLte
	OpIn
	OpIs
)

func (o Operator) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpEquals:
		return "equals"
	case OpRange:
		return "range"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpIn:
		return "in"
	case OpIs:
		return "is"
	default:
		return "unknown"
	}
}

// LogicKind is the combinator of a Logical node
type LogicKind int

const (
	And LogicKind = iota
	Or
)

func (k LogicKind) String() string {
	if k == Or {
		return "OR"
	}
	return "AND"
}

// Node is an element of a predicate tree
type Node interface {
	String() string
	node()
}

// Record is a single row handed to Match. Related rows are nested records
// (or slices of them) keyed by the relation name.
type Record map[string]any

// Bounds is the value of an OpRange condition
type Bounds struct {
	From time.Time
	To   time.Time
}

// Condition is a single (field, operator, value) test
type Condition struct {
	Field string
	Op    Operator
	Value any
}

func (Condition) node() {}

// String renders the condition compactly, e.g. "title~go" or "created>=2020-01-01".
func (c Condition) String() string {
	switch c.Op {
	case OpContains:
		return fmt.Sprintf("%s~%s", c.Field, formatValue(c.Value))
	case OpEquals, OpIs:
		return fmt.Sprintf("%s=%s", c.Field, formatValue(c.Value))
	case OpGte:
		return fmt.Sprintf("%s>=%s", c.Field, formatValue(c.Value))
	case OpLte:
		return fmt.Sprintf("%s<=%s", c.Field, formatValue(c.Value))
	case OpRange:
		b, _ := c.Value.(Bounds)
		return fmt.Sprintf("%s IN [%s,%s]", c.Field, formatValue(b.From), formatValue(b.To))
	case OpIn:
		vals, _ := c.Value.([]string)
		return fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(vals, ","))
	}
	return fmt.Sprintf("%s ?%v", c.Field, c.Value)
}

// Logical combines child nodes. Children are private so a built tree
// cannot be changed after construction.
type Logical struct {
	kind     LogicKind
	children []Node
}

func (*Logical) node() {}

// Kind returns the combinator
func (l *Logical) Kind() LogicKind { return l.kind }

// Children returns a copy of the child nodes
func (l *Logical) Children() []Node {
	out := make([]Node, len(l.children))
	copy(out, l.children)
	return out
}

func (l *Logical) String() string {
	parts := make([]string, len(l.children))
	for i, child := range l.children {
		s := child.String()
		if inner, ok := child.(*Logical); ok && inner.kind != l.kind {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+l.kind.String()+" ")
}

type allNode struct{}

func (allNode) node()          {}
func (allNode) String() string { return "ALL" }

// All returns the identity predicate, which matches every record
func All() Node { return allNode{} }

// IsAll reports whether n is the identity predicate
func IsAll(n Node) bool {
	_, ok := n.(allNode)
	return n == nil || ok
}

// AndOf combines nodes with AND
func AndOf(nodes ...Node) Node { return combine(And, nodes) }

// OrOf combines nodes with OR
func OrOf(nodes ...Node) Node { return combine(Or, nodes) }

// combine drops identity children the way an empty filter object is
// absorbed when composed, and unwraps single-child combinators.
func combine(kind LogicKind, nodes []Node) Node {
	children := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if IsAll(n) {
			continue
		}
		children = append(children, n)
	}
	switch len(children) {
	case 0:
		return All()
	case 1:
		return children[0]
	}
	return &Logical{kind: kind, children: children}
}

// Contains builds a case-insensitive substring condition
func Contains(field, term string) Condition {
	return Condition{Field: field, Op: OpContains, Value: term}
}

// Equals builds an exact equality condition
func Equals(field string, value any) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

// Range builds an inclusive range condition
func Range(field string, from, to time.Time) Condition {
	return Condition{Field: field, Op: OpRange, Value: Bounds{From: from, To: to}}
}

// Gte builds a lower-bound condition
func Gte(field string, value time.Time) Condition {
	return Condition{Field: field, Op: OpGte, Value: value}
}

// Lte builds an upper-bound condition
func Lte(field string, value time.Time) Condition {
	return Condition{Field: field, Op: OpLte, Value: value}
}

// In builds a membership condition. The values slice is copied.
func In(field string, values []string) Condition {
	vals := make([]string, len(values))
	copy(vals, values)
	return Condition{Field: field, Op: OpIn, Value: vals}
}

// Is builds a boolean equality condition
func Is(field string, value bool) Condition {
	return Condition{Field: field, Op: OpIs, Value: value}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}
