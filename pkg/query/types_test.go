// ABOUTME: Tests for predicate tree construction
// ABOUTME: Verifies identity absorption, rendering and immutability

package query

import (
	"testing"
	"time"
)

func TestAndOfDropsIdentity(t *testing.T) {
	n := AndOf(All(), Contains("title", "go"), All())

	c, ok := n.(Condition)
	if !ok {
		t.Fatalf("Expected single Condition, got %T", n)
	}
	if c.Field != "title" || c.Op != OpContains {
		t.Errorf("Unexpected condition: %v", c)
	}
}

func TestCombineEmptyIsAll(t *testing.T) {
	if !IsAll(AndOf()) {
		t.Error("AndOf() should be the identity predicate")
	}
	if !IsAll(OrOf(All(), All())) {
		t.Error("OrOf of identities should be the identity predicate")
	}
	if !IsAll(nil) {
		t.Error("nil should be treated as the identity predicate")
	}
}

func TestLogicalString(t *testing.T) {
	n := AndOf(
		OrOf(Contains("x", "a"), Contains("y", "a")),
		OrOf(Contains("x", "b"), Contains("y", "b")),
	)

	want := "(x~a OR y~a) AND (x~b OR y~b)"
	if n.String() != want {
		t.Errorf("Expected %q, got %q", want, n.String())
	}
}

func TestConditionString(t *testing.T) {
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		cond Condition
		want string
	}{
		{Gte("created", day), "created>=2020-01-01"},
		{Lte("created", day), "created<=2020-01-01"},
		{Range("created", day, day.AddDate(0, 1, 0)), "created IN [2020-01-01,2020-02-01]"},
		{In("status", []string{"a", "b"}), "status IN (a,b)"},
		{Is("active", true), "active=true"},
		{Equals("slug", "intro"), "slug=intro"},
	}

	for _, tt := range tests {
		if got := tt.cond.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestInCopiesValues(t *testing.T) {
	values := []string{"a", "b"}
	c := In("status", values)
	values[0] = "changed"

	got := c.Value.([]string)
	if got[0] != "a" {
		t.Errorf("Expected In to copy its values, got %v", got)
	}
}

func TestLogicalChildrenIsCopy(t *testing.T) {
	n := OrOf(Contains("x", "a"), Contains("y", "a")).(*Logical)

	children := n.Children()
	children[0] = Contains("z", "zzz")

	if n.String() != "x~a OR y~a" {
		t.Errorf("Tree changed through Children(): %s", n.String())
	}
	if n.Kind() != Or {
		t.Errorf("Expected OR, got %s", n.Kind())
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	if !IsAll(b.Build()) {
		t.Error("Empty builder should build the identity predicate")
	}

	first := b.Contains("title", "go").Build()
	b.Is("published", true)
	second := b.Build()

	if first.String() != "title~go" {
		t.Errorf("Earlier build changed: %s", first.String())
	}
	if second.String() != "title~go AND published=true" {
		t.Errorf("Unexpected build: %s", second.String())
	}
	if b.Len() != 2 {
		t.Errorf("Expected 2 sub-predicates, got %d", b.Len())
	}
}
