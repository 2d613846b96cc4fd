// ABOUTME: In-memory evaluation of predicate trees
// ABOUTME: Walks "__" relation paths through nested records

package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PathSeparator splits a field path into relation hops
const PathSeparator = "__"

// RelatedKey is the key of a nested record a relation field is compared by
const RelatedKey = "id"

// Match reports whether the record satisfies the predicate
func Match(n Node, rec Record) bool {
	switch node := n.(type) {
	case nil, allNode:
		return true
	case Condition:
		for _, v := range lookup(rec, strings.Split(node.Field, PathSeparator)) {
			if matchValue(node, v) {
				return true
			}
		}
		return false
	case *Logical:
		if node.kind == Or {
			for _, child := range node.children {
				if Match(child, rec) {
					return true
				}
			}
			return false
		}
		for _, child := range node.children {
			if !Match(child, rec) {
				return false
			}
		}
		return true
	}
	return false
}

// lookup returns every value reachable by following path. A to-many
// relation (slice of records) yields one value per related record.
func lookup(v any, path []string) []any {
	if len(path) == 0 {
		return []any{v}
	}
	switch t := v.(type) {
	case Record:
		next, ok := t[path[0]]
		if !ok {
			return nil
		}
		return lookup(next, path[1:])
	case map[string]any:
		return lookup(Record(t), path)
	case []Record:
		var out []any
		for _, r := range t {
			out = append(out, lookup(r, path)...)
		}
		return out
	case []any:
		var out []any
		for _, r := range t {
			out = append(out, lookup(r, path)...)
		}
		return out
	}
	return nil
}

func matchValue(c Condition, actual any) bool {
	if c.Op == OpIn || c.Op == OpEquals {
		actual = relatedKey(actual)
	}
	if actual == nil {
		return false
	}
	switch c.Op {
	case OpContains:
		term, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(stringify(actual)), strings.ToLower(term))
	case OpEquals:
		cmp, ok := compare(actual, c.Value)
		return ok && cmp == 0
	case OpIs:
		want, _ := c.Value.(bool)
		got, ok := toBool(actual)
		return ok && got == want
	case OpIn:
		vals, _ := c.Value.([]string)
		s := stringify(actual)
		for _, v := range vals {
			if v == s {
				return true
			}
		}
		return false
	case OpGte:
		cmp, ok := compare(actual, c.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compare(actual, c.Value)
		return ok && cmp <= 0
	case OpRange:
		b, ok := c.Value.(Bounds)
		if !ok {
			return false
		}
		lo, ok1 := compare(actual, b.From)
		hi, ok2 := compare(actual, b.To)
		return ok1 && ok2 && lo >= 0 && hi <= 0
	}
	return false
}

// relatedKey replaces a nested record with its key so relation fields
// compare like the foreign key column they stand for
func relatedKey(v any) any {
	switch t := v.(type) {
	case Record:
		return t[RelatedKey]
	case map[string]any:
		return t[RelatedKey]
	}
	return v
}

// compare orders actual against expected: times chronologically, numbers
// numerically, everything else by string form. Two strings always compare
// as strings. The second result is false when actual cannot be compared
// with expected at all.
func compare(actual, expected any) (int, bool) {
	if et, ok := expected.(time.Time); ok {
		at, ok := toTime(actual)
		if !ok {
			return 0, false
		}
		return at.Compare(et), true
	}
	if isText(actual) && isText(expected) {
		return strings.Compare(stringify(actual), stringify(expected)), true
	}
	if ef, ok := toFloat(expected); ok {
		if af, ok := toFloat(actual); ok {
			switch {
			case af < ef:
				return -1, true
			case af > ef:
				return 1, true
			}
			return 0, true
		}
	}
	return strings.Compare(stringify(actual), stringify(expected)), true
}

func isText(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, sqliteTimeLayout, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int64:
		return t != 0, true
	case int:
		return t != 0, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}
