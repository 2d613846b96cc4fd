// ABOUTME: SQL WHERE clause rendering for predicate trees
// ABOUTME: SQLite and Postgres dialects with positional arguments

package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// sqliteTimeLayout is fixed width so stored timestamps compare correctly as text
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrInvalidField indicates a field name that cannot be used as an SQL identifier
var ErrInvalidField = errors.New("query: invalid field name")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect describes how a database spells the parts of a WHERE clause
type Dialect struct {
	Name        string
	Like        string // operator used for OpContains
	Placeholder func(n int) string
	// Arg converts a Go value into the driver argument used for comparisons
	Arg func(v any) any
}

// SQLite renders "?" placeholders and stores times as fixed-width UTC text
var SQLite = Dialect{
	Name:        "sqlite",
	Like:        "LIKE",
	Placeholder: func(int) string { return "?" },
	Arg:         SQLiteArg,
}

// Postgres renders "$n" placeholders and uses ILIKE
var Postgres = Dialect{
	Name:        "postgres",
	Like:        "ILIKE",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Arg:         func(v any) any { return v },
}

// SQLiteArg converts times into the text form used by SQLStore columns
// and booleans into 0/1.
func SQLiteArg(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(sqliteTimeLayout)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

// ToSQL renders the predicate as a WHERE clause body and its arguments
func ToSQL(n Node, d Dialect) (string, []any, error) {
	r := &sqlRenderer{dialect: d}
	clause, err := r.render(n)
	if err != nil {
		return "", nil, err
	}
	return clause, r.args, nil
}

// Column quotes a field path; "author__name" becomes "author"."name".
func Column(field string) (string, error) {
	parts := strings.Split(field, PathSeparator)
	for i, p := range parts {
		if !identPattern.MatchString(p) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, "."), nil
}

type sqlRenderer struct {
	dialect Dialect
	args    []any
}

func (r *sqlRenderer) bind(v any) string {
	r.args = append(r.args, r.dialect.Arg(v))
	return r.dialect.Placeholder(len(r.args))
}

func (r *sqlRenderer) render(n Node) (string, error) {
	switch node := n.(type) {
	case nil, allNode:
		return "1=1", nil
	case Condition:
		return r.condition(node)
	case *Logical:
		parts := make([]string, 0, len(node.children))
		for _, child := range node.children {
			s, err := r.render(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+s+")")
		}
		return strings.Join(parts, " "+node.kind.String()+" "), nil
	}
	return "", fmt.Errorf("query: unsupported node %T", n)
}

func (r *sqlRenderer) condition(c Condition) (string, error) {
	col, err := Column(c.Field)
	if err != nil {
		return "", err
	}
	switch c.Op {
	case OpContains:
		term, _ := c.Value.(string)
		return fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, r.dialect.Like, r.bind("%"+escapeLike(term)+"%")), nil
	case OpEquals, OpIs:
		return fmt.Sprintf("%s = %s", col, r.bind(c.Value)), nil
	case OpGte:
		return fmt.Sprintf("%s >= %s", col, r.bind(c.Value)), nil
	case OpLte:
		return fmt.Sprintf("%s <= %s", col, r.bind(c.Value)), nil
	case OpRange:
		b, ok := c.Value.(Bounds)
		if !ok {
			return "", fmt.Errorf("query: range on %s without bounds", c.Field)
		}
		from := r.bind(b.From)
		to := r.bind(b.To)
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, from, to), nil
	case OpIn:
		vals, _ := c.Value.([]string)
		if len(vals) == 0 {
			return "1=0", nil
		}
		marks := make([]string, len(vals))
		for i, v := range vals {
			marks[i] = r.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(marks, ", ")), nil
	}
	return "", fmt.Errorf("query: unsupported operator %s", c.Op)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
