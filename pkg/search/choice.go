package search

import (
	"strings"

	"github.com/nainya/simplesearch/pkg/query"
)

// CleanChoices drops blank entries. Callers skip ChoiceQuery when nothing is left.
func CleanChoices(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ChoiceQuery builds "field IN values"
func ChoiceQuery(values []string, field string) query.Node {
	return query.In(field, values)
}

// BoolQuery builds "field IS value" for a case-insensitive true/false literal
func BoolQuery(value, field string) (query.Node, error) {
	b, err := ParseBool(value)
	if err != nil {
		return nil, err
	}
	return query.Is(field, b), nil
}

// ParseBool accepts only "true" and "false", in any case
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &InvalidBooleanLiteralError{Value: value}
}
