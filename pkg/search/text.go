package search

import "github.com/nainya/simplesearch/pkg/query"

// TextQuery builds the free-text predicate: every term must match at least
// one of the fields. Leaves are case-insensitive substring tests, or
// equality when exact is set. A query without terms matches everything.
func TextQuery(queryString string, fields []string, exact bool) (query.Node, error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{Reason: "text search needs at least one field"}
	}

	terms := NormalizeQuery(queryString)
	perTerm := make([]query.Node, 0, len(terms))
	for _, term := range terms {
		perField := make([]query.Node, 0, len(fields))
		for _, field := range fields {
			if exact {
				perField = append(perField, query.Equals(field, term))
			} else {
				perField = append(perField, query.Contains(field, term))
			}
		}
		perTerm = append(perTerm, query.OrOf(perField...))
	}
	return query.AndOf(perTerm...), nil
}
