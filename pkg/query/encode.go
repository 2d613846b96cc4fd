// ABOUTME: Wire form of predicate trees
// ABOUTME: Encodes nodes as protobuf Struct values and protojson

package query

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct encodes the predicate as a protobuf Struct:
//
//	{"all": true}
//	{"and": [...]} / {"or": [...]}
//	{"field": "created", "op": "range", "value": {"from": "...", "to": "..."}}
func ToStruct(n Node) (*structpb.Struct, error) {
	m, err := toMap(n)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// MarshalJSON renders the predicate's Struct form with protojson
func MarshalJSON(n Node) ([]byte, error) {
	st, err := ToStruct(n)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{UseProtoNames: true}.Marshal(st)
}

func toMap(n Node) (map[string]any, error) {
	switch node := n.(type) {
	case nil, allNode:
		return map[string]any{"all": true}, nil
	case Condition:
		return map[string]any{
			"field": node.Field,
			"op":    node.Op.String(),
			"value": wireValue(node.Value),
		}, nil
	case *Logical:
		children := make([]any, 0, len(node.children))
		for _, child := range node.children {
			m, err := toMap(child)
			if err != nil {
				return nil, err
			}
			children = append(children, m)
		}
		key := "and"
		if node.kind == Or {
			key = "or"
		}
		return map[string]any{key: children}, nil
	}
	return nil, fmt.Errorf("query: cannot encode %T", n)
}

func wireValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case Bounds:
		return map[string]any{
			"from": t.From.Format(time.RFC3339),
			"to":   t.To.Format(time.RFC3339),
		}
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case string, bool, float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return fmt.Sprint(v)
}
