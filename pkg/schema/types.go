// ABOUTME: Model field metadata used to categorize search fields
// ABOUTME: Field kinds, choices and relations between models

package schema

import (
	"fmt"
	"strings"
)

// Kind is the storage type of a model field
type Kind int

const (
	KindUnknown Kind = iota
	KindChar
	KindText
	KindEmail
	KindSlug
	KindURL
	KindDate
	KindDateTime
	KindBoolean
	KindInteger
	KindFloat
	KindDecimal
	KindJSON
	KindForeignKey
	KindManyToMany
)

var kindNames = map[Kind]string{
	KindChar:       "char",
	KindText:       "text",
	KindEmail:      "email",
	KindSlug:       "slug",
	KindURL:        "url",
	KindDate:       "date",
	KindDateTime:   "datetime",
	KindBoolean:    "boolean",
	KindInteger:    "integer",
	KindFloat:      "float",
	KindDecimal:    "decimal",
	KindJSON:       "json",
	KindForeignKey: "foreignkey",
	KindManyToMany: "manytomany",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind converts a kind name (as used in schema files) to a Kind
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("schema: unknown field kind %q", s)
}

// IsRelation reports whether the kind points at another model
func (k Kind) IsRelation() bool {
	return k == KindForeignKey || k == KindManyToMany
}

// Choice is one allowed value of a restricted field
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one field of a model
type Field struct {
	Name    string
	Kind    Kind
	Choices []Choice
	// Related names the target model of a relation field
	Related string
}

// HasChoices reports whether the field's values are restricted to a declared set
func (f *Field) HasChoices() bool {
	return len(f.Choices) > 0
}

// Model is a named set of fields
type Model struct {
	Name   string
	Fields []*Field
}

// Field returns the named field, or nil
func (m *Model) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns field names in declaration order
func (m *Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}
