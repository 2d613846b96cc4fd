// ABOUTME: Loads model definitions from JSON schema files
// ABOUTME: Documents are validated with gojsonschema before decoding

package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema is the JSON Schema every model file must satisfy
const definitionSchema = `{
  "type": "object",
  "required": ["models"],
  "properties": {
    "models": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "fields"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "fields": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name", "kind"],
              "properties": {
                "name": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
                "kind": {"type": "string"},
                "related": {"type": "string"},
                "choices": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["value"],
                    "properties": {
                      "value": {"type": "string"},
                      "label": {"type": "string"}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledDefinition *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
	if err != nil {
		panic(fmt.Sprintf("schema: invalid definition schema: %v", err))
	}
	compiledDefinition = s
}

type fileDoc struct {
	Models []struct {
		Name   string `json:"name"`
		Fields []struct {
			Name    string   `json:"name"`
			Kind    string   `json:"kind"`
			Related string   `json:"related"`
			Choices []Choice `json:"choices"`
		} `json:"fields"`
	} `json:"models"`
}

// LoadFile reads model definitions from a JSON file
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads model definitions, validates them and checks that every
// relation targets a defined model.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to read definitions: %w", err)
	}

	result, err := compiledDefinition.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("schema: definitions invalid: %s", strings.Join(errs, "; "))
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: failed to decode definitions: %w", err)
	}

	reg := NewRegistry()
	for _, dm := range doc.Models {
		m := &Model{Name: dm.Name}
		for _, df := range dm.Fields {
			kind, err := ParseKind(df.Kind)
			if err != nil {
				return nil, fmt.Errorf("%w (model %s, field %s)", err, dm.Name, df.Name)
			}
			if kind.IsRelation() && df.Related == "" {
				return nil, fmt.Errorf("schema: relation %s.%s has no related model", dm.Name, df.Name)
			}
			m.Fields = append(m.Fields, &Field{
				Name:    df.Name,
				Kind:    kind,
				Choices: df.Choices,
				Related: df.Related,
			})
		}
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	for _, name := range reg.Names() {
		m, _ := reg.Model(name)
		for _, f := range m.Fields {
			if !f.Kind.IsRelation() {
				continue
			}
			if _, ok := reg.Model(f.Related); !ok {
				return nil, fmt.Errorf("schema: relation %s.%s points at unknown model %q", m.Name, f.Name, f.Related)
			}
		}
	}
	return reg, nil
}
