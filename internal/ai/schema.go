package ai

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

// Type is a JSON schema type.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema is the provider-neutral response schema. It marshals to plain
// JSON Schema and converts to each provider's native form.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Nullable    bool               `json:"-"`
}

// String, Array and Object build schemas tersely.
func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func Array(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// wrapRoot puts a non-object schema under a "result" property, for
// providers that only accept object roots.
func wrapRoot(s *Schema) (*Schema, bool) {
	if s.Type == TypeObject {
		return s, false
	}
	return Object(map[string]*Schema{"result": s}, "result"), true
}

// unwrapRoot extracts the "result" property produced by a wrapped schema.
func unwrapRoot(raw string) (string, error) {
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", err
	}
	return string(env.Result), nil
}

func (s *Schema) toGenai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Items:       s.Items.toGenai(),
		Required:    s.Required,
	}
	if s.Nullable {
		nullable := true
		out.Nullable = &nullable
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.toGenai()
		}
	}
	return out
}

func genaiType(t Type) genai.Type {
	switch t {
	case TypeString:
		return genai.TypeString
	case TypeInteger:
		return genai.TypeInteger
	case TypeNumber:
		return genai.TypeNumber
	case TypeBoolean:
		return genai.TypeBoolean
	case TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

func (s *Schema) toOpenAI() jsonschema.Definition {
	def := jsonschema.Definition{
		Type:        jsonschema.DataType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if s.Items != nil {
		items := s.Items.toOpenAI()
		def.Items = &items
	}
	if len(s.Properties) > 0 {
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, p := range s.Properties {
			def.Properties[name] = p.toOpenAI()
		}
	}
	return def
}
