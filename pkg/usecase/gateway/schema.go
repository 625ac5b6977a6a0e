package gateway

import (
	_ "embed"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed analysis_schema.json
var analysisSchemaRaw []byte

// analysisSchema is the fixed contract of the analyze response. The same
// document drives the model's structured output and validates what comes back.
type analysisSchema struct {
	genai    *genai.Schema
	resolved *jsonschema.Resolved
}

func loadAnalysisSchema() (*analysisSchema, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(analysisSchemaRaw, &schema); err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis schema")
	}

	converted, err := convertJSONSchemaToGenai(&schema)
	if err != nil {
		return nil, err
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve analysis schema")
	}

	return &analysisSchema{genai: converted, resolved: resolved}, nil
}

// validate checks a decoded JSON document against the schema
func (s *analysisSchema) validate(instance any) error {
	if err := s.resolved.Validate(instance); err != nil {
		return goerr.Wrap(err, "analysis does not match schema")
	}
	return nil
}

// convertJSONSchemaToGenai converts JSON Schema to Gemini genai.Schema. A
// ["T", "null"] type union becomes a nullable T.
func convertJSONSchemaToGenai(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	out := &genai.Schema{}

	typeName := schema.Type
	if typeName == "" {
		for _, t := range schema.Types {
			if t == "null" {
				nullable := true
				out.Nullable = &nullable
				continue
			}
			typeName = t
		}
	}

	switch typeName {
	case "object":
		out.Type = genai.TypeObject
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	case "":
	default:
		return nil, goerr.New("unsupported schema type", goerr.V("type", typeName))
	}

	out.Description = schema.Description

	for _, v := range schema.Enum {
		if s, ok := v.(string); ok {
			out.Enum = append(out.Enum, s)
		}
	}

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			converted, err := convertJSONSchemaToGenai(prop)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema", goerr.V("property", name))
			}
			out.Properties[name] = converted
		}
	}

	if len(schema.Required) > 0 {
		out.Required = schema.Required
	}

	if schema.Items != nil {
		converted, err := convertJSONSchemaToGenai(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		out.Items = converted
	}

	return out, nil
}
