package gateway

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func TestAnalysisSchemaConversion(t *testing.T) {
	s, err := loadAnalysisSchema()
	gt.NoError(t, err)
	gt.Equal(t, s.genai.Type, genai.TypeObject)
	gt.A(t, s.genai.Required).Length(5)

	attrs := s.genai.Properties["detected_attributes"]
	gt.NotNil(t, attrs)
	gt.Equal(t, attrs.Properties["size"].Enum, []string{"SMALL", "LARGE", "UNKNOWN"})

	state := attrs.Properties["product_state"]
	gt.Equal(t, state.Type, genai.TypeString)
	gt.NotNil(t, state.Nullable)
	gt.True(t, *state.Nullable)

	tips := s.genai.Properties["quick_edit_suggestions"]
	gt.Equal(t, tips.Type, genai.TypeArray)
	gt.Equal(t, tips.Items.Type, genai.TypeString)
}

func TestConvertUnsupportedType(t *testing.T) {
	_, err := convertJSONSchemaToGenai(&jsonschema.Schema{Type: "tuple"})
	gt.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	gt.Equal(t, stripCodeFence("```json\n{}\n```"), "{}")
	gt.Equal(t, stripCodeFence("```\n[]\n```"), "[]")
	gt.Equal(t, stripCodeFence("  {\"a\":1} "), "{\"a\":1}")
}
