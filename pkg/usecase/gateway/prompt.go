package gateway

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemInstruction string

//go:embed prompt/analyze.md
var analyzePromptRaw string

//go:embed prompt/edit.md
var editPromptRaw string

//go:embed prompt/generate.md
var generatePromptRaw string

var (
	analyzePromptTmpl  = template.Must(template.New("analyze").Parse(analyzePromptRaw))
	editPromptTmpl     = template.Must(template.New("edit").Parse(editPromptRaw))
	generatePromptTmpl = template.Must(template.New("generate").Parse(generatePromptRaw))
)

// DefaultPortraitPrompt is used when the user leaves the description blank.
const DefaultPortraitPrompt = "The exact person depicted in the reference image, maintaining their exact grooming and features."

type generatePromptInput struct {
	Prompt   string
	Pose     model.PoseConfig
	Attire   model.AttireSpec
	WithLogo bool
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return strings.TrimSpace(buf.String()), nil
}
