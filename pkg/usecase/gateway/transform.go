package gateway

import (
	"context"
	"strings"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// GenerateInput is the identity portrait request. Reference is mandatory.
type GenerateInput struct {
	Prompt    string
	Logo      *model.Image
	Reference *model.Image
	Attire    model.AttireType
	Pose      model.Pose
}

// Generate renders the person in Reference with the configured pose, attire
// and optional logo.
func (g *Gateway) Generate(ctx context.Context, input GenerateInput) (*model.Image, error) {
	key, err := g.apiKey()
	if err != nil {
		return nil, err
	}
	if input.Reference == nil {
		return nil, goerr.Wrap(model.ErrReferenceImageRequired, "cannot generate portrait")
	}

	pose, ok := g.catalog.Pose(input.Pose)
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidIdentityConfig, "unknown pose",
			goerr.V("category", input.Pose.Category), goerr.V("variant", input.Pose.Variant))
	}
	attire, ok := g.catalog.Attire(input.Attire)
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidIdentityConfig, "unknown attire", goerr.V("attire", input.Attire))
	}

	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		prompt = DefaultPortraitPrompt
	}

	text, err := render(generatePromptTmpl, generatePromptInput{
		Prompt:   prompt,
		Pose:     pose,
		Attire:   attire,
		WithLogo: input.Logo != nil,
	})
	if err != nil {
		return nil, err
	}

	var parts []*genai.Part
	if input.Logo != nil {
		parts = append(parts, imagePart(input.Logo))
	}
	parts = append(parts, imagePart(input.Reference), genai.NewPartFromText(text))

	return g.transform(ctx, key, "generate", parts)
}

// Enhance applies the instruction set of a catalog preset
func (g *Gateway) Enhance(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error) {
	key, err := g.apiKey()
	if err != nil {
		return nil, err
	}

	preset, ok := g.catalog.Preset(presetID)
	if !ok || preset.Instruction == "" {
		return nil, goerr.Wrap(model.ErrUnknownPreset, "cannot enhance image", goerr.V("preset", presetID))
	}
	if img == nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "image is required for enhancement")
	}

	parts := []*genai.Part{imagePart(img), genai.NewPartFromText(preset.Instruction)}
	return g.transform(ctx, key, "enhance", parts)
}

// Edit applies a free-text edit request
func (g *Gateway) Edit(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
	key, err := g.apiKey()
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "image is required for editing")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "edit request is empty")
	}

	text, err := render(editPromptTmpl, struct{ Request string }{request})
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{imagePart(img), genai.NewPartFromText(text)}
	return g.transform(ctx, key, "edit", parts)
}

func (g *Gateway) transform(ctx context.Context, key, op string, parts []*genai.Part) (*model.Image, error) {
	client, err := g.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SafetySettings: safetySettings(),
	}

	resp, err := withRetry(ctx, g.retry, g.logger, op, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return client.GenerateImage(ctx, contents, config)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "image request failed", goerr.V("operation", op))
	}

	return extractImage(resp, op)
}
