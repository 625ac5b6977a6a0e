package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Analyze asks the model for a structured analysis of img in the given
// business context.
func (g *Gateway) Analyze(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
	key, err := g.apiKey()
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "image is required for analysis")
	}

	client, err := g.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	prompt, err := render(analyzePromptTmpl, struct{ Context string }{analysisContext})
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{imagePart(img), genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, ""),
		SafetySettings:    safetySettings(),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    g.schema.genai,
	}

	resp, err := withRetry(ctx, g.retry, g.logger, "analyze", func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return client.GenerateContent(ctx, contents, config)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze image", goerr.V("image", img.Name))
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	result, err := g.decodeAnalysis(text)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("image analyzed",
		"image", img.Name,
		"suggestions", len(result.VisualSuggestions),
		"tips", len(result.QuickEditSuggestions))

	return result, nil
}

// decodeAnalysis parses and validates the JSON returned by the model
func (g *Gateway) decodeAnalysis(text string) (*model.AnalysisResult, error) {
	text = stripCodeFence(text)

	var instance any
	if err := json.Unmarshal([]byte(text), &instance); err != nil {
		return nil, goerr.Wrap(model.ErrMalformedResponse, "analysis is not valid JSON", goerr.V("error", err.Error()))
	}
	if err := g.schema.validate(instance); err != nil {
		return nil, goerr.Wrap(model.ErrMalformedResponse, "analysis does not match schema", goerr.V("error", err.Error()))
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, goerr.Wrap(model.ErrMalformedResponse, "failed to decode analysis", goerr.V("error", err.Error()))
	}
	return &result, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
