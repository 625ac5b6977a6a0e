package gateway

import (
	"strings"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

func responseParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil
	}
	return content.Parts
}

// blocked reports whether the service refused the request on safety grounds
func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	for _, c := range resp.Candidates {
		switch c.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
			genai.FinishReasonBlocklist, genai.FinishReasonImageSafety:
			return true
		}
	}
	return false
}

// extractImage returns the first inline image of the response. An empty part
// list means the service declined to produce output.
func extractImage(resp *genai.GenerateContentResponse, op string) (*model.Image, error) {
	parts := responseParts(resp)
	if len(parts) == 0 {
		return nil, goerr.Wrap(model.ErrSafetyRejected, "no content returned", goerr.V("operation", op))
	}

	for _, part := range parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := model.NormalizeMIMEType(part.InlineData.MIMEType)
		if mimeType == "" {
			mimeType = "image/png"
		}
		return &model.Image{
			Name:     op + "-result" + extensionFor(mimeType),
			MIMEType: mimeType,
			Data:     part.InlineData.Data,
		}, nil
	}

	return nil, goerr.Wrap(model.ErrMalformedResponse, "no image data found in response", goerr.V("operation", op))
}

// extractText concatenates the text parts of the response
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	parts := responseParts(resp)
	if len(parts) == 0 {
		if blocked(resp) {
			return "", goerr.Wrap(model.ErrSafetyRejected, "analysis was blocked")
		}
		return "", goerr.Wrap(model.ErrMalformedResponse, "no response text")
	}

	var sb strings.Builder
	for _, part := range parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", goerr.Wrap(model.ErrMalformedResponse, "no response text")
	}
	return text, nil
}

func extensionFor(mimeType string) string {
	return (&model.Image{MIMEType: mimeType}).Extension()
}
