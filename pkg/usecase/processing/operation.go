package processing

import (
	"context"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Transformer is the model service boundary, implemented by *gateway.Gateway
type Transformer interface {
	Analyze(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error)
	Generate(ctx context.Context, input gateway.GenerateInput) (*model.Image, error)
	Enhance(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error)
	Edit(ctx context.Context, img *model.Image, request string) (*model.Image, error)
}

func (c *Coordinator) Analyze(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
	return run(ctx, c, KindAnalyzing, func(ctx context.Context) (*model.AnalysisResult, error) {
		return c.transformer.Analyze(ctx, img, analysisContext)
	})
}

func (c *Coordinator) Generate(ctx context.Context, input gateway.GenerateInput) (*model.Image, error) {
	return run(ctx, c, KindGenerating, func(ctx context.Context) (*model.Image, error) {
		return c.transformer.Generate(ctx, input)
	})
}

func (c *Coordinator) Enhance(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error) {
	return run(ctx, c, KindEnhancing, func(ctx context.Context) (*model.Image, error) {
		return c.transformer.Enhance(ctx, img, presetID)
	})
}

func (c *Coordinator) Edit(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
	return run(ctx, c, KindEditing, func(ctx context.Context) (*model.Image, error) {
		return c.transformer.Edit(ctx, img, request)
	})
}

// run executes call between Start and Succeed/Fail. When the operation was
// superseded meanwhile, the outcome is dropped and model.ErrStaleResult is
// returned instead.
func run[T any](ctx context.Context, c *Coordinator, kind Kind, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	token, err := c.Start(kind)
	if err != nil {
		return zero, err
	}

	out, err := call(ctx)
	if err != nil {
		if !c.Fail(token, err) {
			logging.From(ctx).Debug("dropped failure of superseded operation", "kind", kind, "error", err)
			return zero, goerr.Wrap(model.ErrStaleResult, "operation failed after it was superseded", goerr.V("kind", kind))
		}
		logging.From(ctx).Warn("operation failed", "kind", kind, "error", err)
		return zero, err
	}

	if !c.Succeed(token) {
		logging.From(ctx).Debug("dropped result of superseded operation", "kind", kind)
		return zero, goerr.Wrap(model.ErrStaleResult, "operation finished after it was superseded", goerr.V("kind", kind))
	}
	return out, nil
}
