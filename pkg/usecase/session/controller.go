package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/automate-travel/studio/pkg/catalog"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/automate-travel/studio/pkg/usecase/history"
	"github.com/automate-travel/studio/pkg/usecase/processing"
	"github.com/automate-travel/studio/pkg/usecase/recommend"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNoImage = goerr.New("no image selected, open a photo first")
	// ErrGenerateUnavailable is returned by Generate outside identity_builder
	ErrGenerateUnavailable = goerr.New("portrait generation is only available in identity_builder mode")
)

// Controller is one editing session. It owns the artifact timeline, the
// operation coordinator and the analysis cache, and maps user actions onto
// them.
type Controller struct {
	mu       sync.Mutex
	mode     model.Mode
	identity model.IdentityConfig
	// epoch changes whenever the timeline is replaced. Results of operations
	// started in an older epoch are dropped.
	epoch uint64

	store   *history.Store
	proc    *processing.Coordinator
	cache   *AnalysisCache
	catalog *catalog.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Controller)

func WithMode(mode model.Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *Controller) {
		c.catalog = cat
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock sets the clock of the artifact timeline
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a Controller. Model calls go to t and display handles are
// acquired from display.
func New(t processing.Transformer, display history.DisplayProvider, opts ...Option) (*Controller, error) {
	c := &Controller{
		mode:     model.ModeOfferBooster,
		identity: model.DefaultIdentityConfig(),
		cache:    NewAnalysisCache(),
		catalog:  catalog.Default(),
		logger:   logging.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.mode.Validate(); err != nil {
		return nil, err
	}

	c.store = history.New(display, history.WithLogger(c.logger), history.WithClock(c.now))
	c.proc = processing.New(t, processing.WithLogger(c.logger))
	return c, nil
}

func (c *Controller) Mode() model.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SwitchMode changes the workflow. The timeline, the error, the identity
// configuration and the analysis cache are all reset. It is refused while an
// operation is in flight.
func (c *Controller) SwitchMode(mode model.Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == mode {
		if c.proc.Busy() {
			return goerr.Wrap(model.ErrBusy, "cannot switch mode", goerr.V("mode", mode))
		}
		return nil
	}
	if err := c.proc.ResetIdle(); err != nil {
		return goerr.Wrap(err, "cannot switch mode", goerr.V("mode", mode))
	}
	c.mode = mode
	c.identity = model.DefaultIdentityConfig()
	c.epoch++
	c.store.Reset()
	c.cache.Clear()

	c.logger.Info("mode switched", "mode", mode)
	return nil
}

// Identity returns the current identity configuration
func (c *Controller) Identity() model.IdentityConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Controller) SetPose(pose model.Pose) error {
	if _, ok := c.catalog.Pose(pose); !ok {
		return goerr.Wrap(model.ErrInvalidIdentityConfig, "unknown pose",
			goerr.V("category", pose.Category), goerr.V("variant", pose.Variant))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity.Pose = pose
	return nil
}

func (c *Controller) SetAttire(attire model.AttireType) error {
	if _, ok := c.catalog.Attire(attire); !ok {
		return goerr.Wrap(model.ErrInvalidIdentityConfig, "unknown attire", goerr.V("attire", attire))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity.Attire = attire
	return nil
}

// SetLogo sets the company logo applied by Generate. nil removes it.
func (c *Controller) SetLogo(logo *model.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity.Logo = logo
}

// SelectFile starts a new timeline with img as the original and analyzes
// it. Any operation in flight is superseded and the error of the previous
// timeline is dropped. A failed analysis is reported through Status and does
// not fail the selection.
func (c *Controller) SelectFile(ctx context.Context, img *model.Image) (model.HistoryItem, error) {
	if img == nil || len(img.Data) == 0 {
		return model.HistoryItem{}, goerr.Wrap(model.ErrInvalidInput, "image is empty")
	}

	c.proc.Reset()

	c.mu.Lock()
	c.epoch++
	c.store.Reset()
	id, err := c.store.Add(img, model.OriginUploaded)
	mode := c.mode
	c.mu.Unlock()
	if err != nil {
		return model.HistoryItem{}, err
	}

	logging.From(ctx).Info("image selected", "image", img.Name, "id", id)

	if err := c.analyze(ctx, id, img, mode, mode.AnalysisContext()); err != nil {
		logging.From(ctx).Warn("analysis failed", "id", id, "error", err)
	}

	item, _ := c.store.Get(id)
	return item, nil
}

// Enhance applies a catalog preset to the current artifact. A nil item with
// a nil error means the result was superseded and dropped.
func (c *Controller) Enhance(ctx context.Context, presetID model.PresetID) (*model.HistoryItem, error) {
	current, epoch, err := c.current()
	if err != nil {
		return nil, err
	}
	img, err := c.proc.Enhance(ctx, current.Image, presetID)
	return c.commit(ctx, epoch, img, err, false)
}

// Edit applies a free-text request to the current artifact
func (c *Controller) Edit(ctx context.Context, request string) (*model.HistoryItem, error) {
	current, epoch, err := c.current()
	if err != nil {
		return nil, err
	}
	img, err := c.proc.Edit(ctx, current.Image, request)
	return c.commit(ctx, epoch, img, err, false)
}

// Generate renders an identity portrait of the person in the uploaded
// original using the current identity configuration. Only available in
// identity_builder mode.
func (c *Controller) Generate(ctx context.Context, prompt string) (*model.HistoryItem, error) {
	c.mu.Lock()
	epoch := c.epoch
	identity := c.identity
	mode := c.mode
	c.mu.Unlock()

	if mode != model.ModeIdentityBuilder {
		return nil, goerr.Wrap(ErrGenerateUnavailable, "cannot generate", goerr.V("mode", mode))
	}

	input := gateway.GenerateInput{
		Prompt: strings.TrimSpace(prompt),
		Logo:   identity.Logo,
		Attire: identity.Attire,
		Pose:   identity.Pose,
	}
	if original, ok := c.store.Original(); ok {
		input.Reference = original.Image
	}

	img, err := c.proc.Generate(ctx, input)
	return c.commit(ctx, epoch, img, err, true)
}

func (c *Controller) current() (model.HistoryItem, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.store.Current()
	if !ok {
		return model.HistoryItem{}, 0, goerr.Wrap(ErrNoImage, "no current artifact")
	}
	return item, c.epoch, nil
}

// commit appends a produced image to the timeline and runs the follow-up
// analysis on it.
func (c *Controller) commit(ctx context.Context, epoch uint64, img *model.Image, err error, generated bool) (*model.HistoryItem, error) {
	if errors.Is(err, model.ErrStaleResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		logging.From(ctx).Debug("dropped result for replaced timeline", "image", img.Name)
		return nil, nil
	}
	id, err := c.store.Add(img, model.OriginGenerated)
	mode := c.mode
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	analysisContext := mode.AnalysisContext()
	if generated {
		analysisContext = mode.VerificationContext()
	}
	if err := c.analyze(ctx, id, img, mode, analysisContext); err != nil {
		logging.From(ctx).Warn("follow-up analysis failed", "id", id, "error", err)
	}

	item, ok := c.store.Get(id)
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// analyze fills the analysis of item id. The result only ever lands on the
// item captured here, even if the timeline moved on meanwhile.
func (c *Controller) analyze(ctx context.Context, id model.ItemID, img *model.Image, mode model.Mode, analysisContext string) error {
	if cached, ok := c.cache.Get(img, mode, analysisContext); ok {
		c.store.Update(id, history.Update{Analysis: cached})
		return nil
	}

	result, err := c.proc.Analyze(ctx, img, analysisContext)
	if errors.Is(err, model.ErrStaleResult) {
		return nil
	}
	if err != nil {
		return err
	}

	c.cache.Put(img, mode, analysisContext, result)
	if !c.store.Update(id, history.Update{Analysis: result}) {
		logging.From(ctx).Debug("analysis arrived for discarded item", "id", id)
	}
	return nil
}

func (c *Controller) Undo() bool    { return c.store.Undo() }
func (c *Controller) Redo() bool    { return c.store.Redo() }
func (c *Controller) CanUndo() bool { return c.store.CanUndo() }
func (c *Controller) CanRedo() bool { return c.store.CanRedo() }

func (c *Controller) Current() (model.HistoryItem, bool) {
	return c.store.Current()
}

// Original is the hold-to-compare baseline
func (c *Controller) Original() (model.HistoryItem, bool) {
	return c.store.Original()
}

// Items returns the timeline and the cursor position
func (c *Controller) Items() ([]model.HistoryItem, int) {
	return c.store.Items()
}

func (c *Controller) Status() processing.Status {
	return c.proc.Status()
}

func (c *Controller) ClearError() {
	c.proc.ClearError()
}

func (c *Controller) Presets() []model.Preset {
	return c.catalog.Presets()
}

// Recommendations returns the presets matching the analysis of the current
// artifact.
func (c *Controller) Recommendations() recommend.Set {
	var analysis *model.AnalysisResult
	if item, ok := c.store.Current(); ok {
		analysis = item.Analysis
	}
	return recommend.MatchAnalysis(analysis, c.catalog.Presets())
}

// Tips returns the quick edit suggestions for the current artifact
func (c *Controller) Tips() []string {
	item, ok := c.store.Current()
	if !ok || len(item.Tips) == 0 {
		return append([]string(nil), model.DefaultTips...)
	}
	return item.Tips
}

// Close tears the session down. Every display handle is released.
func (c *Controller) Close() {
	c.proc.Supersede()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.store.Close()
	c.cache.Clear()
}
