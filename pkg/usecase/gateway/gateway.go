package gateway

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/automate-travel/studio/pkg/adapter"
	"github.com/automate-travel/studio/pkg/catalog"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// CredentialSource returns the API key from process-wide configuration. It is
// read at call time so a key configured mid-session takes effect.
type CredentialSource func() string

// Connector creates a model client for an API key
type Connector func(ctx context.Context, apiKey string) (adapter.Gemini, error)

// Gateway is the uniform interface to the remote model service
type Gateway struct {
	credentials CredentialSource
	connect     Connector
	catalog     *catalog.Catalog
	schema      *analysisSchema
	retry       retryPolicy
	logger      *slog.Logger

	mu        sync.Mutex
	client    adapter.Gemini
	clientKey string
}

// Option is a functional option for Gateway
type Option func(*Gateway)

func WithCatalog(c *catalog.Catalog) Option {
	return func(g *Gateway) {
		g.catalog = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithSleeper replaces the wait between retries
func WithSleeper(sleep Sleeper) Option {
	return func(g *Gateway) {
		g.retry.sleep = sleep
	}
}

// WithRetry overrides the retry count and the first backoff delay
func WithRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(g *Gateway) {
		g.retry.maxRetries = maxRetries
		g.retry.initialDelay = initialDelay
	}
}

// New creates a Gateway
func New(credentials CredentialSource, connect Connector, opts ...Option) (*Gateway, error) {
	schema, err := loadAnalysisSchema()
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		credentials: credentials,
		connect:     connect,
		catalog:     catalog.Default(),
		schema:      schema,
		retry: retryPolicy{
			maxRetries:   defaultMaxRetries,
			initialDelay: defaultInitialDelay,
			sleep:        sleepContext,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// apiKey checks credentials before anything else is attempted
func (g *Gateway) apiKey() (string, error) {
	if g.credentials == nil {
		return "", goerr.Wrap(model.ErrCredentialsMissing, "no credential source")
	}
	key := strings.TrimSpace(g.credentials())
	if key == "" {
		return "", goerr.Wrap(model.ErrCredentialsMissing, "API key is empty")
	}
	return key, nil
}

// clientFor returns a client bound to key, reconnecting when the key changed
func (g *Gateway) clientFor(ctx context.Context, key string) (adapter.Gemini, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil && g.clientKey == key {
		return g.client, nil
	}

	client, err := g.connect(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to model service")
	}
	g.client = client
	g.clientKey = key
	return client, nil
}

// safetySettings is deliberately permissive. Rejections come from the service
// itself and are passed through as model.ErrSafetyRejected.
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryCivicIntegrity,
	}

	settings := make([]*genai.SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}
	return settings
}

func imagePart(img *model.Image) *genai.Part {
	return genai.NewPartFromBytes(img.Data, img.MIMEType)
}
