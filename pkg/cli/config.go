package cli

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/automate-travel/studio/pkg/adapter"
	"github.com/automate-travel/studio/pkg/repository"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	logLevel string

	// Model service
	apiKeyValue   string
	apiKey        credentials
	analysisModel string
	imageModel    string

	// Archive
	project    string
	database   string
	bucket     string
	storageDir string
}

// credentials is the process-wide API key. It can be set after startup.
type credentials struct {
	mu  sync.RWMutex
	key string
}

func (c *credentials) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *credentials) Set(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = strings.TrimSpace(key)
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("STUDIO_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for the model service
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY", "API_KEY"),
			Destination: &cfg.apiKeyValue,
		},
		&cli.StringFlag{
			Name:        "analysis-model",
			Usage:       "Model used for image analysis",
			Value:       adapter.DefaultAnalysisModel,
			Sources:     cli.EnvVars("STUDIO_ANALYSIS_MODEL"),
			Destination: &cfg.analysisModel,
		},
		&cli.StringFlag{
			Name:        "image-model",
			Usage:       "Model used for image generation and editing",
			Value:       adapter.DefaultImageModel,
			Sources:     cli.EnvVars("STUDIO_IMAGE_MODEL"),
			Destination: &cfg.imageModel,
		},
	}
}

// archiveFlags returns flags for saved sessions and exports
func archiveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for artifacts",
			Sources:     cli.EnvVars("STUDIO_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Usage:       "Local directory for artifacts when no bucket is set",
			Value:       "studio-artifacts",
			Sources:     cli.EnvVars("STUDIO_STORAGE_DIR"),
			Destination: &cfg.storageDir,
		},
	}
}

// setup configures the logger, carried in the returned context, and the
// initial API key
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		return ctx, err
	}
	logger := logging.New(level, os.Stderr)
	logging.SetDefault(logger)

	cfg.apiKey.Set(cfg.apiKeyValue)
	return logging.With(ctx, logger), nil
}

// newGateway creates the model gateway. The API key is read on every call.
func (cfg *config) newGateway(ctx context.Context) (*gateway.Gateway, error) {
	connect := func(ctx context.Context, apiKey string) (adapter.Gemini, error) {
		return adapter.NewGemini(ctx, apiKey,
			adapter.WithAnalysisModel(cfg.analysisModel),
			adapter.WithImageModel(cfg.imageModel),
		)
	}

	gw, err := gateway.New(cfg.apiKey.Get, connect, gateway.WithLogger(logging.From(ctx)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gateway")
	}
	return gw, nil
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newStorage creates the artifact store: Cloud Storage when a bucket is
// configured, a local directory otherwise.
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		return storage, nil
	}

	if cfg.storageDir == "" {
		return nil, goerr.New("bucket or storage-dir is required")
	}
	storage, err := adapter.NewLocalStorage(cfg.storageDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}
