package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type retryPolicy struct {
	maxRetries   int
	initialDelay time.Duration
	sleep        Sleeper
}

// isRateLimited checks if the error is the service's rate limit rejection
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, model.ErrRateLimited) {
		return true
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED"
}

// withRetry runs call and retries it only on rate limiting, doubling the
// delay after each attempt. Once retries are exhausted the failure becomes
// model.ErrTransient.
func withRetry[T any](ctx context.Context, p retryPolicy, logger *slog.Logger, op string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	delay := p.initialDelay

	for attempt := 0; ; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if !isRateLimited(err) {
			return zero, err
		}
		if attempt >= p.maxRetries {
			return zero, goerr.Wrap(model.ErrTransient, "rate limit retries exhausted",
				goerr.V("operation", op),
				goerr.V("attempts", attempt+1),
				goerr.V("cause", err.Error()))
		}

		logger.Warn("rate limited, retrying",
			"operation", op,
			"attempt", attempt+1,
			"delay", delay)

		if err := p.sleep(ctx, delay); err != nil {
			return zero, goerr.Wrap(err, "retry wait interrupted", goerr.V("operation", op))
		}
		delay *= 2
	}
}
