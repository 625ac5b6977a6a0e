package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := logging.ParseLevel(tc.input)
			gt.Equal(t, level, tc.want)
			if tc.wantErr {
				gt.True(t, errors.Is(err, logging.ErrInvalidLevel))
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(slog.LevelWarn, buf)

	logger.Info("info message")
	logger.Warn("warn message")

	gt.S(t, buf.String()).NotContains("info message")
	gt.S(t, buf.String()).Contains("warn message")
}

func TestDiscard(t *testing.T) {
	logger := logging.Discard()
	gt.V(t, logger).NotNil()
	logger.Error("dropped")
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(slog.LevelDebug, buf).With("component", "session")

	ctx := logging.With(context.Background(), logger)
	gt.Equal(t, logging.From(ctx), logger)

	logging.From(ctx).Info("context message")
	gt.S(t, buf.String()).Contains("context message")
	gt.S(t, buf.String()).Contains("session")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New(slog.LevelInfo, buf)
	logging.SetDefault(custom)

	gt.Equal(t, logging.From(context.Background()), custom)
	logging.From(context.Background()).Info("default message")
	gt.S(t, buf.String()).Contains("default message")
}
