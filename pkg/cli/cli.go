package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// A .env file in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Code: 1, Message: err.Error()}
	}

	cmd := &cli.Command{
		Name:  "studio",
		Usage: "AI photo studio for hotel marketing and employee portraits",
		Commands: []*cli.Command{
			analyzeCommand(),
			enhanceCommand(),
			editCommand(),
			generateCommand(),
			presetsCommand(),
			sessionCommand(),
			sessionsCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
