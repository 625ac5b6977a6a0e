package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/automate-travel/studio/pkg/display"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/session"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func sessionCommand() *cli.Command {
	var (
		cfg        config
		mode       string
		displayDir string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Initial operating mode (offer_booster, identity_builder)",
			Value:       string(model.ModeOfferBooster),
			Sources:     cli.EnvVars("STUDIO_MODE"),
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "display-dir",
			Usage:       "Directory where the current artifacts are written for viewing",
			Sources:     cli.EnvVars("STUDIO_DISPLAY_DIR"),
			Destination: &displayDir,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "session",
		Usage: "Start an interactive editing session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			if displayDir == "" {
				if displayDir, err = os.MkdirTemp("", "studio-session-"); err != nil {
					return goerr.Wrap(err, "failed to create display directory")
				}
				defer os.RemoveAll(displayDir)
			}
			files, err := display.NewFiles(displayDir)
			if err != nil {
				return err
			}

			gw, err := cfg.newGateway(ctx)
			if err != nil {
				return err
			}

			ctrl, err := session.New(gw, files,
				session.WithMode(model.Mode(mode)),
				session.WithLogger(logging.From(ctx)),
			)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          promptFor(ctrl.Mode()),
				HistoryFile:     filepath.Join(displayDir, ".history"),
				AutoComplete:    completer(),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			r := newREPL(ctrl, &cfg, c.Root().Writer)
			r.askKey = func() (string, error) {
				key, err := rl.ReadPassword("Gemini API key: ")
				return string(key), err
			}
			r.onMode = func(m model.Mode) { rl.SetPrompt(promptFor(m)) }

			fmt.Fprintf(r.out, "Session started in %s mode. Type 'help' for commands.\n", ctrl.Mode())
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				if quit := r.exec(ctx, line); quit {
					break
				}
			}

			fmt.Fprintf(r.out, "Session closed\n")
			return nil
		},
	}
}

func promptFor(mode model.Mode) string {
	return "studio(" + string(mode) + ")> "
}

func completer() *readline.PrefixCompleter {
	var modes []readline.PrefixCompleterInterface
	for _, m := range []model.Mode{model.ModeOfferBooster, model.ModeIdentityBuilder} {
		modes = append(modes, readline.PcItem(string(m)))
	}

	var presets []readline.PrefixCompleterInterface
	for _, id := range presetIDs() {
		presets = append(presets, readline.PcItem(string(id)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("open"),
		readline.PcItem("mode", modes...),
		readline.PcItem("enhance", presets...),
		readline.PcItem("edit"),
		readline.PcItem("generate"),
		readline.PcItem("pose"),
		readline.PcItem("attire"),
		readline.PcItem("logo"),
		readline.PcItem("undo"),
		readline.PcItem("redo"),
		readline.PcItem("compare"),
		readline.PcItem("history"),
		readline.PcItem("tips"),
		readline.PcItem("recommend"),
		readline.PcItem("presets"),
		readline.PcItem("status"),
		readline.PcItem("clear"),
		readline.PcItem("save"),
		readline.PcItem("export"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
