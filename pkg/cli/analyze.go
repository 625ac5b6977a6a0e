package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func analyzeCommand() *cli.Command {
	var (
		cfg   config
		input string
		mode  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to the image to analyze",
			Destination: &input,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Operating mode (offer_booster, identity_builder)",
			Value:       string(model.ModeOfferBooster),
			Sources:     cli.EnvVars("STUDIO_MODE"),
			Destination: &mode,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze an image and print the structured result as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			m := model.Mode(mode)
			if err := m.Validate(); err != nil {
				return err
			}

			img, err := model.LoadImage(input)
			if err != nil {
				return err
			}

			gw, err := cfg.newGateway(ctx)
			if err != nil {
				return err
			}

			result, err := gw.Analyze(ctx, img, m.AnalysisContext())
			if err != nil {
				return goerr.Wrap(err, "failed to analyze image")
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal analysis")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
