package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func enhanceCommand() *cli.Command {
	var (
		cfg    config
		input  string
		output string
		preset string
	)

	flags := []cli.Flag{
		inputFlag(&input),
		outputFlag(&output),
		&cli.StringFlag{
			Name:        "preset",
			Usage:       "Enhancement preset ID (see `studio presets`)",
			Value:       string(model.UniversalPresetID),
			Destination: &preset,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "enhance",
		Usage: "Apply an enhancement preset to an image",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
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

			out, err := gw.Enhance(ctx, img, model.PresetID(preset))
			if err != nil {
				return goerr.Wrap(err, "failed to enhance image", goerr.V("preset", preset))
			}

			return writeResult(c, input, output, preset, out)
		},
	}
}

func editCommand() *cli.Command {
	var (
		cfg    config
		input  string
		output string
		prompt string
	)

	flags := []cli.Flag{
		inputFlag(&input),
		outputFlag(&output),
		&cli.StringFlag{
			Name:        "prompt",
			Usage:       "Edit request, e.g. \"remove the umbrella\"",
			Destination: &prompt,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "edit",
		Usage: "Edit an image with a free-text request",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
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

			out, err := gw.Edit(ctx, img, prompt)
			if err != nil {
				return goerr.Wrap(err, "failed to edit image")
			}

			return writeResult(c, input, output, "edit", out)
		},
	}
}

func generateCommand() *cli.Command {
	var (
		cfg       config
		reference string
		logo      string
		output    string
		prompt    string
		pose      string
		variant   string
		attire    string
	)

	defaults := model.DefaultIdentityConfig()
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "reference",
			Aliases:     []string{"r"},
			Usage:       "Photo of the person to portray",
			Destination: &reference,
		},
		&cli.StringFlag{
			Name:        "logo",
			Usage:       "Company logo to apply to the attire",
			Destination: &logo,
		},
		outputFlag(&output),
		&cli.StringFlag{
			Name:        "prompt",
			Usage:       "Description of the portrait",
			Destination: &prompt,
		},
		&cli.StringFlag{
			Name:        "pose",
			Usage:       "Pose category (neutral, power, relaxed, angle, casual)",
			Value:       string(defaults.Pose.Category),
			Destination: &pose,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "Pose variant (A, B, C)",
			Value:       string(defaults.Pose.Variant),
			Destination: &variant,
		},
		&cli.StringFlag{
			Name:        "attire",
			Usage:       "Attire (suit, shirt, polo, tshirt, jacket)",
			Value:       string(defaults.Attire),
			Destination: &attire,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a corporate portrait from a reference photo",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			identity := model.IdentityConfig{
				Pose:   model.Pose{Category: model.PoseCategory(pose), Variant: model.PoseVariant(strings.ToUpper(variant))},
				Attire: model.AttireType(attire),
			}
			if err := identity.Validate(); err != nil {
				return err
			}

			input := gateway.GenerateInput{
				Prompt: prompt,
				Attire: identity.Attire,
				Pose:   identity.Pose,
			}
			if reference != "" {
				if input.Reference, err = model.LoadImage(reference); err != nil {
					return err
				}
			}
			if logo != "" {
				if input.Logo, err = model.LoadImage(logo); err != nil {
					return err
				}
			}

			gw, err := cfg.newGateway(ctx)
			if err != nil {
				return err
			}

			out, err := gw.Generate(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to generate portrait")
			}

			return writeResult(c, reference, output, "portrait", out)
		},
	}
}

func inputFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "input",
		Aliases:     []string{"i"},
		Usage:       "Path to the source image",
		Destination: dst,
		Required:    true,
	}
}

func outputFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "Path of the result image (derived from the input when omitted)",
		Destination: dst,
	}
}

// writeResult stores img at output, or next to input with suffix appended
func writeResult(c *cli.Command, input, output, suffix string, img *model.Image) error {
	if output == "" {
		output = resultPath(input, suffix, img)
	}

	if err := os.WriteFile(output, img.Data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write result", goerr.V("path", output))
	}

	fmt.Fprintf(c.Root().Writer, "%s\n", output)
	return nil
}

func resultPath(input, suffix string, img *model.Image) string {
	if input == "" {
		return suffix + img.Extension()
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "-" + suffix + img.Extension()
}
