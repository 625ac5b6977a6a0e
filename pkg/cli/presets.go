package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/automate-travel/studio/pkg/catalog"
	"github.com/automate-travel/studio/pkg/usecase/recommend"
	"github.com/urfave/cli/v3"
)

func presetsCommand() *cli.Command {
	var text string

	return &cli.Command{
		Name:  "presets",
		Usage: "List enhancement presets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "recommend",
				Usage:       "Mark the presets recommended for this analysis text",
				Destination: &text,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			presets := catalog.Default().Presets()

			var recommended recommend.Set
			if c.IsSet("recommend") {
				recommended = recommend.Match(text, presets)
			}

			for _, p := range presets {
				mark := " "
				if recommended.Has(p.ID) {
					mark = "*"
				}
				fmt.Fprintf(c.Root().Writer, "%s %s\t%s\t%s\t%s\n",
					mark, p.ID, p.Category, p.Label, strings.Join(p.Tags, ","))
			}
			return nil
		},
	}
}
