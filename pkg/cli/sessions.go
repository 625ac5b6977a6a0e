package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/archive"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func sessionsCommand() *cli.Command {
	var (
		cfg    config
		offset int64
		limit  int64
		fetch  string
		output string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Offset for pagination",
			Value:       0,
			Destination: &offset,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of sessions to list",
			Value:       20,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "fetch",
			Usage:       "Download the artifacts of this session ID",
			Destination: &fetch,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Directory for fetched artifacts",
			Value:       ".",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "sessions",
		Usage: "List saved sessions or fetch one",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}
			if err := validatePage(offset, limit); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			storage, err := cfg.newStorage(ctx)
			if err != nil {
				return err
			}
			uc := archive.New(storage, repo)

			if fetch != "" {
				return fetchSession(ctx, c, uc, model.SessionID(fetch), output)
			}

			records, err := uc.List(ctx, int(offset), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list sessions")
			}

			for _, r := range records {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%d artifacts\t%s\n",
					r.ID, r.Mode, len(r.Artifacts), r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func fetchSession(ctx context.Context, c *cli.Command, uc *archive.Archive, id model.SessionID, dir string) error {
	record, images, err := uc.Fetch(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch session", goerr.V("session_id", id))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s", i, img.Name))
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return goerr.Wrap(err, "failed to write artifact", goerr.V("path", path))
		}

		mark := " "
		if i == record.Cursor {
			mark = "*"
		}
		fmt.Fprintf(c.Root().Writer, "%s %s\t%s\n", mark, path, record.Artifacts[i].Origin)
	}
	return nil
}

func validatePage(offset, limit int64) error {
	if offset < 0 {
		return goerr.New("--offset must not be negative", goerr.V("offset", offset))
	}
	if limit < 0 {
		return goerr.New("--limit must not be negative", goerr.V("limit", limit))
	}
	return nil
}
