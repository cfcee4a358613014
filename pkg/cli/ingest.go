package cli

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/halcyon-lab/minerva/pkg/cli/config"
	"github.com/halcyon-lab/minerva/pkg/service/embedding"
	"github.com/halcyon-lab/minerva/pkg/service/vector"
	"github.com/halcyon-lab/minerva/pkg/usecase"
	"github.com/halcyon-lab/minerva/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var source string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var openaiCfg config.OpenAI

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Source label attached to ingested records (defaults to the file name)",
			Destination: &source,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, openaiCfg.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Add documents to the knowledge base",
		ArgsUsage: "[files...] (reads stdin when no files are given)",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			var embedClient gollem.LLMClient
			if embedClient, err = geminiCfg.Configure(ctx); err != nil {
				return goerr.Wrap(err, "failed to configure Gemini")
			}
			if embedClient == nil {
				if embedClient, err = openaiCfg.Configure(ctx); err != nil {
					return goerr.Wrap(err, "failed to configure OpenAI")
				}
			}
			if embedClient == nil {
				return goerr.New("an embedding-capable provider is required (gemini or openai)")
			}

			vectorSvc := vector.New(repo.Record(), embedding.New(embedClient))
			uc := usecase.New(repo, vectorSvc, nil)

			if c.Args().Len() == 0 {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read stdin")
				}
				label := source
				if label == "" {
					label = "stdin"
				}
				record, err := uc.Ingest(ctx, usecase.IngestInput{
					Content: string(data),
					Source:  label,
				})
				if err != nil {
					return err
				}
				color.Green("✓ %s (%s)", label, record.ID)
				return nil
			}

			for _, path := range c.Args().Slice() {
				// #nosec G304 - path is expected to be provided by CLI argument
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read file", goerr.V("path", path))
				}
				label := source
				if label == "" {
					label = path
				}
				record, err := uc.Ingest(ctx, usecase.IngestInput{
					Content: string(data),
					Source:  label,
					Metadata: map[string]string{
						"path": path,
					},
				})
				if err != nil {
					color.Red("✗ %s: %s", path, err)
					return goerr.Wrap(err, "ingest failed", goerr.V("path", path))
				}
				color.Green("✓ %s (%s)", path, record.ID)
			}

			return nil
		},
	}
}
