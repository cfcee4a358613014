package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// indexConfig declares the Firestore indexes the service queries
// depend on. Record search needs the vector index; message history
// reads are served by automatic single-field indexes.
func indexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "records",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{
								Path: "Embedding",
								Vector: &fireconf.VectorConfig{
									Dimension: model.EmbeddingDimension,
								},
							},
						},
					},
				},
			},
		},
	}
}

func cmdMigrate() *cli.Command {
	var (
		projectID  string
		databaseID string
		dryRun     bool
	)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or update Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Google Cloud project of the Firestore database",
				Required:    true,
				Sources:     cli.EnvVars("MINERVA_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore database ID, empty for the default database",
				Sources:     cli.EnvVars("MINERVA_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Show the migration plan without applying it",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("migrating firestore indexes",
				"project_id", projectID,
				"database_id", databaseID,
				"dry_run", dryRun,
			)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			cfg := indexConfig()

			if dryRun {
				plan, err := client.GetMigrationPlan(ctx, cfg)
				if err != nil {
					return goerr.Wrap(err, "failed to build migration plan")
				}
				if len(plan.Steps) == 0 {
					logger.Info("indexes are up to date")
					return nil
				}
				for _, step := range plan.Steps {
					logger.Info("planned step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive,
					)
				}
				return nil
			}

			if err := client.Migrate(ctx, cfg); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("indexes migrated")
			return nil
		},
	}
}
