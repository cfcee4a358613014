package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/repository/firestore"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// Repository selects and configures the storage backend. The memory
// backend keeps everything in-process and is meant for development
// and tests.
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Storage backend, firestore or memory",
			Value:       "firestore",
			Sources:     cli.EnvVars("MINERVA_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the Firestore database",
			Sources:     cli.EnvVars("MINERVA_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID, empty for the default database",
			Sources:     cli.EnvVars("MINERVA_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix applied to all Firestore collection names",
			Sources:     cli.EnvVars("MINERVA_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
	}
}

// Backend returns the configured backend name.
func (r *Repository) Backend() string {
	return r.backend
}

// Configure opens the configured backend. The caller owns the returned
// repository and must Close it.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "memory":
		logging.Default().Info("using in-memory repository")
		return memory.New(), nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required for the firestore backend")
		}

		var opts []firestore.Option
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}

		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open firestore repository")
		}

		logging.Default().Info("using firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.prefix,
		)
		return repo, nil

	default:
		return nil, goerr.New("unknown repository backend", goerr.V("backend", r.backend))
	}
}
