package config

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/service/metrics"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Telemetry holds CLI flags for OpenTelemetry metrics export
type Telemetry struct {
	endpoint string
	insecure bool
}

// Flags returns CLI flags for telemetry configuration
func (t *Telemetry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "otlp-endpoint",
			Usage:       "OTLP collector endpoint for metrics (e.g. localhost:4318). Empty disables export",
			Sources:     cli.EnvVars("MINERVA_OTLP_ENDPOINT"),
			Destination: &t.endpoint,
		},
		&cli.BoolFlag{
			Name:        "otlp-insecure",
			Usage:       "Use plain HTTP for the OTLP endpoint",
			Sources:     cli.EnvVars("MINERVA_OTLP_INSECURE"),
			Destination: &t.insecure,
		},
	}
}

// Configure initializes the metrics pipeline and returns the metrics sink
// together with a shutdown function. Without an endpoint a no-op sink is
// returned and nothing is exported.
func (t *Telemetry) Configure(ctx context.Context, serviceName, version string) (metrics.Sink, metrics.Shutdown, error) {
	shutdown, err := metrics.Init(ctx, t.endpoint, serviceName, version, t.insecure)
	if err != nil {
		return nil, nil, err
	}

	if t.endpoint == "" {
		return &metrics.Noop{}, shutdown, nil
	}

	logging.Default().Info("Metrics export enabled", "endpoint", t.endpoint, "insecure", t.insecure)
	return metrics.NewOTelSink(metrics.Meter(serviceName)), shutdown, nil
}
