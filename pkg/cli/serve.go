package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/halcyon-lab/minerva/pkg/cli/config"
	httpctrl "github.com/halcyon-lab/minerva/pkg/controller/http"
	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/service/embedding"
	"github.com/halcyon-lab/minerva/pkg/service/router"
	"github.com/halcyon-lab/minerva/pkg/service/vector"
	"github.com/halcyon-lab/minerva/pkg/usecase"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var claudeCfg config.Claude
	var openaiCfg config.OpenAI
	var telemetryCfg config.Telemetry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MINERVA_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, claudeCfg.Flags()...)
	flags = append(flags, openaiCfg.Flags()...)
	flags = append(flags, telemetryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Initialize metrics pipeline
			sink, shutdownMetrics, err := telemetryCfg.Configure(ctx, "minerva", c.Root().Version)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize telemetry")
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownMetrics(flushCtx); err != nil {
					logging.Default().Error("failed to shutdown metrics", "error", err.Error())
				}
			}()

			// Build the provider chain in failover order. The first
			// embedding-capable client also serves retrieval.
			var providers []interfaces.GenerationProvider
			var embedClient gollem.LLMClient

			geminiClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini")
			}
			if geminiClient != nil {
				providers = append(providers, router.NewLLMProvider(types.ProviderID("gemini"), geminiClient))
				embedClient = geminiClient
				logging.Default().LogAttrs(ctx, slog.LevelInfo, "Gemini provider enabled", geminiCfg.LogAttrs()...)
			}

			claudeClient, err := claudeCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Claude")
			}
			if claudeClient != nil {
				providers = append(providers, router.NewLLMProvider(types.ProviderID("claude"), claudeClient))
				logging.Default().Info("Claude provider enabled")
			}

			openaiClient, err := openaiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure OpenAI")
			}
			if openaiClient != nil {
				providers = append(providers, router.NewLLMProvider(types.ProviderID("openai"), openaiClient))
				if embedClient == nil {
					embedClient = openaiClient
				}
				logging.Default().Info("OpenAI provider enabled")
			}

			if embedClient == nil {
				return goerr.New("an embedding-capable provider is required (gemini or openai)")
			}
			if len(providers) == 0 {
				logging.Default().Warn("No LLM providers configured, all chats will receive the fallback answer")
			}

			embedder := embedding.New(embedClient)
			vectorSvc := vector.New(repo.Record(), embedder)

			routerOpts := []router.Option{
				router.WithMetrics(sink),
				router.WithCooldown(appCfg.Cooldown(router.DefaultCooldown)),
				router.WithAttemptTimeout(appCfg.AttemptTimeout(router.DefaultAttemptTimeout)),
			}
			if appCfg.Router.FailureThreshold > 0 {
				routerOpts = append(routerOpts, router.WithFailureThreshold(appCfg.Router.FailureThreshold))
			}
			if appCfg.Router.FallbackMessage != "" {
				routerOpts = append(routerOpts, router.WithFallbackMessage(appCfg.Router.FallbackMessage))
			}
			routerSvc := router.New(repo.Breaker(), providers, routerOpts...)

			ucOpts := []usecase.Option{
				usecase.WithMetrics(sink),
				usecase.WithCacheTTL(appCfg.CacheTTL(usecase.DefaultCacheTTL)),
			}
			if appCfg.Persona.AssistantName != "" || appCfg.Persona.SubjectName != "" {
				ucOpts = append(ucOpts, usecase.WithPersona(usecase.Persona{
					AssistantName: appCfg.Persona.AssistantName,
					SubjectName:   appCfg.Persona.SubjectName,
				}))
			}
			if appCfg.Chat.HistoryLimit > 0 {
				ucOpts = append(ucOpts, usecase.WithHistoryLimit(appCfg.Chat.HistoryLimit))
			}
			if appCfg.Chat.ContextLimit > 0 {
				ucOpts = append(ucOpts, usecase.WithContextLimit(appCfg.Chat.ContextLimit))
			}
			if appCfg.Chat.SimilarityThreshold > 0 {
				ucOpts = append(ucOpts, usecase.WithThreshold(appCfg.Chat.SimilarityThreshold))
			}

			uc := usecase.New(repo, vectorSvc, routerSvc, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"providers", len(providers),
					"backend", repoCfg.Backend(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
