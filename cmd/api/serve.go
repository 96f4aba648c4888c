package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/configproxy/core/cmd/api/middleware"
	"github.com/configproxy/core/internal/client"
	"github.com/configproxy/core/internal/config"
	"github.com/configproxy/core/internal/handlers"
	"github.com/configproxy/core/internal/observability"
	"github.com/configproxy/core/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the root configuration index over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cmd, *configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("bind", ":8080", "Address to listen on")
	flags.String("upstream", "", "Component server base URL")
	flags.String("language", "", "Default language requested from the component server")
	flags.Duration("timeout", 10*time.Second, "Timeout of a single upstream request")
	flags.Uint("retries", 2, "Retries of a failed upstream request")
	flags.Bool("tracing", false, "Write OpenTelemetry spans to stdout")
	return cmd
}

// newApplication wires metrics, the upstream client and the service into
// the HTTP router.
func newApplication(cfg *config.Config) (*gin.Engine, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	upstream, err := client.NewHTTPClient(client.Options{
		BaseURL:       cfg.Upstream.BaseURL,
		Timeout:       cfg.Upstream.Timeout,
		Retries:       cfg.Upstream.Retries,
		RetryInterval: cfg.Upstream.RetryInterval,
		Observe:       metrics.ObserveUpstream,
	})
	if err != nil {
		return nil, err
	}
	svc := service.NewConfigurationService(upstream, metrics, cfg.Upstream.Language)

	return setupRouter(svc, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), cfg.CORS.AllowedOrigin), nil
}

func setupRouter(svc handlers.ConfigurationService, metrics http.Handler, allowedOrigin string) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		otelgin.Middleware("configproxy"),
		middleware.Cors(allowedOrigin),
	)
	handlers.SetupRoutes(router, svc, metrics)
	return router
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(os.Stdout)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	router, err := newApplication(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("upstream", cfg.Upstream.BaseURL).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
