package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"prdflow/internal/api"
	"prdflow/internal/auth"
	"prdflow/internal/config"
	"prdflow/internal/logging"
	"prdflow/internal/mcp"
	"prdflow/internal/repository"
	"prdflow/internal/services"
	"prdflow/internal/tls"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "prdflow-server",
		Short:         "PRD/BRD analysis and workflow generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to .env file")
	return cmd
}

func run(ctx context.Context, envFile string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.Config{
		Level: cfg.Server.LogLevel,
		JSON:  cfg.Server.LogJSON,
	})

	logger.Info("starting PRD Flow service",
		"port", cfg.Server.Port,
		"gemini_configured", cfg.GeminiConfigured(),
		"config_file", viper.ConfigFileUsed(),
	)

	// Database connection
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("mongodb disconnect error", "error", err)
		}
	}()
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	logger.Info("database connected", "database", cfg.Mongo.Database)

	store := repository.NewMongoStore(client, cfg.Mongo.Database)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// AI backend. The service starts without a key; AI endpoints answer 503.
	var ai services.AIClient
	if cfg.GeminiConfigured() {
		gemini, err := services.NewGeminiClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				logger.Error("gemini client close error", "error", err)
			}
		}()
		ai = gemini
		logger.Info("gemini client initialized", "model", cfg.Gemini.Model)
	} else {
		ai = services.Unconfigured{}
		logger.Warn("gemini api key not set, AI endpoints will answer 503")
	}

	analyses := services.NewAnalysisService(ai, store)
	workflows := services.NewWorkflowService(ai, store)

	authn, err := auth.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(otelecho.Middleware("prdflow"))
	e.Use(requestLogger(logger))
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.ErrorHandler(logger)

	srv := api.NewServer(cfg, store, authn, analyses, workflows)
	srv.RegisterRoutes(e)

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(analyses, workflows)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	// OpenAPI spec and Swagger UI
	e.GET("/openapi.yaml", echo.WrapHandler(api.SpecHandler()))
	e.GET("/docs", echo.WrapHandler(api.SwaggerHandler()))

	// WriteTimeout stays 0: SSE connections and retried AI calls hold
	// responses open longer than any fixed write window.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     e,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				serverErrors <- errors.New("tls enabled but cert/key file not provided")
				return
			}
			// Generate a dev certificate when missing and hostnames are given.
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) && len(cfg.TLS.Hostnames) > 0 {
				if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
					logger.Error("failed to generate self-signed cert", "error", err)
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("server close error", "error", err)
			}
		}
		logger.Info("server stopped gracefully")
	}

	return nil
}

// requestLogger attaches a request-scoped logger to the context and writes
// one completion line per request. Errors are rendered by the central error
// handler before the status is read.
func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqLog := log.With("method", req.Method, "path", req.URL.Path)
			c.SetRequest(req.WithContext(logging.WithContext(req.Context(), reqLog)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			reqLog.Info("request completed",
				"status", c.Response().Status,
				"duration", time.Since(start).Round(time.Millisecond).String(),
			)
			return err
		}
	}
}
