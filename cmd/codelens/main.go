package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"golang.org/x/sync/errgroup"

	groqadapter "github.com/ericfisherdev/codelens/internal/adapter/driven/groq"
	sqliteadapter "github.com/ericfisherdev/codelens/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/codelens/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/codelens/internal/adapter/driving/web"
	"github.com/ericfisherdev/codelens/internal/application"
	"github.com/ericfisherdev/codelens/internal/config"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
	"github.com/ericfisherdev/codelens/internal/logger"
	"github.com/ericfisherdev/codelens/internal/prompt"
)

const janitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (invalid values are fatal; a missing key is not).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"default_model", cfg.DefaultModel,
		"session_ttl", cfg.SessionTTL,
		"credential_present", cfg.HasCredential(),
	)
	if !cfg.HasCredential() {
		slog.Warn("API key missing, analysis disabled until the server is restarted with it set",
			"variable", config.CredentialEnv)
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("database ready", "path", db.Path(), "schema_version", version)

	// 5. Wire storage. Without a configured key, session payloads are sealed
	// with a per-process key; they are purged at startup either way.
	var sealer *sqliteadapter.Sealer
	if cfg.SecretKey != nil {
		sealer, err = sqliteadapter.NewSealer(cfg.SecretKey)
	} else {
		sealer, err = sqliteadapter.NewEphemeralSealer()
	}
	if err != nil {
		return err
	}
	sessionStore := sqliteadapter.NewSessionRepo(db, sealer)
	analysisStore := sqliteadapter.NewAnalysisRepo(db)

	// 6. Remote client, only when a key is configured.
	var (
		streamer driven.ChatStreamer
		catalog  driven.ModelCatalog
	)
	if cfg.HasCredential() {
		client := groqadapter.NewClient(cfg.APIKey, cfg.GroqBaseURL)
		streamer, catalog = client, client
	}

	// 7. Services.
	tmpl, err := prompt.Default()
	if err != nil {
		return err
	}

	sessionSvc := application.NewSessionService(sessionStore, cfg.DefaultModel, cfg.SessionTTL)
	purged, err := sessionSvc.PurgeAll(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		slog.Info("purged sessions from previous run", "count", purged)
	}

	reviewSvc := application.NewReviewService(streamer, analysisStore, tmpl)
	modelSvc := application.NewModelService(catalog, cfg.DefaultModel)
	healthSvc := application.NewHealthService(sessionStore, cfg.HasCredential())

	// 8. HTTP routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(healthSvc, modelSvc, reviewSvc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(sessionSvc, reviewSvc, modelSvc, cfg.MaxUploadBytes, slog.Default()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second, // lifted per response for the analyze stream
		IdleTimeout:       120 * time.Second,
	}

	// 9. Run server and session janitor until a signal or a fatal error.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessionSvc.RunJanitor(gctx, janitorInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
