package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/reelwright/reelwright/internal/api"
	"github.com/reelwright/reelwright/internal/article"
	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/config"
	"github.com/reelwright/reelwright/internal/db"
	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/logging"
	"github.com/reelwright/reelwright/internal/render"
)

var errAlreadyRunning = errors.New("another reelwright server is already running")

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local composition API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, cfg, cmd.OutOrStdout())
		},
	}
}

func serve(ctx context.Context, cfg config.Config, out io.Writer) error {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errAlreadyRunning
	}
	defer lock.Unlock()

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reelwright", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()), "config_file", logging.SanitizePath(cfg.File()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := drafts.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  reelwright %s\n", config.Version)
	fmt.Fprintf(out, "  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Fprintf(out, "  Auth Token: %s\n", authToken)
	fmt.Fprintln(out)

	var renderer render.Client
	if cfg.RenderURL() != "" {
		client := render.NewHTTPClient(cfg.RenderURL(), cfg.RenderToken(), logger)
		client.SetTimeout(cfg.RenderTimeout())
		renderer = client
		logger.Info("render engine configured", "url", cfg.RenderURL(), "token", logging.SanitizeToken(cfg.RenderToken()))
	} else {
		renderer = render.NewStubClient(logger)
	}

	comp := composer.NewService(logger)
	fetcher := article.NewFetcher(&http.Client{Timeout: cfg.FetchTimeout()})
	draftSvc := drafts.NewService(repo, comp, fetcher, renderer, logging.WithComponent(logger, "drafts"))

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		ExportDir: cfg.ExportDir(),
		Drafts:    draftSvc,
		Composer:  comp,
		Tokens:    repo,
		Logger:    logger,
		StartTime: startTime,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

type configStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

func ensureAuthToken(ctx context.Context, repo configStore) (string, error) {
	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
