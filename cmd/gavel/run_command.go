package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"gavel/internal/config"
	"gavel/internal/deps"
	"gavel/internal/fetcher"
	"gavel/internal/logging"
	"gavel/internal/queue"
	"gavel/internal/resolver"
	"gavel/internal/transcoder"
	"gavel/internal/verifier"
	"gavel/internal/worker"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the acquisition worker pool until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runWorkers(cmd.Context(), cfg)
		},
	}
}

func runWorkers(ctx context.Context, cfg *config.Config) error {
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "gavel.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another gavel instance is already running (lock: %s)", lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	logPath := filepath.Join(cfg.Paths.LogDir, "gavel-"+time.Now().Format("20060102")+".log")
	logger, err := logging.NewFromConfig(cfg.Logging.Format, cfg.Logging.Level, "stdout", logPath)
	if err != nil {
		return err
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available {
			logger.Info("external dependency available", logging.String("binary", status.Command))
			continue
		}
		if status.Optional {
			logger.Warn("optional dependency missing, continuing without it",
				logging.String("name", status.Name),
				logging.String("detail", status.Detail))
			continue
		}
		return fmt.Errorf("required dependency missing: %s (%s)", status.Name, status.Detail)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Response headers are bounded separately from body reads; mid-stream
	// stalls are handled by the fetcher's stall watchdog.
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: time.Duration(cfg.Archive.RequestTimeout) * time.Second,
		},
	}
	verify := verifier.New(client, time.Duration(cfg.Archive.ProbeTimeout)*time.Second, cfg.Archive.UserAgent, logger)
	pipeline := worker.NewPipeline(
		resolver.New(cfg, client, verify, logger),
		fetcher.New(cfg, client, logger),
		transcoder.New(cfg, logger),
		logger,
	)
	manager := worker.NewManager(cfg, store, pipeline, logger)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Start(runCtx); err != nil {
		return err
	}
	logger.Info("gavel running", logging.String("log_file", logPath))

	<-runCtx.Done()
	logger.Info("shutdown requested, waiting for in-flight jobs")
	manager.Stop()
	return nil
}
