package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"docrecon/internal/client"
	"docrecon/internal/common"
	"docrecon/internal/ingest"
	"docrecon/internal/tracker"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Config
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Reachability check against the processing service on startup
	svc := client.New(client.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.Timeout,
	}, slog.Default())
	if _, err := svc.ListJobs(ctx); err != nil {
		log.Warnf("processing service not reachable yet: %v", err)
	} else {
		log.Infow("processing service OK", "url", cfg.Service.BaseURL)
	}

	// Job lifecycle tracker
	store := tracker.NewStore()
	trk := tracker.New(svc, store, cfg.Poll, slog.Default())
	go trk.Run(ctx)

	// Drop-folder watcher
	if err := os.MkdirAll(cfg.Ingest.Root, 0o755); err != nil {
		log.Fatalf("creating inbox %s: %v", cfg.Ingest.Root, err)
	}
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Ingest.Root,
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
	})
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	go func() {
		for werr := range errs {
			log.Warnf("watcher: %v", werr)
		}
	}()

	batcher := ingest.NewBatcher(slog.Default(), cfg.Ingest.Debounce, func(ctx context.Context, files []string, ledger string) error {
		return submitBatch(ctx, trk, cfg, files, ledger)
	})
	go batcher.Run(ctx, events)

	log.Infof("watching %s for documents", cfg.Ingest.Root)

	<-ctx.Done()
	log.Info("shutting down...")
	fmt.Println("stopped.")
}

// submitBatch reads a flushed batch off disk and hands it to the tracker.
func submitBatch(ctx context.Context, trk *tracker.Tracker, cfg *common.Config, files []string, ledger string) error {
	req := client.SubmitRequest{
		SystemPrompt: cfg.Prompts.SystemPrompt,
		UserPrompt:   cfg.Prompts.UserPrompt,
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		req.Files = append(req.Files, client.FileUpload{Name: filepath.Base(path), Data: data})
	}
	if ledger != "" {
		data, err := os.ReadFile(ledger)
		if err != nil {
			return fmt.Errorf("reading ledger %s: %w", ledger, err)
		}
		req.LedgerName = filepath.Base(ledger)
		req.LedgerData = data
		req.LedgerFormat = ingest.LedgerFormat(ledger)
	}
	if len(req.Files) == 0 {
		return nil
	}

	snap, err := trk.Submit(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("ingest.batch.submitted", "job_id", snap.JobID, "files", len(req.Files), "ledger", req.LedgerName)
	return nil
}
