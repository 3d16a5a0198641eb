package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docrecon/internal/client"
	"docrecon/internal/common"
	"docrecon/internal/export"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	jobID := flag.String("job", "", "job ID to export")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	out := flag.String("out", "", "output path (default <export dir>/<job>.<format>)")
	list := flag.Bool("list", false, "list known jobs instead of exporting")
	flag.Parse()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc := client.New(client.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.Timeout,
	}, logger)

	if *list {
		jobs, err := svc.ListJobs(ctx)
		if err != nil {
			logger.Error("listing jobs", "error", err)
			os.Exit(1)
		}
		for _, j := range jobs {
			fmt.Printf("%s\t%s\t%s\t%d files\n", j.JobID, j.Status, j.CreatedAt, j.TotalFiles)
		}
		return
	}

	if *jobID == "" {
		logger.Error("usage: reconexport -job <id> [-format csv|xlsx] [-out path]")
		os.Exit(2)
	}
	if *format != "csv" && *format != "xlsx" {
		logger.Error("invalid format", "format", *format)
		os.Exit(2)
	}

	result, err := svc.JobResults(ctx, *jobID)
	if err != nil {
		logger.Error("fetching results", "job_id", *jobID, "error", err)
		os.Exit(1)
	}
	if result.ExtractedCSVData == nil {
		logger.Error("job has no extracted data yet", "job_id", *jobID, "status", result.Status)
		os.Exit(1)
	}

	exp := export.NewService(logger)
	rows := exp.Table(result.ExtractedCSVData)

	path := *out
	if path == "" {
		if err := os.MkdirAll(cfg.Export.OutputDir, 0o755); err != nil {
			logger.Error("creating export dir", "dir", cfg.Export.OutputDir, "error", err)
			os.Exit(1)
		}
		path = filepath.Join(cfg.Export.OutputDir, *jobID+"."+*format)
	}

	switch *format {
	case "xlsx":
		data, err := exp.BuildXLSX(rows)
		if err != nil {
			logger.Error("building workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error("writing workbook", "path", path, "error", err)
			os.Exit(1)
		}
	default:
		f, err := os.Create(path)
		if err != nil {
			logger.Error("creating output", "path", path, "error", err)
			os.Exit(1)
		}
		if err := exp.WriteCSV(f, rows); err != nil {
			_ = f.Close()
			logger.Error("writing csv", "path", path, "error", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			logger.Error("closing output", "path", path, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("export complete", "job_id", *jobID, "rows", len(rows), "path", path)
}
