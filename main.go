package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mapengine/mapdata"
	"mapengine/mapengine"
)

var startTime time.Time

func processError(err error) {
	slog.Error("fatal", "err", err, "elapsed", time.Since(startTime))
	os.Exit(1)
}

func main() {
	// Track start time for benchmarking.
	startTime = time.Now()

	level := slog.LevelInfo
	if stringContains(os.Args[1:], "debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if errors.Is(err, errConfigCreated) {
		logger.Info("created default config, please edit it to preference", "path", configPath)
		return
	}
	if err != nil {
		processError(err)
	}
	logger.Info("paths", "game", cfg.HoiPath, "mod", cfg.ModPath, "output", cfg.OutputDir)

	paths, err := mapdata.ResolveProjectPaths(cfg.ModPath, cfg.HoiPath)
	if err != nil {
		processError(err)
	}

	eng := mapengine.New(mapengine.Options{Logger: logger, Workers: cfg.Workers})
	msg, err := eng.Initialize(ctx, paths)
	if err != nil {
		processError(err)
	}
	logger.Info(msg, "elapsed", time.Since(startTime))

	x := &exporter{eng: eng, cfg: cfg, log: logger, start: startTime}
	if err := x.run(); err != nil {
		processError(err)
	}

	logger.Info("done", "elapsed", time.Since(startTime))
}

func stringContains(s []string, e string) bool {
	for _, a := range s {
		if strings.Contains(a, e) {
			return true
		}
	}
	return false
}
