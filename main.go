package main

import (
	"flag"
	"log/slog"
	"time"

	"github.com/larsvh/doc-scan-go/app"
	"github.com/larsvh/doc-scan-go/config"
	"github.com/larsvh/doc-scan-go/debug"
	"github.com/larsvh/doc-scan-go/hw"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to config file (json or yaml)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime metrics")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}
	if !hw.Available() {
		logger.Warn("no capture hardware detected, camera attempts will fail")
	}
	if cfg.Debug {
		debug.StartRuntimeLogger(5*time.Second, logger)
	}

	application := app.NewApp("Doc Scan", 800, 600, cfg, logger)
	application.Start()
}
