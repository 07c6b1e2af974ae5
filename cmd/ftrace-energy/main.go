// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sustainable-computing-io/ftrace-energy/internal/config"
	"github.com/sustainable-computing-io/ftrace-energy/internal/logger"
	"github.com/sustainable-computing-io/ftrace-energy/internal/version"
)

const appName = "ftrace-energy"

func main() {
	app := kingpin.New(appName, "Estimates the energy a mobile device spent over a window of an ftrace trace.")
	app.Version(version.Info().String())
	app.HelpFlag.Short('h')

	configFile := app.Flag("config.file", "Path to YAML configuration file").String()
	updateConfig := config.RegisterFlags(app)
	analyze := registerAnalyze(app)
	record := registerRecord(app)

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig(*configFile, updateConfig)
	if err != nil {
		os.Exit(1)
	}
	logger := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	logVersionInfo(logger)
	printConfigInfo(os.Stderr, logger, cfg)

	ctx := context.Background()
	switch cmd {
	case analyze.cmd.FullCommand():
		err = analyze.run(ctx, logger, cfg)
	case record.cmd.FullCommand():
		err = record.run(ctx, logger, cfg)
	}

	if err != nil {
		logger.Error("ftrace-energy terminated with an error", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func logVersionInfo(logger *slog.Logger) {
	v := version.Info()
	logger.Debug("ftrace-energy version information",
		"version", v.Version,
		"buildTime", v.BuildTime,
		"gitBranch", v.GitBranch,
		"gitCommit", v.GitCommit,
		"goVersion", v.GoVersion,
		"goOS", v.GoOS,
		"goArch", v.GoArch,
	)
}

// loadConfig reads the optional config file and applies the command line
// flags on top of it
func loadConfig(configFile string, updateConfig config.ConfigUpdaterFn) (*config.Config, error) {
	logger := logger.New("info", "text", os.Stderr)
	cfg := config.DefaultConfig()
	if configFile != "" {
		logger.Debug("Loading configuration file", "path", configFile)
		loadedCfg, err := config.FromFile(configFile)
		if err != nil {
			logger.Error("Error loading config file", "error", err.Error())
			return nil, err
		}
		cfg = loadedCfg
	}

	if err := updateConfig(cfg); err != nil {
		logger.Error("Error applying command line flags", "error", err.Error())
		return nil, err
	}

	return cfg, nil
}

// printConfigInfo prints the effective configuration at debug level; stdout
// is reserved for the report
func printConfigInfo(w io.Writer, logger *slog.Logger, cfg *config.Config) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) || cfg.Log.Format == "json" {
		return
	}

	fmt.Fprintf(w, `
Configuration
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
%s
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`, cfg)
}
