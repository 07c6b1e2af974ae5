// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sustainable-computing-io/ftrace-energy/internal/config"
	"github.com/sustainable-computing-io/ftrace-energy/internal/exporter/prometheus"
	"github.com/sustainable-computing-io/ftrace-energy/internal/exporter/stdout"
	"github.com/sustainable-computing-io/ftrace-energy/internal/model"
	"github.com/sustainable-computing-io/ftrace-energy/internal/parser"
	"github.com/sustainable-computing-io/ftrace-energy/internal/report"
)

type analyzeCommand struct {
	cmd *kingpin.CmdClause

	traceFile  *string
	begin      *int64
	end        *int64
	windowFile *string

	beginSet bool
	endSet   bool
}

func registerAnalyze(app *kingpin.Application) *analyzeCommand {
	a := &analyzeCommand{}
	a.cmd = app.Command("analyze", "Report the energy spent over a window of a recorded trace.").Default()
	a.traceFile = a.cmd.Arg("trace", "ftrace text output; .gz and .zst files are decompressed").Required().String()
	a.begin = a.cmd.Flag("window.begin", "Window start in device clock microseconds").IsSetByUser(&a.beginSet).Int64()
	a.end = a.cmd.Flag("window.end", "Window end in device clock microseconds").IsSetByUser(&a.endSet).Int64()
	a.windowFile = a.cmd.Flag("window.file", `File holding "<begin> <end>"; defaults to <trace>`+parser.WindowFileSuffix).String()
	return a
}

// window resolves the query window: explicit flags first, then the window
// file, then the sidecar recorded next to the trace
func (a *analyzeCommand) window() (parser.Window, error) {
	switch {
	case a.beginSet || a.endSet:
		if !(a.beginSet && a.endSet) {
			return parser.Window{}, errors.New("--window.begin and --window.end must be set together")
		}
		w := parser.Window{Begin: *a.begin, End: *a.end}
		return w, w.Validate()

	case *a.windowFile != "":
		f, err := os.Open(*a.windowFile)
		if err != nil {
			return parser.Window{}, fmt.Errorf("failed to open window file: %w", err)
		}
		defer f.Close()
		return parser.ReadWindow(f)

	default:
		return parser.WindowFromFile(*a.traceFile)
	}
}

func (a *analyzeCommand) run(_ context.Context, logger *slog.Logger, cfg *config.Config) error {
	w, err := a.window()
	if err != nil {
		return err
	}
	return analyzeTrace(logger, cfg, *a.traceFile, w)
}

// analyzeTrace parses traceFile against the configured model and exports the
// energy over w
func analyzeTrace(logger *slog.Logger, cfg *config.Config, traceFile string, w parser.Window) error {
	table, err := model.FromFile(cfg.Model.File)
	if err != nil {
		return err
	}

	p, err := parser.New(table,
		parser.WithLogger(logger),
		parser.WithRadioInterface(cfg.Trace.RadioInterface),
	)
	if err != nil {
		return err
	}

	logger.Info("Analyzing trace", "window", w, "duration", w.Duration())
	if err := p.ParseFile(traceFile); err != nil {
		return err
	}

	r := report.New(traceFile, w, p)
	exp := createExporter(logger, cfg)
	logger.Debug("Exporting report", "exporter", exp.Name(), "total", r.Total)
	return exp.Export(r)
}

type exporter interface {
	Name() string
	Export(r *report.Report) error
}

func createExporter(logger *slog.Logger, cfg *config.Config) exporter {
	if cfg.Output.Format == config.OutputPrometheus {
		return prometheus.NewExporter(
			prometheus.WithLogger(logger),
			prometheus.WithTextfile(cfg.Output.File),
		)
	}
	return stdout.NewExporter(
		stdout.WithLogger(logger),
		stdout.WithFormat(cfg.Output.Format),
	)
}
