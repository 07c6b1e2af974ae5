// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package prometheus

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	collector "github.com/sustainable-computing-io/ftrace-energy/internal/exporter/prometheus/collector"
	"github.com/sustainable-computing-io/ftrace-energy/internal/report"
)

type Opts struct {
	logger   *slog.Logger
	out      io.Writer
	textfile string
}

// DefaultOpts() returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger: slog.Default(),
		out:    os.Stdout,
	}
}

// OptionFn is a function sets one more more options in Opts struct
type OptionFn func(*Opts)

// WithLogger sets the logger for the Exporter
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger
	}
}

// WithOutput sets the writer used when no textfile is configured
func WithOutput(out io.Writer) OptionFn {
	return func(o *Opts) {
		o.out = out
	}
}

// WithTextfile makes the exporter write a node_exporter textfile collector
// file instead of writing to the output
func WithTextfile(path string) OptionFn {
	return func(o *Opts) {
		o.textfile = path
	}
}

// Exporter writes energy reports in the Prometheus text exposition format
type Exporter struct {
	logger   *slog.Logger
	out      io.Writer
	textfile string
}

// NewExporter creates a new Exporter instance
func NewExporter(applyOpts ...OptionFn) *Exporter {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &Exporter{
		logger:   opts.logger.With("exporter", "prometheus"),
		out:      opts.out,
		textfile: opts.textfile,
	}
}

// Export writes r
func (e *Exporter) Export(r *report.Report) error {
	registry := prom.NewRegistry()
	registry.MustRegister(
		collector.NewBuildInfoCollector(),
		collector.NewEnergyCollector(r),
	)

	if e.textfile != "" {
		e.logger.Info("Writing textfile", "path", e.textfile)
		if err := prom.WriteToTextfile(e.textfile, registry); err != nil {
			return fmt.Errorf("failed to write textfile: %w", err)
		}
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(e.out, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Name returns the exporter name
func (e *Exporter) Name() string {
	return "prometheus"
}
