// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package stdout

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sustainable-computing-io/ftrace-energy/internal/report"
)

// Formats understood by the exporter
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Exporter writes energy reports to stdout or any other writer
type Exporter struct {
	logger *slog.Logger
	out    io.Writer
	format string
}

type Opts struct {
	logger *slog.Logger
	out    io.Writer
	format string
}

// DefaultOpts() returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger: slog.Default(),
		out:    os.Stdout,
		format: FormatTable,
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

func WithOutput(out io.Writer) OptionFn {
	return func(o *Opts) {
		o.out = out
	}
}

func WithFormat(format string) OptionFn {
	return func(o *Opts) {
		o.format = format
	}
}

func NewExporter(applyOpts ...OptionFn) *Exporter {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &Exporter{
		logger: opts.logger.With("exporter", "stdout"),
		out:    opts.out,
		format: opts.format,
	}
}

// Export writes r in the configured format
func (e *Exporter) Export(r *report.Report) error {
	e.logger.Debug("Exporting report", "format", e.format, "components", len(r.Components))

	switch e.format {
	case FormatTable:
		return writeTable(e.out, r)
	case FormatJSON:
		return writeJSON(e.out, r)
	case FormatCSV:
		return writeCSV(e.out, r)
	default:
		return fmt.Errorf("unsupported output format: %s", e.format)
	}
}

// Name returns the exporter name
func (e *Exporter) Name() string {
	return "stdout"
}

func formatEnergy(e float64) string {
	return strconv.FormatFloat(e, 'f', 6, 64)
}

func writeTable(out io.Writer, r *report.Report) error {
	rows := make([][]string, 0, len(r.Components))
	for _, ce := range r.Components {
		rows = append(rows, []string{ce.Component, formatEnergy(ce.Energy)})
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header([]string{"Component", "Energy"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	table.Footer([]string{"Total", formatEnergy(r.Total)})
	return table.Render()
}

func writeJSON(out io.Writer, r *report.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeCSV(out io.Writer, r *report.Report) error {
	rows := append([]report.ComponentEnergy(nil), r.Components...)
	rows = append(rows, report.ComponentEnergy{Component: "Total", Energy: r.Total})

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	_, err = out.Write(data)
	return err
}
