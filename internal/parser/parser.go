// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sustainable-computing-io/ftrace-energy/internal/component"
	"github.com/sustainable-computing-io/ftrace-energy/internal/ftrace"
	"github.com/sustainable-computing-io/ftrace-energy/internal/model"
)

type Energy = component.Energy

// ErrAlreadyParsed is returned when a parser is fed a second trace
var ErrAlreadyParsed = errors.New("trace already parsed")

type Opts struct {
	logger         *slog.Logger
	radioInterface string
}

// DefaultOpts returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger:         slog.Default(),
		radioInterface: component.DefaultRadioInterface,
	}
}

// OptionFn is a function sets one more more options in Opts struct
type OptionFn func(*Opts)

// WithLogger sets the logger for the Parser
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger
	}
}

// WithRadioInterface sets the network device traced for the Wi-Fi radio
func WithRadioInterface(iface string) OptionFn {
	return func(o *Opts) {
		o.radioInterface = iface
	}
}

// Parser replays one ftrace log through the components of a device power
// model and answers energy queries over it. A Parser analyses exactly one
// trace; create a new one for every session.
type Parser struct {
	logger     *slog.Logger
	components []component.Source
	names      []string
	parsed     bool
}

// New creates the components of the device described by table: the CPU
// baseline, the GPU, the Wi-Fi radio and one source per little and big CPU
// core. It fails if any component has no model entry.
func New(table *model.Table, applyOpts ...OptionFn) (*Parser, error) {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	var comps []component.Source
	add := func(c component.Source, err error) error {
		if err != nil {
			return err
		}
		comps = append(comps, c)
		return nil
	}

	if err := add(component.NewCPUBase(table)); err != nil {
		return nil, fmt.Errorf("failed to create cpu base: %w", err)
	}
	if err := add(component.NewGPU(table)); err != nil {
		return nil, fmt.Errorf("failed to create gpu: %w", err)
	}
	wifi, err := component.NewWifi(table, opts.radioInterface)
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi: %w", err)
	}
	comps = append(comps, wifi)

	clusters := []struct{ name, ids string }{
		{model.CPULittle, model.CPULittleIDs},
		{model.CPUBig, model.CPUBigIDs},
	}
	for _, cl := range clusters {
		ids, err := table.CoreIDs(cl.ids)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s cores: %w", cl.name, err)
		}
		for _, id := range ids {
			if err := add(component.NewCPU(cl.name, id, table)); err != nil {
				return nil, fmt.Errorf("failed to create %s core %d: %w", cl.name, id, err)
			}
		}
	}

	p := &Parser{
		logger:     opts.logger.With("service", "parser"),
		components: comps,
	}
	seen := map[string]bool{}
	for _, c := range comps {
		if !seen[c.Name()] {
			seen[c.Name()] = true
			p.names = append(p.names, c.Name())
		}
	}
	p.logger.Debug("Created components", "components", len(comps), "names", p.names,
		"model-entries", table.Names())
	return p, nil
}

// Components returns the distinct component names in reporting order
func (p *Parser) Components() []string {
	return append([]string(nil), p.names...)
}

// Parse offers every line of r to every component and finalizes their
// series once r is exhausted. Lines no component recognises are skipped.
func (p *Parser) Parse(r io.Reader) error {
	if p.parsed {
		return ErrAlreadyParsed
	}
	p.parsed = true

	lines := 0
	events := make(map[string]int, len(p.names))
	err := ftrace.Lines(r, func(line string) {
		lines++
		for _, c := range p.components {
			if c.Record(line) {
				events[c.Name()]++
			}
		}
	})
	if err != nil {
		return err
	}

	for _, c := range p.components {
		c.Finalize()
	}

	p.logger.Debug("Parsed trace", "lines", lines)
	for _, name := range p.names {
		p.logger.Debug("Recorded events", "component", name, "events", events[name])
	}
	return nil
}

// ParseFile parses a trace file, see ftrace.Open for supported formats
func (p *Parser) ParseFile(path string) error {
	rc, err := ftrace.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	p.logger.Info("Parsing trace", "path", path)
	return p.Parse(rc)
}

// EnergyByComponent returns the energy of every component over
// [begin, end). Components sharing a name, e.g. the cores of a cluster, are
// summed.
func (p *Parser) EnergyByComponent(begin, end int64) map[string]Energy {
	energy := make(map[string]Energy, len(p.names))
	for _, c := range p.components {
		energy[c.Name()] += c.Energy(begin, end)
	}
	return energy
}

// Energy returns the total energy of all components over [begin, end)
func (p *Parser) Energy(begin, end int64) Energy {
	byName := p.EnergyByComponent(begin, end)

	var total Energy
	for _, name := range p.names {
		total += byName[name]
	}
	return total
}
