// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"github.com/sustainable-computing-io/ftrace-energy/internal/component"
	"github.com/sustainable-computing-io/ftrace-energy/internal/parser"
)

// EnergyProvider answers per component energy queries
type EnergyProvider interface {
	Components() []string
	EnergyByComponent(begin, end int64) map[string]component.Energy
}

// ComponentEnergy is the energy of one component over the report window
type ComponentEnergy struct {
	Component string  `json:"component" csv:"component"`
	Energy    float64 `json:"energy" csv:"energy"`
}

// Report is the energy breakdown of one trace over one window
type Report struct {
	Trace      string            `json:"trace,omitempty"`
	Window     parser.Window     `json:"window"`
	Components []ComponentEnergy `json:"components"`
	Total      float64           `json:"total"`
}

// New queries ep over w and returns the breakdown in component order
func New(trace string, w parser.Window, ep EnergyProvider) *Report {
	byName := ep.EnergyByComponent(w.Begin, w.End)

	r := &Report{Trace: trace, Window: w}
	for _, name := range ep.Components() {
		e := float64(byName[name])
		r.Components = append(r.Components, ComponentEnergy{Component: name, Energy: e})
		r.Total += e
	}
	return r
}
