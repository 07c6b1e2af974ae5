// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"fmt"

	"github.com/sustainable-computing-io/ftrace-energy/internal/ftrace"
	"github.com/sustainable-computing-io/ftrace-energy/internal/model"
)

// Idle classes of a CPU core as kept in its idle series
const (
	CPUIdle   = "0"
	CPUActive = "1"
)

// cpuIdleClass maps a cpu_idle state to an idle class. Entering an idle
// state reports its (single digit) index; leaving idle reports
// PWR_EVENT_EXIT, i.e. 4294967295.
func cpuIdleClass(state string) string {
	if len(state) == 1 {
		return CPUIdle
	}
	return CPUActive
}

// NewCPU returns the source for one CPU core of the cluster model name.
// The shape of the model entry selects the variant:
//   - nested: idle class -> frequency (kHz) -> power
//   - flat:   frequency (kHz) -> power
//   - scalar: constant power
func NewCPU(name string, coreID int, table *model.Table) (Source, error) {
	kind, err := table.Kind(name)
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf(`state=(\d+) cpu_id=%d\b`, coreID)
	idle, err := ftrace.NewPattern("cpu_idle", detail)
	if err != nil {
		return nil, err
	}
	freq, err := ftrace.NewPattern("cpu_frequency", detail)
	if err != nil {
		return nil, err
	}

	switch kind {
	case model.KindNested:
		lookup, err := table.Nested(name)
		if err != nil {
			return nil, err
		}
		return NewTwoSignal(name, lookup, true,
			Signal{Pattern: idle, Parse: cpuIdleClass},
			Signal{Pattern: freq},
		), nil

	case model.KindFlat:
		lookup, err := table.Flat(name)
		if err != nil {
			return nil, err
		}
		return NewOneSignal(name, lookup, true, Signal{Pattern: freq}), nil

	case model.KindScalar:
		p, err := table.Scalar(name)
		if err != nil {
			return nil, err
		}
		return NewConstant(name, p), nil
	}
	return nil, fmt.Errorf("unsupported %s model entry for %s", kind, name)
}

// NewCPUBase returns the always-on baseline draw of the CPU subsystem
func NewCPUBase(table *model.Table) (Source, error) {
	p, err := table.Scalar(model.CPUBase)
	if err != nil {
		return nil, err
	}
	return NewConstant(model.CPUBase, p), nil
}
