// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"fmt"

	"github.com/sustainable-computing-io/ftrace-energy/internal/ftrace"
	"github.com/sustainable-computing-io/ftrace-energy/internal/model"
)

var (
	gpuState = ftrace.MustPattern("kgsl_pwr_set_state", `.*state=([A-Z]+)`)
	gpuClock = ftrace.MustPattern("kgsl_clk", `.*active_freq=(\d+)`)
)

// NewGPU returns the source for an Adreno (kgsl) GPU. A nested model entry
// is keyed by power state then active clock (Hz), a flat one by clock only.
func NewGPU(table *model.Table) (Source, error) {
	const name = model.GPU

	kind, err := table.Kind(name)
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
			Signal{Pattern: gpuState},
			Signal{Pattern: gpuClock},
		), nil

	case model.KindFlat:
		lookup, err := table.Flat(name)
		if err != nil {
			return nil, err
		}
		return NewOneSignal(name, lookup, true, Signal{Pattern: gpuClock}), nil

	case model.KindScalar:
		p, err := table.Scalar(name)
		if err != nil {
			return nil, err
		}
		return NewConstant(name, p), nil
	}
	return nil, fmt.Errorf("unsupported %s model entry for %s", kind, name)
}
