// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import "fmt"

const microsecondsPerHour = 3_600_000_000

// Energy is the energy reported for a window: power model units x 1000 per
// hour, i.e. a model in watts yields milliwatt hours
type Energy float64

func (e Energy) String() string {
	return fmt.Sprintf("%.6f", float64(e))
}

// scale converts an accumulated power x microseconds product into Energy
func scale(powerTime float64) Energy {
	return Energy(powerTime * 1000 / microsecondsPerHour)
}

// Source is a hardware component whose power draw is reconstructed from
// trace events and integrated over a time window.
type Source interface {
	// Name returns the component name, which is also its model table key.
	// Several sources may share a name, e.g. all cores of one cluster.
	Name() string

	// Record offers a trace line to the component and reports whether
	// it was recorded as an event
	Record(line string) bool

	// Finalize resolves the recorded series once all lines were offered.
	// The source is read-only afterwards.
	Finalize()

	// Power returns the power drawn in the state at aligned index idx
	Power(idx int) float64

	// Energy integrates power over [begin, end), both in microseconds
	Energy(begin, end int64) Energy
}
