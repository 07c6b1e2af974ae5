// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import "github.com/sustainable-computing-io/ftrace-energy/internal/model"

// OneSignal looks power up by the current value of a single signal
type OneSignal struct {
	tracker
	lookup model.Flat
}

var _ Source = (*OneSignal)(nil)

// NewOneSignal returns a source tracking sig and pricing it with lookup
func NewOneSignal(name string, lookup model.Flat, partial bool, sig Signal) *OneSignal {
	return &OneSignal{
		tracker: newTracker(name, partial, sig),
		lookup:  lookup,
	}
}

// Power returns 0 while the signal is unknown or its value is not modelled
func (c *OneSignal) Power(idx int) float64 {
	v, ok := c.series.Value(0, idx)
	if !ok {
		return 0
	}
	return c.lookup[v]
}

func (c *OneSignal) Energy(begin, end int64) Energy {
	return integrate(c.series.Timestamps(), c.Power, begin, end, c.partial)
}

// TwoSignal looks power up by the current values of two signals: the first
// selects the outer table, the second the entry inside it
type TwoSignal struct {
	tracker
	lookup model.Nested
}

var _ Source = (*TwoSignal)(nil)

// NewTwoSignal returns a source tracking outer and inner and pricing their
// combination with lookup
func NewTwoSignal(name string, lookup model.Nested, partial bool, outer, inner Signal) *TwoSignal {
	return &TwoSignal{
		tracker: newTracker(name, partial, outer, inner),
		lookup:  lookup,
	}
}

// Power returns 0 while either signal is unknown or the combination is not
// modelled
func (c *TwoSignal) Power(idx int) float64 {
	outer, ok := c.series.Value(0, idx)
	if !ok {
		return 0
	}
	inner, ok := c.series.Value(1, idx)
	if !ok {
		return 0
	}
	return c.lookup[outer][inner]
}

func (c *TwoSignal) Energy(begin, end int64) Energy {
	return integrate(c.series.Timestamps(), c.Power, begin, end, c.partial)
}
