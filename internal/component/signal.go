// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import "github.com/sustainable-computing-io/ftrace-energy/internal/ftrace"

// Signal pairs an event pattern with the rule turning the matched raw value
// into the value kept in the signal's series
type Signal struct {
	Pattern *ftrace.Pattern
	// Parse converts the raw value; nil keeps it as is
	Parse func(raw string) string
}

func (s Signal) parse(raw string) string {
	if s.Parse == nil {
		return raw
	}
	return s.Parse(raw)
}

// tracker records the events of a fixed set of signals into one aligned
// series. It is embedded by the lookup based sources.
type tracker struct {
	name    string
	partial bool
	signals []Signal
	series  *Series[string]
}

func newTracker(name string, partial bool, signals ...Signal) tracker {
	return tracker{
		name:    name,
		partial: partial,
		signals: signals,
		series:  NewSeries[string](len(signals)),
	}
}

func (t *tracker) Name() string {
	return t.name
}

// Record tries every signal pattern against line
func (t *tracker) Record(line string) bool {
	recorded := false
	for i, sig := range t.signals {
		ev, ok := sig.Pattern.Match(line)
		if !ok {
			continue
		}
		if t.series.Append(i, ev.Timestamp, sig.parse(ev.Value)) {
			recorded = true
		}
	}
	return recorded
}

func (t *tracker) Finalize() {
	t.series.Fill()
}

// Series exposes the recorded series for inspection
func (t *tracker) Series() *Series[string] {
	return t.series
}
