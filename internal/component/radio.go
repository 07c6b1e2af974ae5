// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"fmt"
	"strconv"

	"github.com/grafana/regexp"
	"github.com/sustainable-computing-io/ftrace-energy/internal/ftrace"
	"github.com/sustainable-computing-io/ftrace-energy/internal/model"
)

// DefaultRadioInterface is the network device of the Wi-Fi radio
const DefaultRadioInterface = "wlan0"

// RadioState is the power state of a radio derived from packet timing
type RadioState int

const (
	// RadioUnknown marks the last sample, whose state depends on a packet
	// that was never seen
	RadioUnknown RadioState = iota
	RadioIdle
	RadioTail
	RadioActive
)

func (s RadioState) String() string {
	switch s {
	case RadioIdle:
		return "IDLE"
	case RadioTail:
		return "TAIL"
	case RadioActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// RadioSample is one packet event, or a synthesized state change, of a radio
type RadioSample struct {
	Timestamp int64
	// Length is the packet length in bytes; 0 for synthesized samples
	Length int64
	State  RadioState
}

// Radio estimates the power of a radio link that only reports packets.
// Its power state is derived from the gaps between packets: packets closer
// than the activity interval keep the radio ACTIVE, after the last active
// packet it stays in TAIL for the tail duration and then drops to IDLE.
//
// Energy is only attributed between the first and last packet of a window,
// the idle baseline is carried by the IDLE state itself.
type Radio struct {
	name    string
	model   model.Radio
	pattern *ftrace.Pattern

	recorded []RadioSample
	samples  []RadioSample
	ts       []int64
}

var _ Source = (*Radio)(nil)

// NewRadio returns the radio source for network device iface
func NewRadio(name string, m model.Radio, iface string) (*Radio, error) {
	if iface == "" {
		iface = DefaultRadioInterface
	}
	p, err := ftrace.NewPatternWithGroup(
		"(net_dev_xmit|netif_rx)",
		fmt.Sprintf(`dev=%s\b.*len=(\d+)`, regexp.QuoteMeta(iface)),
		4,
	)
	if err != nil {
		return nil, err
	}
	return &Radio{name: name, model: m, pattern: p}, nil
}

// NewWifi returns the Wi-Fi radio source from its model table entry
func NewWifi(table *model.Table, iface string) (*Radio, error) {
	m, err := table.Radio(model.Wifi)
	if err != nil {
		return nil, err
	}
	return NewRadio(model.Wifi, m, iface)
}

func (r *Radio) Name() string {
	return r.name
}

func (r *Radio) Record(line string) bool {
	ev, ok := r.pattern.Match(line)
	if !ok {
		return false
	}
	length, err := strconv.ParseInt(ev.Value, 10, 64)
	if err != nil {
		return false
	}
	if n := len(r.recorded); n > 0 && ev.Timestamp < r.recorded[n-1].Timestamp {
		return false
	}
	r.recorded = append(r.recorded, RadioSample{Timestamp: ev.Timestamp, Length: length})
	return true
}

// Finalize derives the radio states from the recorded packets
func (r *Radio) Finalize() {
	r.samples = deriveRadioStates(r.recorded, r.model)
	r.ts = make([]int64, len(r.samples))
	for i, s := range r.samples {
		r.ts[i] = s.Timestamp
	}
}

// Samples returns the derived sample sequence. Callers must not modify it.
func (r *Radio) Samples() []RadioSample {
	return r.samples
}

// deriveRadioStates walks the packets once and emits the state of every
// gap. When the tail runs out strictly between two packets an extra IDLE
// sample of length 0 is emitted where the tail ends.
func deriveRadioStates(in []RadioSample, m model.Radio) []RadioSample {
	out := make([]RadioSample, 0, len(in)+len(in)/4)

	// time of the latest packet that kept the radio active
	var lastAct int64
	for i := 0; i+1 < len(in); i++ {
		cur, next := in[i], in[i+1]
		switch {
		case next.Timestamp-cur.Timestamp <= m.ActiveInterval:
			cur.State = RadioActive
			lastAct = next.Timestamp
			out = append(out, cur)

		case next.Timestamp-lastAct <= m.TailDuration:
			cur.State = RadioTail
			out = append(out, cur)

		case cur.Timestamp-lastAct < m.TailDuration:
			// NOTE: lastAct+TailDuration lies in (cur, next) here, so the
			// synthesized sample never lands on a recorded one
			cur.State = RadioTail
			out = append(out, cur, RadioSample{
				Timestamp: lastAct + m.TailDuration,
				Length:    0,
				State:     RadioIdle,
			})

		default:
			cur.State = RadioIdle
			out = append(out, cur)
		}
	}

	if n := len(in); n > 0 {
		last := in[n-1]
		last.State = RadioUnknown
		out = append(out, last)
	}
	return out
}

// Power returns the linear throughput model while ACTIVE and the calibrated
// state power otherwise
func (r *Radio) Power(idx int) float64 {
	if idx < 0 || idx >= len(r.samples) {
		return r.model.Idle
	}

	s := r.samples[idx]
	switch s.State {
	case RadioActive:
		var xput float64
		if idx+1 < len(r.samples) {
			if dt := r.samples[idx+1].Timestamp - s.Timestamp; dt > 0 {
				xput = float64(s.Length*8) / float64(dt)
			}
		}
		return r.model.ActiveCoeff*xput + r.model.ActiveIntercept
	case RadioTail:
		return r.model.Tail
	default:
		return r.model.Idle
	}
}

func (r *Radio) Energy(begin, end int64) Energy {
	return integrate(r.ts, r.Power, begin, end, false)
}
