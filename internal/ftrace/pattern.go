// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package ftrace

import (
	"fmt"
	"strconv"

	"github.com/grafana/regexp"
)

// MicrosecondsPerSecond converts the whole part of an ftrace timestamp.
const MicrosecondsPerSecond = 1_000_000

// Event is a single matched trace line reduced to its timestamp and the
// scalar value the pattern was written to extract.
type Event struct {
	// Timestamp in microseconds since device boot
	Timestamp int64
	Value     string
}

// Pattern matches one event shape of the form
//
//	<whole>.<fraction>: <event>: <detail>
//
// and extracts the value captured by group valueGroup of the full expression.
// Groups 1 and 2 are always the timestamp parts.
type Pattern struct {
	re         *regexp.Regexp
	valueGroup int
}

// NewPattern compiles an event pattern. The value is taken from the first
// capture group inside event or detail, i.e. group 3.
func NewPattern(event, detail string) (*Pattern, error) {
	return NewPatternWithGroup(event, detail, 3)
}

// NewPatternWithGroup is like NewPattern but lets the caller pick the capture
// group holding the value, for events whose name is itself a group.
func NewPatternWithGroup(event, detail string, valueGroup int) (*Pattern, error) {
	re, err := regexp.Compile(fmt.Sprintf(`(\d+)\.(\d+): %s: %s`, event, detail))
	if err != nil {
		return nil, fmt.Errorf("invalid event pattern %q: %w", event, err)
	}
	if valueGroup < 3 || valueGroup > re.NumSubexp() {
		return nil, fmt.Errorf("value group %d out of range for event pattern %q", valueGroup, event)
	}
	return &Pattern{re: re, valueGroup: valueGroup}, nil
}

// MustPattern is NewPattern that panics on error. Only meant for patterns
// built from constants.
func MustPattern(event, detail string) *Pattern {
	p, err := NewPattern(event, detail)
	if err != nil {
		panic(err)
	}
	return p
}

// Match tries the pattern against line. Lines that do not match, or whose
// timestamp cannot be represented, report false.
func (p *Pattern) Match(line string) (Event, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}
	ts, err := Timestamp(m[1], m[2])
	if err != nil {
		return Event{}, false
	}
	return Event{Timestamp: ts, Value: m[p.valueGroup]}, true
}

// Timestamp converts the two integer parts of an ftrace timestamp into
// microseconds. The fraction is taken as an integer count of microseconds,
// which is how ftrace prints it (always six digits).
func Timestamp(whole, fraction string) (int64, error) {
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %s.%s: %w", whole, fraction, err)
	}
	f, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %s.%s: %w", whole, fraction, err)
	}
	return w*MicrosecondsPerSecond + f, nil
}
