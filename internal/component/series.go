// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

// cell is one slot of a value series. A cell that is not known is a
// placeholder until Fill carries the previous value forward.
type cell[T any] struct {
	value T
	known bool
}

// Series keeps one timestamp list shared by several independently updating
// signals. Every signal has exactly one cell per timestamp.
type Series[T any] struct {
	ts      []int64
	signals [][]cell[T]
}

// NewSeries returns an empty series tracking n signals
func NewSeries[T any](n int) *Series[T] {
	return &Series[T]{signals: make([][]cell[T], n)}
}

// Append records value v of signal at ts and a placeholder for every other
// signal. Timestamps must not go backwards; an older timestamp is rejected.
func (s *Series[T]) Append(signal int, ts int64, v T) bool {
	if n := len(s.ts); n > 0 && ts < s.ts[n-1] {
		return false
	}

	s.ts = append(s.ts, ts)
	for i := range s.signals {
		if i == signal {
			s.signals[i] = append(s.signals[i], cell[T]{value: v, known: true})
		} else {
			s.signals[i] = append(s.signals[i], cell[T]{})
		}
	}
	return true
}

// Fill replaces every placeholder with the closest preceding known value of
// the same signal. A leading run without any prior value stays unknown.
func (s *Series[T]) Fill() {
	for _, cells := range s.signals {
		var last cell[T]
		for i, c := range cells {
			if c.known {
				last = c
				continue
			}
			cells[i] = last
		}
	}
}

// Len returns the number of recorded timestamps
func (s *Series[T]) Len() int {
	return len(s.ts)
}

// Timestamps returns the shared timestamp list. Callers must not modify it.
func (s *Series[T]) Timestamps() []int64 {
	return s.ts
}

// Value returns the value of signal at idx. Indices past the end resolve to
// the last sample. Indices before the first sample resolve to the last row
// sharing the first timestamp, so every signal recorded at that instant is
// part of the state extended back in time. ok is false when the value is
// unknown.
func (s *Series[T]) Value(signal, idx int) (v T, ok bool) {
	n := len(s.ts)
	if n == 0 {
		return v, false
	}
	if idx < 0 {
		idx = s.leadingRow()
	}
	idx = min(idx, n-1)
	c := s.signals[signal][idx]
	return c.value, c.known
}

// leadingRow returns the last index whose timestamp equals the first one
func (s *Series[T]) leadingRow() int {
	i := 0
	for i+1 < len(s.ts) && s.ts[i+1] == s.ts[0] {
		i++
	}
	return i
}
