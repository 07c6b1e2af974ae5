// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

import "sort"

// integrate sums power(i) x dt over the timestamps ts that fall inside
// [begin, end).
//
// With partial coverage the source owns the whole window: the last state
// before begin and the state at the last event before end are extended to
// the window boundaries. Without it only the intervals between observed
// events inside the window count.
//
// power is always evaluated at the index of ts where an interval starts, so
// the synthetic leading interval asks for index bi-1 (possibly -1).
func integrate(ts []int64, power func(int) float64, begin, end int64, partial bool) Energy {
	if end <= begin {
		return 0
	}

	// first timestamp strictly after begin, first timestamp at or after end
	bi := sort.Search(len(ts), func(i int) bool { return ts[i] > begin })
	ei := sort.Search(len(ts), func(i int) bool { return ts[i] >= end })

	clip := make([]int64, 0, max(ei-bi, 0)+2)
	if partial {
		clip = append(clip, begin)
	}
	if ei > bi {
		clip = append(clip, ts[bi:ei]...)
	}
	if partial {
		clip = append(clip, end)
		bi--
		ei++
	}

	var acc float64
	for i := bi; i < ei-1; i++ {
		k := i - bi
		dt := clip[k+1] - clip[k]
		if dt == 0 {
			continue
		}
		acc += power(i) * float64(dt)
	}
	return scale(acc)
}
