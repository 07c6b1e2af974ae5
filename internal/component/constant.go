// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package component

// Constant draws a fixed power at all times and never parses events
type Constant struct {
	name  string
	power float64
}

var _ Source = (*Constant)(nil)

// NewConstant returns a source drawing power p at all times
func NewConstant(name string, p float64) *Constant {
	return &Constant{name: name, power: p}
}

func (c *Constant) Name() string {
	return c.name
}

func (c *Constant) Record(string) bool {
	return false
}

func (c *Constant) Finalize() {}

func (c *Constant) Power(int) float64 {
	return c.power
}

func (c *Constant) Energy(begin, end int64) Energy {
	if end <= begin {
		return 0
	}
	return scale(c.power * float64(end-begin))
}
