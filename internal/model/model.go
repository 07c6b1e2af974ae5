// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Well known entries of a device power model
const (
	CPUBase      = "CpuBase"
	CPULittle    = "CpuLittle"
	CPUBig       = "CpuBig"
	CPULittleIDs = "CpuLittleId"
	CPUBigIDs    = "CpuBigId"
	GPU          = "Gpu"
	Wifi         = "Wifi"
)

// ErrMissingEntry is returned when the table has no entry for a component
var ErrMissingEntry = errors.New("missing model entry")

// Kind describes the shape of a model entry
type Kind int

const (
	KindUnknown Kind = iota
	// KindScalar is a single constant power value
	KindScalar
	// KindFlat maps one signal value to power
	KindFlat
	// KindNested maps two signal values to power: outer -> inner -> power
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindFlat:
		return "flat"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

type (
	// Flat is a lookup from a signal value to power
	Flat map[string]float64

	// Nested is a lookup keyed by two signal values
	Nested map[string]map[string]float64
)

// Radio holds the calibration of a packet driven radio link.
// Intervals are in microseconds.
type Radio struct {
	ActiveInterval  int64   `yaml:"ActIntvl"`
	TailDuration    int64   `yaml:"TailLen"`
	ActiveCoeff     float64 `yaml:"ACTIVE_COEFF"`
	ActiveIntercept float64 `yaml:"ACTIVE_INTERCEPT"`
	Tail            float64 `yaml:"TAIL"`
	Idle            float64 `yaml:"IDLE"`
}

var radioKeys = []string{"ActIntvl", "TailLen", "ACTIVE_COEFF", "ACTIVE_INTERCEPT", "TAIL", "IDLE"}

// Table is a device power model keyed by component name. It is immutable
// once loaded and safe to share between parsers.
type Table struct {
	entries map[string]yaml.Node
}

// Load reads a model table from r. Both JSON and YAML documents are accepted.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	entries := map[string]yaml.Node{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return &Table{entries: entries}, nil
}

// FromFile loads a model table from a file
func FromFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Names returns the sorted entry names
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) node(name string) (*yaml.Node, error) {
	n, ok := t.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	return &n, nil
}

// Kind reports the shape of the named entry
func (t *Table) Kind(name string) (Kind, error) {
	n, err := t.node(name)
	if err != nil {
		return KindUnknown, err
	}

	switch n.Kind {
	case yaml.ScalarNode:
		return KindScalar, nil
	case yaml.MappingNode:
		// values sit at odd positions of Content
		if len(n.Content) < 2 {
			return KindFlat, nil
		}
		if n.Content[1].Kind == yaml.MappingNode {
			return KindNested, nil
		}
		return KindFlat, nil
	default:
		return KindUnknown, fmt.Errorf("unsupported model entry %s at line %d", name, n.Line)
	}
}

func (t *Table) decode(name string, out any) error {
	n, err := t.node(name)
	if err != nil {
		return err
	}
	if err := n.Decode(out); err != nil {
		return fmt.Errorf("invalid model entry %s: %w", name, err)
	}
	return nil
}

// Scalar returns a constant power entry
func (t *Table) Scalar(name string) (float64, error) {
	var v float64
	if err := t.decode(name, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Flat returns a one signal lookup entry
func (t *Table) Flat(name string) (Flat, error) {
	v := Flat{}
	if err := t.decode(name, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Nested returns a two signal lookup entry
func (t *Table) Nested(name string) (Nested, error) {
	v := Nested{}
	if err := t.decode(name, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Radio returns a radio calibration entry. All coefficients must be present.
func (t *Table) Radio(name string) (Radio, error) {
	raw := map[string]float64{}
	if err := t.decode(name, &raw); err != nil {
		return Radio{}, err
	}
	for _, k := range radioKeys {
		if _, ok := raw[k]; !ok {
			return Radio{}, fmt.Errorf("invalid model entry %s: missing %s", name, k)
		}
	}

	var r Radio
	if err := t.decode(name, &r); err != nil {
		return Radio{}, err
	}
	return r, nil
}

// CoreIDs returns a list of CPU core ids, e.g. the cores of one cluster
func (t *Table) CoreIDs(name string) ([]int, error) {
	var ids []int
	if err := t.decode(name, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
