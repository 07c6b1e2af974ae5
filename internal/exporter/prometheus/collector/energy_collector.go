// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/sustainable-computing-io/ftrace-energy/internal/report"
)

const traceLabel = "trace"

// EnergyCollector exposes one energy report as gauges
type EnergyCollector struct {
	report *report.Report

	componentEnergyDesc *prom.Desc
	totalEnergyDesc     *prom.Desc
	windowSecondsDesc   *prom.Desc
}

var _ prom.Collector = (*EnergyCollector)(nil)

// NewEnergyCollector creates a collector for r
func NewEnergyCollector(r *report.Report) *EnergyCollector {
	return &EnergyCollector{
		report: r,
		componentEnergyDesc: prom.NewDesc(
			prom.BuildFQName(namespace, "component", "energy"),
			"Energy consumed by a hardware component over the trace window in model energy units",
			[]string{traceLabel, "component"}, nil),
		totalEnergyDesc: prom.NewDesc(
			prom.BuildFQName(namespace, "", "total_energy"),
			"Energy consumed by all hardware components over the trace window in model energy units",
			[]string{traceLabel}, nil),
		windowSecondsDesc: prom.NewDesc(
			prom.BuildFQName(namespace, "window", "seconds"),
			"Length of the trace window",
			[]string{traceLabel}, nil),
	}
}

func (c *EnergyCollector) Describe(ch chan<- *prom.Desc) {
	ch <- c.componentEnergyDesc
	ch <- c.totalEnergyDesc
	ch <- c.windowSecondsDesc
}

func (c *EnergyCollector) Collect(ch chan<- prom.Metric) {
	trace := c.report.Trace
	for _, ce := range c.report.Components {
		ch <- prom.MustNewConstMetric(c.componentEnergyDesc, prom.GaugeValue, ce.Energy, trace, ce.Component)
	}
	ch <- prom.MustNewConstMetric(c.totalEnergyDesc, prom.GaugeValue, c.report.Total, trace)
	ch <- prom.MustNewConstMetric(c.windowSecondsDesc, prom.GaugeValue, c.report.Window.Duration().Seconds(), trace)
}
