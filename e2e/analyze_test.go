// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package e2e_test

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// energy of testdata/trace over its recorded window [1s, 4s) in mWh
var expectedEnergy = map[string]float64{
	"CpuBase":   30,
	"Gpu":       8.888889,
	"Wifi":      0.283458,
	"CpuLittle": 41.666667,
	"CpuBig":    125,
}

const expectedTotal = 205.839014

type jsonReport struct {
	Trace  string `json:"trace"`
	Window struct {
		Begin int64 `json:"begin"`
		End   int64 `json:"end"`
	} `json:"window"`
	Components []struct {
		Component string  `json:"component"`
		Energy    float64 `json:"energy"`
	} `json:"components"`
	Total float64 `json:"total"`
}

func analyzeJSON(args ...string) jsonReport {
	args = append([]string{"analyze", "--model.file=" + modelFile, "--output.format=json"}, args...)
	session := run(args...)
	Expect(session.ExitCode()).To(Equal(0), string(session.Err.Contents()))

	var r jsonReport
	Expect(json.Unmarshal(session.Out.Contents(), &r)).To(Succeed())
	return r
}

var _ = Describe("analyze", func() {
	Context("with the window recorded next to the trace", func() {
		It("reports every component in order", func() {
			r := analyzeJSON(traceFile)

			Expect(r.Window.Begin).To(Equal(int64(1_000_000)))
			Expect(r.Window.End).To(Equal(int64(4_000_000)))

			names := []string{}
			for _, c := range r.Components {
				names = append(names, c.Component)
				Expect(c.Energy).To(BeNumerically("~", expectedEnergy[c.Component], 1e-5), c.Component)
			}
			Expect(names).To(Equal([]string{"CpuBase", "Gpu", "Wifi", "CpuLittle", "CpuBig"}))
			Expect(r.Total).To(BeNumerically("~", expectedTotal, 1e-5))
		})
	})

	Context("with an explicit window", func() {
		It("uses the flags over the sidecar", func() {
			r := analyzeJSON("--window.begin=5000000", "--window.end=6000000", traceFile)
			Expect(r.Window.Begin).To(Equal(int64(5_000_000)))
			Expect(r.Total).To(BeNumerically(">", 0))
		})

		It("reads a window file", func() {
			windowFile := filepath.Join(tmpDir, "window")
			Expect(os.WriteFile(windowFile, []byte("1000000 4000000\n"), 0o644)).To(Succeed())
			r := analyzeJSON("--window.file="+windowFile, traceFile)
			Expect(r.Total).To(BeNumerically("~", expectedTotal, 1e-5))
		})

		It("returns zero energy for an empty window", func() {
			r := analyzeJSON("--window.begin=2000000", "--window.end=2000000", traceFile)
			Expect(r.Total).To(BeZero())
		})

		It("rejects half a window", func() {
			session := run("analyze", "--model.file="+modelFile, "--window.begin=1", traceFile)
			Expect(session.ExitCode()).To(Equal(1))
			Expect(string(session.Err.Contents())).To(ContainSubstring("must be set together"))
		})
	})

	Context("with a compressed trace", func() {
		It("matches the plain trace", func() {
			compressed := filepath.Join(tmpDir, "trace.gz")
			writeGzip(traceFile, compressed)

			r := analyzeJSON("--window.file="+traceFile+"_time", compressed)
			Expect(r.Total).To(BeNumerically("~", expectedTotal, 1e-5))
		})
	})

	Context("with other output formats", func() {
		It("renders a table with a total", func() {
			session := run("analyze", "--model.file="+modelFile, traceFile)
			Expect(session.ExitCode()).To(Equal(0))
			out := string(session.Out.Contents())
			Expect(out).To(ContainSubstring("CpuLittle"))
			Expect(out).To(ContainSubstring("205.839014"))
		})

		It("renders csv", func() {
			session := run("analyze", "--model.file="+modelFile, "--output.format=csv", traceFile)
			Expect(session.ExitCode()).To(Equal(0))
			out := string(session.Out.Contents())
			Expect(out).To(HavePrefix("component,energy\n"))
			Expect(out).To(ContainSubstring("CpuBig,125"))
		})

		It("writes a prometheus textfile", func() {
			textfile := filepath.Join(tmpDir, "energy.prom")
			session := run("analyze", "--model.file="+modelFile,
				"--output.format=prometheus", "--output.file="+textfile, traceFile)
			Expect(session.ExitCode()).To(Equal(0))
			Expect(session.Out.Contents()).To(BeEmpty())

			data, err := os.ReadFile(textfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`ftrace_energy_component_energy{component="CpuBig"`))
			Expect(string(data)).To(ContainSubstring("ftrace_energy_total_energy"))
		})
	})

	Context("with bad input", func() {
		It("fails when the model misses a component", func() {
			badModel := filepath.Join(tmpDir, "partial.json")
			Expect(os.WriteFile(badModel, []byte(`{"CpuBase": 36}`), 0o644)).To(Succeed())
			session := run("analyze", "--model.file="+badModel, traceFile)
			Expect(session.ExitCode()).To(Equal(1))
			Expect(string(session.Err.Contents())).To(ContainSubstring("missing model entry"))
		})

		It("fails without a window", func() {
			session := run("analyze", "--model.file="+modelFile, filepath.Join(tmpDir, "no-such-trace"))
			Expect(session.ExitCode()).To(Equal(1))
			Expect(string(session.Err.Contents())).To(ContainSubstring("failed to open window file"))
		})
	})
})

func writeGzip(src, dst string) {
	in, err := os.Open(src)
	Expect(err).NotTo(HaveOccurred())
	defer in.Close()

	out, err := os.Create(dst)
	Expect(err).NotTo(HaveOccurred())
	defer out.Close()

	zw := gzip.NewWriter(out)
	_, err = io.Copy(zw, in)
	Expect(err).NotTo(HaveOccurred())
	Expect(zw.Close()).To(Succeed())
}
