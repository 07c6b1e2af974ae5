// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrInvalidWindow is returned for a query window that ends before it begins
var ErrInvalidWindow = errors.New("invalid window")

// WindowFileSuffix is appended to a trace file name to get the file holding
// the clock readings taken when the trace was recorded
const WindowFileSuffix = "_time"

// Window is a query window in device clock microseconds, the timebase of the
// trace timestamps
type Window struct {
	Begin int64 `json:"begin"`
	End   int64 `json:"end"`
}

// Validate checks that the window does not end before it begins
func (w Window) Validate() error {
	if w.End < w.Begin {
		return fmt.Errorf("%w: end %d before begin %d", ErrInvalidWindow, w.End, w.Begin)
	}
	return nil
}

// Duration returns the window length
func (w Window) Duration() time.Duration {
	return time.Duration(w.End-w.Begin) * time.Microsecond
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Begin, w.End)
}

// ReadWindow reads a window stored as "<begin> <end>"
func ReadWindow(r io.Reader) (Window, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Window{}, fmt.Errorf("failed to read window: %w", err)
	}

	var w Window
	if _, err := fmt.Sscan(strings.TrimSpace(string(data)), &w.Begin, &w.End); err != nil {
		return Window{}, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, strings.TrimSpace(string(data)), err)
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// WindowFromFile reads the window stored next to traceFile
func WindowFromFile(traceFile string) (Window, error) {
	f, err := os.Open(traceFile + WindowFileSuffix)
	if err != nil {
		return Window{}, fmt.Errorf("failed to open window file: %w", err)
	}
	defer f.Close()

	return ReadWindow(f)
}

// WriteWindow stores w in the format read by ReadWindow
func WriteWindow(out io.Writer, w Window) error {
	_, err := fmt.Fprintf(out, "%d %d\n", w.Begin, w.End)
	return err
}

// SaveWindow writes w next to traceFile
func SaveWindow(traceFile string, w Window) error {
	f, err := os.Create(traceFile + WindowFileSuffix)
	if err != nil {
		return fmt.Errorf("failed to create window file: %w", err)
	}
	if err := WriteWindow(f, w); err != nil {
		f.Close()
		return fmt.Errorf("failed to write window file: %w", err)
	}
	return f.Close()
}
