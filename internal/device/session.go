// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/sustainable-computing-io/ftrace-energy/internal/parser"
	"github.com/sustainable-computing-io/ftrace-energy/internal/service"
)

// TraceOutput is the trace file the ftrace script leaves in the remote dir
const TraceOutput = "trace_output"

const (
	ftraceScriptName = "ftrace.sh"
	getTimeName      = "gettime"
)

//go:embed ftrace.sh
var defaultFtraceScript []byte

var (
	ErrNotStarted = errors.New("recording was not started")
	ErrNotStopped = errors.New("recording was not stopped")
)

// Opts for a recording Session
type Opts struct {
	logger       *slog.Logger
	remoteDir    string
	ftraceScript string
	getTime      string
	timeout      time.Duration
	duration     time.Duration
	traceFile    string
	clock        clock.Clock
}

// DefaultOpts returns the default options
func DefaultOpts() Opts {
	return Opts{
		logger:    slog.Default(),
		remoteDir: "/data/local/tmp",
		getTime:   getTimeName,
		timeout:   30 * time.Second,
		traceFile: TraceOutput,
		clock:     clock.RealClock{},
	}
}

// OptionFn is a function sets one more more options in Opts struct
type OptionFn func(*Opts)

// WithLogger sets the logger for the Session
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger
	}
}

// WithRemoteDir sets the scratch directory on the device
func WithRemoteDir(dir string) OptionFn {
	return func(o *Opts) {
		o.remoteDir = dir
	}
}

// WithFtraceScript sets a local ftrace toggle script; empty uses the built-in one
func WithFtraceScript(script string) OptionFn {
	return func(o *Opts) {
		o.ftraceScript = script
	}
}

// WithGetTime sets the local clock helper binary pushed to the device
func WithGetTime(helper string) OptionFn {
	return func(o *Opts) {
		o.getTime = helper
	}
}

// WithTimeout bounds every single device command
func WithTimeout(d time.Duration) OptionFn {
	return func(o *Opts) {
		o.timeout = d
	}
}

// WithDuration stops the recording after d; zero records until interrupted
func WithDuration(d time.Duration) OptionFn {
	return func(o *Opts) {
		o.duration = d
	}
}

// WithTraceFile sets the local path the trace is pulled to
func WithTraceFile(file string) OptionFn {
	return func(o *Opts) {
		o.traceFile = file
	}
}

// WithClock sets the clock timing the recording duration
func WithClock(c clock.Clock) OptionFn {
	return func(o *Opts) {
		o.clock = c
	}
}

// Session records one trace on a device. As a service it turns tracing on in
// Init, reads the start clock in Run and stops, pulls and saves the window in
// Shutdown.
type Session struct {
	shell  Shell
	logger *slog.Logger

	remoteDir    string
	ftraceScript string
	getTime      string
	timeout      time.Duration
	duration     time.Duration
	traceFile    string
	clock        clock.Clock

	mu      sync.Mutex
	begin   int64
	started bool
	window  parser.Window
	stopErr error
	stopped bool
}

var (
	_ service.Initializer = (*Session)(nil)
	_ service.Runner      = (*Session)(nil)
	_ service.Shutdowner  = (*Session)(nil)
)

// NewSession returns a Session recording through sh
func NewSession(sh Shell, applyOpts ...OptionFn) *Session {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &Session{
		shell:        sh,
		logger:       opts.logger.With("service", "ftrace-session"),
		remoteDir:    opts.remoteDir,
		ftraceScript: opts.ftraceScript,
		getTime:      opts.getTime,
		timeout:      opts.timeout,
		duration:     opts.duration,
		traceFile:    opts.traceFile,
		clock:        opts.clock,
	}
}

func (s *Session) Name() string {
	return "ftrace-session"
}

func (s *Session) remote(name string) string {
	return path.Join(s.remoteDir, name)
}

// call runs fn with the per-command timeout
func (s *Session) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// Init pushes the ftrace script and the clock helper and turns tracing on
func (s *Session) Init() error {
	ctx := context.Background()

	script, cleanup, err := s.localScript()
	if err != nil {
		return err
	}
	defer cleanup()

	steps := []struct {
		what string
		fn   func(ctx context.Context) error
	}{
		{"push ftrace script", func(ctx context.Context) error {
			return s.shell.Push(ctx, script, s.remote(ftraceScriptName))
		}},
		{"push clock helper", func(ctx context.Context) error {
			return s.shell.Push(ctx, s.getTime, s.remote(getTimeName))
		}},
		{"make clock helper executable", func(ctx context.Context) error {
			_, err := s.shell.Run(ctx, "chmod", "755", s.remote(getTimeName))
			return err
		}},
		{"turn tracing on", func(ctx context.Context) error {
			return s.toggle(ctx, "on")
		}},
	}
	for _, step := range steps {
		if err := s.call(ctx, step.fn); err != nil {
			return fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}

	s.logger.Info("tracing enabled", "device-dir", s.remoteDir)
	return nil
}

// localScript returns the path of the script to push, writing the built-in one
// to a temporary file when none is configured
func (s *Session) localScript() (string, func(), error) {
	if s.ftraceScript != "" {
		return s.ftraceScript, func() {}, nil
	}

	f, err := os.CreateTemp("", "ftrace-*.sh")
	if err != nil {
		return "", nil, fmt.Errorf("failed to write ftrace script: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	_, err = f.Write(defaultFtraceScript)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write ftrace script: %w", err)
	}
	return f.Name(), cleanup, nil
}

func (s *Session) toggle(ctx context.Context, state string) error {
	_, err := s.shell.Run(ctx, "sh", s.remote(ftraceScriptName), state)
	return err
}

func (s *Session) deviceClock(ctx context.Context) (int64, error) {
	var us int64
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		us, err = ReadClock(ctx, s.shell, s.remote(getTimeName))
		return err
	})
	return us, err
}

// Start reads the device clock marking the beginning of the window
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.New("recording already stopped")
	}

	begin, err := s.deviceClock(ctx)
	if err != nil {
		return err
	}
	s.begin = begin
	s.started = true
	s.logger.Info("recording started", "begin", begin)
	return nil
}

// Run starts the recording and blocks until ctx is done or the configured
// duration elapses
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	if s.duration <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	timer := s.clock.NewTimer(s.duration)
	defer timer.Stop()

	select {
	case <-timer.C():
		s.logger.Info("recording duration elapsed", "duration", s.duration)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop reads the end clock, turns tracing off, writes the window sidecar and
// pulls the trace. Tracing is turned off even when the recording never started.
func (s *Session) Stop(ctx context.Context) (parser.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return s.window, s.stopErr
	}
	s.stopped = true
	s.window, s.stopErr = s.stop(ctx)
	return s.window, s.stopErr
}

func (s *Session) stop(ctx context.Context) (parser.Window, error) {
	var end int64
	var clockErr error
	if s.started {
		end, clockErr = s.deviceClock(ctx)
	}

	if err := s.call(ctx, func(ctx context.Context) error { return s.toggle(ctx, "off") }); err != nil {
		return parser.Window{}, errors.Join(clockErr, fmt.Errorf("failed to turn tracing off: %w", err))
	}
	if !s.started {
		return parser.Window{}, ErrNotStarted
	}
	if clockErr != nil {
		return parser.Window{}, clockErr
	}

	w := parser.Window{Begin: s.begin, End: end}
	if err := w.Validate(); err != nil {
		return parser.Window{}, err
	}
	if err := parser.SaveWindow(s.traceFile, w); err != nil {
		return parser.Window{}, err
	}

	err := s.call(ctx, func(ctx context.Context) error {
		return s.shell.Pull(ctx, s.remote(TraceOutput), s.traceFile)
	})
	if err != nil {
		return parser.Window{}, fmt.Errorf("failed to pull trace: %w", err)
	}

	s.logger.Info("recording stopped", "window", w, "trace", s.traceFile)
	return w, nil
}

// Shutdown stops the recording; the result is available from Window
func (s *Session) Shutdown() error {
	_, err := s.Stop(context.Background())
	return err
}

// Window returns the recorded window once the session is stopped
func (s *Session) Window() (parser.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		return parser.Window{}, ErrNotStopped
	}
	return s.window, s.stopErr
}

// TraceFile is the local path the trace is pulled to
func (s *Session) TraceFile() string {
	return s.traceFile
}
