// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"sync"
)

// callLog records lifecycle calls of several services in the order they happen
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// mockService implements Service and holds the behaviour of every lifecycle
// hook. The wrappers below choose which of the hooks a service exposes.
type mockService struct {
	name string
	log  *callLog

	initFn     func() error
	runFn      func(ctx context.Context) error
	shutdownFn func() error

	initCount     int
	runCount      int
	shutdownCount int
}

type mockOpt func(*mockService)

func withInit(fn func() error) mockOpt {
	return func(m *mockService) { m.initFn = fn }
}

func withRun(fn func(ctx context.Context) error) mockOpt {
	return func(m *mockService) { m.runFn = fn }
}

func withShutdown(fn func() error) mockOpt {
	return func(m *mockService) { m.shutdownFn = fn }
}

func withLog(l *callLog) mockOpt {
	return func(m *mockService) { m.log = l }
}

func newMock(name string, opts ...mockOpt) *mockService {
	m := &mockService{name: name}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// untilCanceled is a run hook that blocks until the group is torn down
func untilCanceled(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) Name() string {
	return m.name
}

func (m *mockService) initialize() error {
	m.initCount++
	m.log.add("init:" + m.name)
	if m.initFn == nil {
		return nil
	}
	return m.initFn()
}

func (m *mockService) runHook(ctx context.Context) error {
	m.runCount++
	m.log.add("run:" + m.name)
	if m.runFn == nil {
		return nil
	}
	return m.runFn(ctx)
}

func (m *mockService) shutdownHook() error {
	m.shutdownCount++
	m.log.add("shutdown:" + m.name)
	if m.shutdownFn == nil {
		return nil
	}
	return m.shutdownFn()
}

type mockInitializer struct{ *mockService }

func (m mockInitializer) Init() error { return m.initialize() }

type mockInitShutdownService struct{ *mockService }

func (m mockInitShutdownService) Init() error     { return m.initialize() }
func (m mockInitShutdownService) Shutdown() error { return m.shutdownHook() }

type mockRunner struct{ *mockService }

func (m mockRunner) Run(ctx context.Context) error { return m.runHook(ctx) }

type mockRunShutdownService struct{ *mockService }

func (m mockRunShutdownService) Run(ctx context.Context) error { return m.runHook(ctx) }
func (m mockRunShutdownService) Shutdown() error               { return m.shutdownHook() }

var (
	_ Initializer = mockInitializer{}
	_ Initializer = mockInitShutdownService{}
	_ Shutdowner  = mockInitShutdownService{}
	_ Runner      = mockRunner{}
	_ Runner      = mockRunShutdownService{}
	_ Shutdowner  = mockRunShutdownService{}
)
