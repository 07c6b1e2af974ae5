// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	t.Run("all services initialize successfully", func(t *testing.T) {
		log := &callLog{}
		svc1 := mockInitializer{newMock("svc1", withLog(log))}
		svc2 := mockInitializer{newMock("svc2", withLog(log))}
		svc3 := newMock("non-initializer", withLog(log))

		err := Init(nil, []Service{svc1, svc2, svc3})

		assert.NoError(t, err)
		assert.Equal(t, []string{"init:svc1", "init:svc2"}, log.list())
		assert.Zero(t, svc3.initCount)
	})

	t.Run("initialization fails and shutdown is called", func(t *testing.T) {
		initErr := errors.New("init error")
		svc1 := mockInitShutdownService{newMock("svc1")}
		svc2 := mockInitShutdownService{newMock("svc2", withInit(func() error { return initErr }))}
		svc3 := mockInitShutdownService{newMock("svc3")}

		err := Init(nil, []Service{svc1, svc2, svc3})

		assert.ErrorIs(t, err, initErr)

		// svc1 was initialized so it is unwound
		assert.Equal(t, 1, svc1.initCount)
		assert.Equal(t, 1, svc1.shutdownCount)

		// svc2 failed and owns its own cleanup
		assert.Equal(t, 1, svc2.initCount)
		assert.Zero(t, svc2.shutdownCount)

		assert.Zero(t, svc3.initCount)
		assert.Zero(t, svc3.shutdownCount)
	})

	t.Run("shutdown error does not replace the init error", func(t *testing.T) {
		initErr := errors.New("init error")
		shutdownErr := errors.New("shutdown error")

		svc1 := mockInitShutdownService{newMock("svc1", withShutdown(func() error { return shutdownErr }))}
		svc2 := mockInitShutdownService{newMock("svc2", withInit(func() error { return initErr }))}

		err := Init(nil, []Service{svc1, svc2})

		assert.ErrorIs(t, err, initErr)
		assert.NotErrorIs(t, err, shutdownErr)
		assert.Equal(t, 1, svc1.shutdownCount)
	})

	t.Run("initialized services are unwound in reverse order", func(t *testing.T) {
		log := &callLog{}
		adb := mockInitShutdownService{newMock("adb", withLog(log))}
		helper := mockInitializer{newMock("helper", withLog(log))}
		session := mockInitShutdownService{newMock("session", withLog(log))}
		broken := mockInitShutdownService{newMock("broken", withLog(log),
			withInit(func() error { return errors.New("device offline") }))}

		err := Init(nil, []Service{adb, helper, session, broken})

		assert.ErrorContains(t, err, "failed to initialize service broken")
		assert.ErrorContains(t, err, "device offline")
		// helper has no Shutdown and is skipped while unwinding
		assert.Equal(t, []string{
			"init:adb", "init:helper", "init:session", "init:broken",
			"shutdown:session", "shutdown:adb",
		}, log.list())
	})

	t.Run("first service failing unwinds nothing", func(t *testing.T) {
		log := &callLog{}
		svc1 := mockInitShutdownService{newMock("svc1", withLog(log),
			withInit(func() error { return errors.New("no device") }))}
		svc2 := mockInitShutdownService{newMock("svc2", withLog(log))}

		err := Init(nil, []Service{svc1, svc2})

		assert.Error(t, err)
		assert.Equal(t, []string{"init:svc1"}, log.list())
	})

	t.Run("empty service list completes successfully", func(t *testing.T) {
		assert.NoError(t, Init(nil, []Service{}))
	})
}
