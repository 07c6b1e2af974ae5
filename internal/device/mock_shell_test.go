// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockShell struct {
	mock.Mock
}

var _ Shell = (*mockShell)(nil)

func (m *mockShell) Name() string {
	return "mock"
}

func (m *mockShell) Run(ctx context.Context, args ...string) ([]byte, error) {
	ret := m.Called(args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

func (m *mockShell) Push(ctx context.Context, local, remote string) error {
	return m.Called(local, remote).Error(0)
}

func (m *mockShell) Pull(ctx context.Context, remote, local string) error {
	return m.Called(remote, local).Error(0)
}
