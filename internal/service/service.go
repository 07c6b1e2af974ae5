// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package service

import "context"

// Service is the interface that all services must implement
type Service interface {
	// Name returns the name of the service
	Name() string
}

// Initializer is implemented by services that prepare state (e.g. push helpers
// to a device) before anything runs
type Initializer interface {
	Service
	Init() error
}

// Runner is implemented by services that block for the lifetime of a command
type Runner interface {
	Service
	// Run is expected to block until ctx is done or the service's own work completes
	Run(ctx context.Context) error
}

// Shutdowner is implemented by services that hold resources or deliver their
// result when stopped
type Shutdowner interface {
	Service
	// Shutdown stops the service; an error is reported by Run
	Shutdown() error
}
