// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/oklog/run"
)

// Run runs all services that implement the Runner interface until the first
// one returns, then shuts every runner down. The error of the first runner is
// returned, joined with any shutdown errors.
func Run(outer context.Context, logger *slog.Logger, services []Service) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	logger.Info("Running all services")
	ctx, cancel := context.WithCancel(outer)
	defer cancel()

	var g run.Group

	// interrupt funcs are called sequentially by run.Group
	var shutdownErrs []error

	for _, s := range services {
		runner, ok := s.(Runner)
		if !ok {
			logger.Debug("skipping service", "service", s.Name(),
				"reason", "service does not implement Runner")
			continue
		}

		svc := s
		g.Add(
			func() error {
				logger.Info("Running service", "service", svc.Name())
				return runner.Run(ctx)
			},
			func(err error) {
				cancel()
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("service terminated", "service", svc.Name(), "reason", err)
				}

				shutdowner, ok := svc.(Shutdowner)
				if !ok {
					logger.Debug("skipping service shutting down", "service", svc.Name(),
						"reason", "service does not implement Shutdowner interface")
					return
				}

				logger.Info("shutting down", "service", svc.Name())
				if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
					logger.Warn("service shutdown failed with error", "service", svc.Name(), "error", shutdownErr)
					shutdownErrs = append(shutdownErrs, shutdownErr)
				}
			},
		)
	}

	err := g.Run()
	if len(shutdownErrs) == 0 {
		return err
	}
	return errors.Join(append([]error{err}, shutdownErrs...)...)
}
