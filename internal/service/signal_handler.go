// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// SignalHandler is a Runner that returns once one of its signals arrives,
// ending the run group
type SignalHandler struct {
	signals []os.Signal
	out     io.Writer
}

func NewSignalHandler(signals ...os.Signal) *SignalHandler {
	return &SignalHandler{
		signals: signals,
		out:     os.Stderr,
	}
}

func (sh *SignalHandler) Name() string {
	return "signal-handler"
}

func (sh *SignalHandler) Run(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, sh.signals...)
	defer signal.Stop(c)

	// stdout carries the report
	fmt.Fprintln(sh.out, "Press Ctrl+C to stop recording")

	select {
	case sig := <-c:
		fmt.Fprintf(sh.out, "received %s, stopping\n", sig)
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}
