// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandFailed is returned when a device command exits unsuccessfully
var ErrCommandFailed = errors.New("device command failed")

// Shell runs commands on an attached device and moves files to and from it
type Shell interface {
	Name() string
	// Run runs args on the device and returns its stdout
	Run(ctx context.Context, args ...string) ([]byte, error)
	Push(ctx context.Context, local, remote string) error
	Pull(ctx context.Context, remote, local string) error
}

// ADB is a Shell backed by the adb binary
type ADB struct {
	logger *slog.Logger
	path   string
	serial string
}

var _ Shell = (*ADB)(nil)

// NewADB returns a Shell running the adb binary at path. An empty serial lets
// adb pick the only connected device.
func NewADB(path, serial string, logger *slog.Logger) *ADB {
	if logger == nil {
		logger = slog.Default()
	}
	return &ADB{
		logger: logger.With("shell", "adb"),
		path:   path,
		serial: serial,
	}
}

func (a *ADB) Name() string {
	return "adb"
}

func (a *ADB) Run(ctx context.Context, args ...string) ([]byte, error) {
	return a.exec(ctx, append([]string{"shell"}, args...)...)
}

func (a *ADB) Push(ctx context.Context, local, remote string) error {
	_, err := a.exec(ctx, "push", local, remote)
	return err
}

func (a *ADB) Pull(ctx context.Context, remote, local string) error {
	_, err := a.exec(ctx, "pull", remote, local)
	return err
}

func (a *ADB) exec(ctx context.Context, args ...string) ([]byte, error) {
	if a.serial != "" {
		args = append([]string{"-s", a.serial}, args...)
	}

	cmd := exec.CommandContext(ctx, a.path, args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	a.logger.Debug("running", "args", args)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w: %s", ErrCommandFailed,
			a.path, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
