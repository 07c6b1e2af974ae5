// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sustainable-computing-io/ftrace-energy/internal/config"
	"github.com/sustainable-computing-io/ftrace-energy/internal/device"
	"github.com/sustainable-computing-io/ftrace-energy/internal/service"
)

type recordCommand struct {
	cmd *kingpin.CmdClause

	duration  *time.Duration
	traceFile *string
}

func registerRecord(app *kingpin.Application) *recordCommand {
	r := &recordCommand{}
	r.cmd = app.Command("record", "Record a trace on a device over adb, then report its energy.")
	r.duration = r.cmd.Flag("duration", "Recording length; 0 records until interrupted").Default("0s").Duration()
	r.traceFile = r.cmd.Flag("trace.output", "Local path the recorded trace is pulled to").Default(device.TraceOutput).String()
	return r
}

func (r *recordCommand) run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	session := device.NewSession(
		device.NewADB(cfg.Device.ADB, cfg.Device.Serial, logger),
		device.WithLogger(logger),
		device.WithRemoteDir(cfg.Device.RemoteDir),
		device.WithFtraceScript(cfg.Device.FtraceScript),
		device.WithGetTime(cfg.Device.GetTime),
		device.WithTimeout(cfg.Device.Timeout),
		device.WithDuration(*r.duration),
		device.WithTraceFile(*r.traceFile),
	)
	services := createServices(logger, session)

	if err := service.Init(logger, services); err != nil {
		return err
	}
	if err := service.Run(ctx, logger, services); err != nil {
		return err
	}

	w, err := session.Window()
	if err != nil {
		return err
	}
	return analyzeTrace(logger, cfg, session.TraceFile(), w)
}

func createServices(logger *slog.Logger, session *device.Session) []service.Service {
	logger.Debug("Creating all services")
	return []service.Service{
		session,
		service.NewSignalHandler(os.Interrupt, syscall.SIGTERM),
	}
}
