/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type (
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	// Model selects the device power model
	Model struct {
		File string `yaml:"file"`
	}

	Trace struct {
		// RadioInterface is the network device whose packets drive the Wi-Fi radio model
		RadioInterface string `yaml:"radioInterface"`
	}

	Output struct {
		Format string `yaml:"format"`
		// File is the textfile written by the prometheus format; empty writes to stdout
		File string `yaml:"file"`
	}

	// Device configures the adb connection used to record traces
	Device struct {
		ADB       string `yaml:"adb"`
		Serial    string `yaml:"serial"`
		RemoteDir string `yaml:"remoteDir"`
		// FtraceScript is a local script toggling tracing; empty uses the built-in one
		FtraceScript string `yaml:"ftraceScript"`
		// GetTime is a local helper binary printing the device clock in microseconds
		GetTime string        `yaml:"gettime"`
		Timeout time.Duration `yaml:"timeout"`
	}

	Config struct {
		Log    Log    `yaml:"log"`
		Model  Model  `yaml:"model"`
		Trace  Trace  `yaml:"trace"`
		Output Output `yaml:"output"`
		Device Device `yaml:"device"`
	}
)

const (
	// Flags
	LogLevelFlag  = "log.level"
	LogFormatFlag = "log.format"

	ModelFileFlag = "model.file"

	TraceRadioInterfaceFlag = "trace.radio-interface"

	OutputFormatFlag = "output.format"
	OutputFileFlag   = "output.file"

	DeviceADBFlag          = "device.adb"
	DeviceSerialFlag       = "device.serial"
	DeviceRemoteDirFlag    = "device.remote-dir"
	DeviceFtraceScriptFlag = "device.ftrace-script"
	DeviceGetTimeFlag      = "device.gettime"
	DeviceTimeoutFlag      = "device.timeout"
)

// Output formats
const (
	OutputTable      = "table"
	OutputJSON       = "json"
	OutputCSV        = "csv"
	OutputPrometheus = "prometheus"
)

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Model: Model{
			File: "models.json",
		},
		Trace: Trace{
			RadioInterface: "wlan0",
		},
		Output: Output{
			Format: OutputTable,
		},
		Device: Device{
			ADB:       "adb",
			RemoteDir: "/data/local/tmp",
			GetTime:   "gettime",
			Timeout:   30 * time.Second,
		},
	}

	return cfg
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromFile loads configuration from a file
func FromFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

type ConfigUpdaterFn func(*Config) error

// RegisterFlags registers command-line flags with kingpin app
// and returns ConfigUpdaterFn that updates the config from parsed flags
// as command line arguments override config file settings
func RegisterFlags(app *kingpin.Application) ConfigUpdaterFn {
	// track flags that were explicitly set
	flagsSet := map[string]bool{}

	app.PreAction(func(ctx *kingpin.ParseContext) error {
		// Clear the map in case this function is called multiple times
		flagsSet = map[string]bool{}

		for _, element := range ctx.Elements {
			if flag, ok := element.Clause.(*kingpin.FlagClause); ok && element.Value != nil {
				flagsSet[flag.Model().Name] = true
			}
		}
		return nil
	})

	// Logging
	logLevel := app.Flag(LogLevelFlag, "Logging level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	logFormat := app.Flag(LogFormatFlag, "Logging format: text or json").Default("text").Enum("text", "json")

	// Model
	modelFile := app.Flag(ModelFileFlag, "Path to the device power model (JSON or YAML)").Default("models.json").String()

	// Trace
	radioInterface := app.Flag(TraceRadioInterfaceFlag, "Network device traced for the Wi-Fi radio").Default("wlan0").String()

	// Output
	outputFormat := app.Flag(OutputFormatFlag, "Report format: table, json, csv or prometheus").
		Default(OutputTable).Enum(OutputTable, OutputJSON, OutputCSV, OutputPrometheus)
	outputFile := app.Flag(OutputFileFlag, "Textfile written by the prometheus format instead of stdout").String()

	// Device
	adb := app.Flag(DeviceADBFlag, "Path to the adb binary").Default("adb").String()
	serial := app.Flag(DeviceSerialFlag, "Serial of the device to record; empty uses the only connected device").String()
	remoteDir := app.Flag(DeviceRemoteDirFlag, "Scratch directory on the device").Default("/data/local/tmp").String()
	ftraceScript := app.Flag(DeviceFtraceScriptFlag, "Local script toggling ftrace on the device; empty uses the built-in script").String()
	getTime := app.Flag(DeviceGetTimeFlag, "Local helper binary printing the device clock in microseconds").Default("gettime").String()
	timeout := app.Flag(DeviceTimeoutFlag, "Timeout of a single device command").Default("30s").Duration()

	return func(cfg *Config) error {
		// Logging settings
		if flagsSet[LogLevelFlag] {
			cfg.Log.Level = *logLevel
		}

		if flagsSet[LogFormatFlag] {
			cfg.Log.Format = *logFormat
		}

		if flagsSet[ModelFileFlag] {
			cfg.Model.File = *modelFile
		}

		if flagsSet[TraceRadioInterfaceFlag] {
			cfg.Trace.RadioInterface = *radioInterface
		}

		if flagsSet[OutputFormatFlag] {
			cfg.Output.Format = *outputFormat
		}

		if flagsSet[OutputFileFlag] {
			cfg.Output.File = *outputFile
		}

		if flagsSet[DeviceADBFlag] {
			cfg.Device.ADB = *adb
		}

		if flagsSet[DeviceSerialFlag] {
			cfg.Device.Serial = *serial
		}

		if flagsSet[DeviceRemoteDirFlag] {
			cfg.Device.RemoteDir = *remoteDir
		}

		if flagsSet[DeviceFtraceScriptFlag] {
			cfg.Device.FtraceScript = *ftraceScript
		}

		if flagsSet[DeviceGetTimeFlag] {
			cfg.Device.GetTime = *getTime
		}

		if flagsSet[DeviceTimeoutFlag] {
			cfg.Device.Timeout = *timeout
		}

		cfg.sanitize()
		return cfg.Validate()
	}
}

func (c *Config) sanitize() {
	c.Log.Level = strings.TrimSpace(c.Log.Level)
	c.Log.Format = strings.TrimSpace(c.Log.Format)
	c.Model.File = strings.TrimSpace(c.Model.File)
	c.Trace.RadioInterface = strings.TrimSpace(c.Trace.RadioInterface)
	c.Output.Format = strings.TrimSpace(c.Output.Format)
	c.Output.File = strings.TrimSpace(c.Output.File)
	c.Device.ADB = strings.TrimSpace(c.Device.ADB)
	c.Device.Serial = strings.TrimSpace(c.Device.Serial)
	c.Device.RemoteDir = strings.TrimSpace(c.Device.RemoteDir)
	c.Device.FtraceScript = strings.TrimSpace(c.Device.FtraceScript)
	c.Device.GetTime = strings.TrimSpace(c.Device.GetTime)
}

// Validate checks for configuration errors
func (c *Config) Validate() error {
	var errs []string
	{ // log level

		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}

		// Validate logging settings
		if _, valid := validLogLevels[c.Log.Level]; !valid {
			errs = append(errs, fmt.Sprintf("invalid log level: %s", c.Log.Level))
		}
	}
	{ // log format
		validFormats := map[string]bool{
			"text": true,
			"json": true,
		}
		if _, valid := validFormats[c.Log.Format]; !valid {
			errs = append(errs, fmt.Sprintf("invalid log format: %s", c.Log.Format))
		}
	}
	{ // model
		if c.Model.File == "" {
			errs = append(errs, "model file is required")
		}
	}
	{ // trace
		if c.Trace.RadioInterface == "" {
			errs = append(errs, "radio interface is required")
		}
	}
	{ // output
		validFormats := map[string]bool{
			OutputTable:      true,
			OutputJSON:       true,
			OutputCSV:        true,
			OutputPrometheus: true,
		}
		if _, valid := validFormats[c.Output.Format]; !valid {
			errs = append(errs, fmt.Sprintf("invalid output format: %s", c.Output.Format))
		}
		if c.Output.File != "" && c.Output.Format != OutputPrometheus {
			errs = append(errs, fmt.Sprintf("output file is only supported by the %s format", OutputPrometheus))
		}
	}
	{ // device
		if c.Device.ADB == "" {
			errs = append(errs, "adb path is required")
		}
		if c.Device.RemoteDir == "" {
			errs = append(errs, "device remote dir is required")
		}
		if c.Device.Timeout <= 0 {
			errs = append(errs, fmt.Sprintf("invalid device timeout: %s", c.Device.Timeout))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, ", "))
	}

	return nil
}

func (c *Config) String() string {
	bytes, err := yaml.Marshal(c)
	if err == nil {
		return string(bytes)
	}
	// NOTE:  this code path should not happen but if it does (i.e if yaml marshal) fails
	// for some reason, manually build the string
	return c.manualString()
}

func (c *Config) manualString() string {
	cfgs := []struct {
		Name  string
		Value string
	}{
		{LogLevelFlag, c.Log.Level},
		{LogFormatFlag, c.Log.Format},
		{ModelFileFlag, c.Model.File},
		{TraceRadioInterfaceFlag, c.Trace.RadioInterface},
		{OutputFormatFlag, c.Output.Format},
		{OutputFileFlag, c.Output.File},
		{DeviceADBFlag, c.Device.ADB},
		{DeviceSerialFlag, c.Device.Serial},
		{DeviceRemoteDirFlag, c.Device.RemoteDir},
		{DeviceFtraceScriptFlag, c.Device.FtraceScript},
		{DeviceGetTimeFlag, c.Device.GetTime},
		{DeviceTimeoutFlag, c.Device.Timeout.String()},
	}
	sb := strings.Builder{}

	for _, cfg := range cfgs {
		sb.WriteString(cfg.Name)
		sb.WriteString(": ")
		sb.WriteString(cfg.Value)
		sb.WriteString("\n")
	}

	return sb.String()
}
