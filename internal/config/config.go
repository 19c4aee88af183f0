// Copyright 2025 YUNIKKAI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// DefaultConfigFile is the project-local configuration file name.
const DefaultConfigFile = "deployctl.yaml"

// Config is the top-level deployctl configuration.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Environment EnvironmentConfig `yaml:"environment"`
	Guest       GuestConfig       `yaml:"guest"`
	Server      ServerConfig      `yaml:"server"`
	Logs        LogsConfig        `yaml:"logs"`
	Timeouts    TimeoutsConfig    `yaml:"timeouts"`
}

// AppConfig identifies the application being deployed.
type AppConfig struct {
	// Entrypoint is the entry artifact that must exist before a start
	Entrypoint string `yaml:"entrypoint"`

	// ProcessName is the executable identity used to locate a running instance
	ProcessName string `yaml:"process_name"`

	// StaticDir is created if absent, otherwise untouched
	StaticDir string `yaml:"static_dir"`
}

// EnvironmentConfig describes the isolated runtime environment.
type EnvironmentConfig struct {
	// Root is the filesystem root of the environment (destroyed and
	// recreated wholesale on deploy)
	Root string `yaml:"root"`

	// Requirements is the declarative dependency manifest; absence is a
	// warning, not an error
	Requirements string `yaml:"requirements"`
}

// GuestConfig describes the secondary execution context and how to reach it.
type GuestConfig struct {
	// Bridge is the host-side command that executes guest commands
	Bridge string `yaml:"bridge"`

	// Distribution names the guest identity passed to the bridge (optional)
	Distribution string `yaml:"distribution,omitempty"`

	// Workdir is the working directory inside the guest; empty means the
	// bridge's default
	Workdir string `yaml:"workdir,omitempty"`
}

// ServerConfig holds service launch settings.
type ServerConfig struct {
	// Port is the default bind port; an explicit start argument overrides it
	Port int `yaml:"port"`

	// Mode is exported to the service as APP_ENV before launch
	Mode string `yaml:"mode"`

	// GunicornConfig is the WSGI server configuration file
	GunicornConfig string `yaml:"gunicorn_config"`

	// AppFactory is the WSGI application target passed to the server
	AppFactory string `yaml:"app_factory"`
}

// LogsConfig holds log path and retention settings.
type LogsConfig struct {
	// Dir is the directory holding daily service logs
	Dir string `yaml:"dir"`

	// RetentionDays is the maximum age a log file may reach before the
	// retention sweep deletes it
	RetentionDays int `yaml:"retention_days"`

	// LifecycleLog records orchestrator audit events as JSON lines
	LifecycleLog string `yaml:"lifecycle_log"`
}

// TimeoutsConfig bounds the blocking external operations.
type TimeoutsConfig struct {
	// Provision bounds environment creation and dependency installation
	Provision time.Duration `yaml:"provision"`

	// Bridge bounds a single guest command invocation
	Bridge time.Duration `yaml:"bridge"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Entrypoint:  "app.py",
			ProcessName: "gunicorn",
			StaticDir:   "static",
		},
		Environment: EnvironmentConfig{
			Root:         "venv",
			Requirements: "requirements.txt",
		},
		Guest: GuestConfig{
			Bridge: defaultBridge(),
		},
		Server: ServerConfig{
			Port:           8000,
			Mode:           "production",
			GunicornConfig: "gunicorn.conf.py",
			AppFactory:     "app:create_app()",
		},
		Logs: LogsConfig{
			Dir:           "logs",
			RetentionDays: 7,
			LifecycleLog:  "logs/lifecycle.log",
		},
		Timeouts: TimeoutsConfig{
			Provision: 5 * time.Minute,
			Bridge:    5 * time.Minute,
		},
	}
}

// Load reads configuration from the given path, falling back to
// DefaultConfigFile in the working directory. A missing file is not an
// error: the defaults describe the conventional project layout.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, &deployerrors.ConfigError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to load from %s", configPath),
			Cause:  err,
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &deployerrors.ConfigError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to parse %s", configPath),
			Cause:  err,
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Default()

	if c.App.Entrypoint == "" {
		c.App.Entrypoint = def.App.Entrypoint
	}
	if c.App.ProcessName == "" {
		c.App.ProcessName = def.App.ProcessName
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = def.App.StaticDir
	}
	if c.Environment.Root == "" {
		c.Environment.Root = def.Environment.Root
	}
	if c.Environment.Requirements == "" {
		c.Environment.Requirements = def.Environment.Requirements
	}
	if c.Guest.Bridge == "" {
		c.Guest.Bridge = def.Guest.Bridge
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Server.GunicornConfig == "" {
		c.Server.GunicornConfig = def.Server.GunicornConfig
	}
	if c.Server.AppFactory == "" {
		c.Server.AppFactory = def.Server.AppFactory
	}
	if c.Logs.Dir == "" {
		c.Logs.Dir = def.Logs.Dir
	}
	if c.Logs.RetentionDays == 0 {
		c.Logs.RetentionDays = def.Logs.RetentionDays
	}
	if c.Logs.LifecycleLog == "" {
		c.Logs.LifecycleLog = def.Logs.LifecycleLog
	}
	if c.Timeouts.Provision == 0 {
		c.Timeouts.Provision = def.Timeouts.Provision
	}
	if c.Timeouts.Bridge == 0 {
		c.Timeouts.Bridge = def.Timeouts.Bridge
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &deployerrors.ConfigError{
			Key:    "server.port",
			Reason: fmt.Sprintf("port must be in 1-65535, got %d", c.Server.Port),
		}
	}
	if c.Logs.RetentionDays < 0 {
		return &deployerrors.ConfigError{
			Key:    "logs.retention_days",
			Reason: fmt.Sprintf("retention must not be negative, got %d", c.Logs.RetentionDays),
		}
	}
	return nil
}
