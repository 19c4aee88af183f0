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

package shared

import (
	"io"
	"log/slog"
	"os"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/config"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/log"
)

// LoadConfig loads deployment configuration, honoring the global --config
// flag. A missing default config file is fine; an explicitly named one
// that cannot be read is a config error.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("loading configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger from environment defaults plus the
// global verbosity flags. --verbose wins over --quiet.
func NewLogger() *slog.Logger {
	cfg := log.FromEnv()
	cfg.Output = os.Stderr

	switch {
	case GetVerbose():
		cfg.Level = "debug"
	case GetQuiet():
		cfg.Level = "error"
	}

	return log.New(cfg)
}

// ConsoleOutput returns the writer for operator-facing step output.
// Quiet mode suppresses it entirely.
func ConsoleOutput() io.Writer {
	if GetQuiet() {
		return io.Discard
	}
	return os.Stdout
}
