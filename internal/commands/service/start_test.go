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

package service

import (
	"errors"
	"testing"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
)

func TestStartCommandDefinition(t *testing.T) {
	cmd := NewStartCommand()

	if cmd.Use != "start [port]" {
		t.Errorf("expected use 'start [port]', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected short description to be set")
	}
}

func TestStartRejectsInvalidPort(t *testing.T) {
	cases := []string{"notaport", "0", "-1", "70000"}

	for _, arg := range cases {
		t.Run(arg, func(t *testing.T) {
			cmd := NewStartCommand()
			cmd.SetArgs([]string{arg})
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			err := cmd.Execute()
			if err == nil {
				t.Fatalf("expected error for port %q", arg)
			}

			var exitErr *shared.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected ExitError, got %T", err)
			}
			if exitErr.Code != shared.ExitConfigError {
				t.Errorf("expected config error code, got %d", exitErr.Code)
			}
		})
	}
}

func TestStopCommandFlags(t *testing.T) {
	cmd := NewStopCommand()

	if cmd.Flags().Lookup("all") == nil {
		t.Error("all flag not registered")
	}
}
