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

// Package bridge invokes commands inside the guest execution context from
// the host. The bridge does not manage the guest's lifecycle; it assumes
// the bridging mechanism is installed and fails fast when it is not.
package bridge

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// Bridge executes guest commands through a host-side command such as
// wsl.exe. Output streams are merged and appended to a single sink.
type Bridge struct {
	// Command is the host executable that reaches the guest
	Command string

	// Timeout bounds a single guest invocation; zero means no bound
	Timeout time.Duration
}

// New creates a bridge over the given host command.
func New(command string, timeout time.Duration) *Bridge {
	return &Bridge{
		Command: command,
		Timeout: timeout,
	}
}

// Argv returns the full host argv that executes cmd in the guest.
// A WSL bridge addresses the named distribution and runs the command
// through a guest login shell so PATH and profile state match an
// interactive session; any other bridge is treated as a POSIX shell.
func (b *Bridge) Argv(cmd GuestCommand, ec ExecutionContext) []string {
	script := cmd.Serialize(ec)

	if isWSL(b.Command) {
		args := []string{b.Command}
		if ec.Distribution != "" {
			args = append(args, "-d", ec.Distribution)
		}
		return append(args, "--", "bash", "-lc", script)
	}

	return []string{b.Command, "-c", script}
}

func isWSL(command string) bool {
	base := filepath.Base(command)
	return base == "wsl" || base == "wsl.exe"
}

// Run executes cmd in the guest, writing interleaved stdout and stderr to
// sink. It returns the guest command's exit code. A missing bridge
// mechanism surfaces as GuestUnavailableError; exceeding the configured
// timeout surfaces as TimeoutError.
func (b *Bridge) Run(ctx context.Context, cmd GuestCommand, ec ExecutionContext, sink io.Writer) (int, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	argv := b.Argv(cmd, ec)
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdout = sink
	c.Stderr = sink

	err := c.Run()
	if err == nil {
		return 0, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return -1, &deployerrors.TimeoutError{
			Operation: "bridge",
			Duration:  b.Timeout,
			Cause:     err,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	// The command never ran: the bridging mechanism itself is unavailable.
	return -1, &deployerrors.GuestUnavailableError{
		Bridge: b.Command,
		Cause:  err,
	}
}
