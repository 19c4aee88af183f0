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

// Package provision creates and destroys the isolated runtime environment
// and installs declared dependencies into it.
//
// Two entry points with intentionally different semantics: Provision is a
// destructive refresh (the deploy path — stale packages never survive),
// Ensure is a lazy create-if-missing (the start path).
package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/bridge"
	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// installRetries is the number of additional attempts for the
// network-bound dependency install.
const installRetries = 2

// Runner executes a command in the guest execution context. *bridge.Bridge
// satisfies it; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd bridge.GuestCommand, ec bridge.ExecutionContext, sink io.Writer) (int, error)
}

// Environment is a named, filesystem-rooted isolated dependency set.
type Environment struct {
	// Root is the environment's filesystem root
	Root string

	// Manifest is the declarative dependency file; may be absent
	Manifest string
}

// Exists reports whether a provisioned environment occupies the root.
// pyvenv.cfg is the canonical virtualenv marker.
func (e Environment) Exists() bool {
	_, err := os.Stat(filepath.Join(e.Root, "pyvenv.cfg"))
	return err == nil
}

// ActivationStep returns the guest command that activates the environment.
// The POSIX dot builtin, not bash's source: non-WSL bridges run the script
// under plain sh, which on Debian-family hosts is dash.
func (e Environment) ActivationStep() bridge.Step {
	return bridge.Step{".", filepath.ToSlash(filepath.Join(e.Root, "bin", "activate"))}
}

// Provisioner creates, destroys, and populates runtime environments.
type Provisioner struct {
	runner Runner
	logger *slog.Logger
	sink   io.Writer
}

// New creates a provisioner that executes through runner and streams
// command output to sink.
func New(runner Runner, logger *slog.Logger, sink io.Writer) *Provisioner {
	if sink == nil {
		sink = io.Discard
	}
	return &Provisioner{
		runner: runner,
		logger: logger,
		sink:   sink,
	}
}

// Provision destroys any environment at env.Root and recreates it from
// scratch: venv creation, package-manager self-upgrade, then dependency
// install. Recreation is destroy-then-create, never in-place patch.
// A missing manifest returns ErrManifestMissing, which callers treat as a
// warning, not a failure.
func (p *Provisioner) Provision(ctx context.Context, env Environment, ec bridge.ExecutionContext) error {
	if _, err := os.Stat(env.Root); err == nil {
		p.logger.Info("removing existing environment", "root", env.Root)
		if err := os.RemoveAll(env.Root); err != nil {
			return &deployerrors.ProvisionError{Step: "remove", Cause: err}
		}
	}

	if err := p.runStep(ctx, "create", bridge.GuestCommand{
		Payload: bridge.Step{"python3", "-m", "venv", filepath.ToSlash(env.Root)},
	}, ec); err != nil {
		return err
	}

	if err := p.runStep(ctx, "upgrade-pip", bridge.GuestCommand{
		Activation: []bridge.Step{env.ActivationStep()},
		Payload:    bridge.Step{"pip", "install", "--upgrade", "pip"},
	}, ec); err != nil {
		return err
	}

	return p.InstallDependencies(ctx, env, ec)
}

// Ensure creates the environment only if it is missing. It reports
// whether a new environment was created. Unlike Provision it never
// destroys an existing root.
func (p *Provisioner) Ensure(ctx context.Context, env Environment, ec bridge.ExecutionContext) (bool, error) {
	if env.Exists() {
		return false, nil
	}

	p.logger.Info("environment missing, creating", "root", env.Root)
	if err := p.runStep(ctx, "create", bridge.GuestCommand{
		Payload: bridge.Step{"python3", "-m", "venv", filepath.ToSlash(env.Root)},
	}, ec); err != nil {
		return false, err
	}

	return true, nil
}

// InstallDependencies installs the declared dependencies into the
// environment. The install is retried a bounded number of times because it
// is network-bound. A missing manifest short-circuits with
// ErrManifestMissing.
func (p *Provisioner) InstallDependencies(ctx context.Context, env Environment, ec bridge.ExecutionContext) error {
	if _, err := os.Stat(env.Manifest); err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn("dependency manifest missing, skipping install", "manifest", env.Manifest)
			return deployerrors.Wrap(deployerrors.ErrManifestMissing, env.Manifest)
		}
		return &deployerrors.ProvisionError{Step: "install", Cause: err}
	}

	install := func() error {
		return p.runStep(ctx, "install", bridge.GuestCommand{
			Activation: []bridge.Step{env.ActivationStep()},
			Payload:    bridge.Step{"pip", "install", "-r", filepath.ToSlash(env.Manifest)},
		}, ec)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), installRetries)
	return backoff.Retry(func() error {
		if err := install(); err != nil {
			p.logger.Warn("dependency install attempt failed", "error", err)
			return err
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

// runStep executes one provisioning command, converting any failure into
// a ProvisionError naming the step.
func (p *Provisioner) runStep(ctx context.Context, step string, cmd bridge.GuestCommand, ec bridge.ExecutionContext) error {
	code, err := p.runner.Run(ctx, cmd, ec, p.sink)
	if err != nil {
		return &deployerrors.ProvisionError{Step: step, Cause: err}
	}
	if code != 0 {
		return &deployerrors.ProvisionError{
			Step:     step,
			ExitCode: code,
			Cause:    fmt.Errorf("command exited with status %d", code),
		}
	}
	return nil
}
