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

// Package orchestrator sequences the deployment lifecycle flows: deploy
// (destructive environment refresh), start (provision-if-missing then
// fire-and-forget launch), stop (locate then signal), and status.
//
// No state persists across invocations; every flow reconstructs what it
// needs from filesystem and process observation.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/bridge"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/config"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/lifecycle"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/provision"
)

// EnvironmentManager provisions the isolated runtime environment.
// *provision.Provisioner satisfies it.
type EnvironmentManager interface {
	Provision(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) error
	Ensure(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) (bool, error)
	InstallDependencies(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) error
}

// ProcessManager discovers and terminates service processes.
type ProcessManager interface {
	FindRunning(executableName string) (*lifecycle.ServiceProcess, error)
	FindAll(executableName string) ([]*lifecycle.ServiceProcess, error)
	Terminate(pid int32) error
}

// Spawner launches the detached service process.
type Spawner interface {
	SpawnDetached(binary string, args []string, logPath string) (int, error)
}

// GuestRunner executes synchronous commands in the guest context.
type GuestRunner interface {
	Run(ctx context.Context, cmd bridge.GuestCommand, ec bridge.ExecutionContext, sink io.Writer) (int, error)
}

// ServiceInstance describes a launched service. The PID is best-effort:
// the launch is fire-and-forget and the orchestrator does not wait to
// confirm the service came up.
type ServiceInstance struct {
	PID       int
	Port      int
	LogPath   string
	StartedAt time.Time
}

// Orchestrator wires the lifecycle flows together.
type Orchestrator struct {
	cfg     *config.Config
	bridge  *bridge.Bridge
	envs    EnvironmentManager
	procs   ProcessManager
	spawner Spawner
	events  *lifecycle.EventLogger
	logger  *slog.Logger
	out     io.Writer

	// now is the clock; overridden in tests
	now func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithEnvironmentManager substitutes the environment manager.
func WithEnvironmentManager(m EnvironmentManager) Option {
	return func(o *Orchestrator) { o.envs = m }
}

// WithProcessManager substitutes the process manager.
func WithProcessManager(m ProcessManager) Option {
	return func(o *Orchestrator) { o.procs = m }
}

// WithSpawner substitutes the process spawner.
func WithSpawner(s Spawner) Option {
	return func(o *Orchestrator) { o.spawner = s }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithOutput redirects operator-facing console output.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// New builds an orchestrator from configuration with the real
// collaborators: the guest bridge, the provisioner, OS process discovery,
// and detached spawning.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	b := bridge.New(cfg.Guest.Bridge, cfg.Timeouts.Bridge)

	o := &Orchestrator{
		cfg:     cfg,
		bridge:  b,
		procs:   systemProcesses{},
		events:  lifecycle.NewEventLogger(cfg.Logs.LifecycleLog),
		logger:  logger,
		out:     os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	// Defaults that depend on options (the provisioner streams to the
	// configured console sink).
	if o.envs == nil {
		o.envs = provision.New(b, logger, o.out)
	}
	if o.spawner == nil {
		o.spawner = lifecycle.NewSpawner()
	}
	return o
}

// environment returns the configured runtime environment.
func (o *Orchestrator) environment() provision.Environment {
	return provision.Environment{
		Root:     o.cfg.Environment.Root,
		Manifest: o.cfg.Environment.Requirements,
	}
}

// execContext returns the guest execution context for this invocation.
func (o *Orchestrator) execContext(env map[string]string) bridge.ExecutionContext {
	return bridge.ExecutionContext{
		Workdir:      o.cfg.Guest.Workdir,
		Env:          env,
		Distribution: o.cfg.Guest.Distribution,
	}
}

// step prints the operator-facing status line for a beginning step.
func (o *Orchestrator) step(format string, args ...any) {
	fmt.Fprintln(o.out, console.RenderStep(fmt.Sprintf(format, args...)))
}

// stepOK prints the operator-facing status line for a completed step.
func (o *Orchestrator) stepOK(format string, args ...any) {
	fmt.Fprintln(o.out, console.RenderOK(fmt.Sprintf(format, args...)))
}

// stepWarn prints a non-fatal problem; the flow continues degraded.
func (o *Orchestrator) stepWarn(format string, args ...any) {
	fmt.Fprintln(o.out, console.RenderWarn(fmt.Sprintf(format, args...)))
}

// systemProcesses is the ProcessManager backed by OS process enumeration.
type systemProcesses struct{}

func (systemProcesses) FindRunning(name string) (*lifecycle.ServiceProcess, error) {
	return lifecycle.FindRunning(name)
}

func (systemProcesses) FindAll(name string) ([]*lifecycle.ServiceProcess, error) {
	return lifecycle.FindAll(name)
}

func (systemProcesses) Terminate(pid int32) error {
	return lifecycle.Terminate(pid)
}
