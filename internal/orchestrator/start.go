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

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/bridge"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/logretain"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/provision"
	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// Start brings the service up. Steps run in strict order; precondition
// and launch failures abort, while provisioning problems in the middle
// leave the flow running in degraded mode (the service can still come up
// against a previously installed environment).
//
// port overrides the configured default when nonzero.
func (o *Orchestrator) Start(ctx context.Context, port int) (*ServiceInstance, error) {
	if port == 0 {
		port = o.cfg.Server.Port
	}

	if err := o.events.LogStart(port); err != nil {
		o.logger.Warn("failed to write lifecycle event", "error", err)
	}

	inst, err := o.start(ctx, port)
	if err != nil {
		if logErr := o.events.LogStartFailure(err); logErr != nil {
			o.logger.Warn("failed to write lifecycle event", "error", logErr)
		}
		return nil, err
	}

	if err := o.events.LogLaunch(inst.PID, inst.Port); err != nil {
		o.logger.Warn("failed to write lifecycle event", "error", err)
	}
	return inst, nil
}

func (o *Orchestrator) start(ctx context.Context, port int) (*ServiceInstance, error) {
	// 1. Entry artifact must exist; nothing can be launched without it.
	o.step("checking entry artifact %s", o.cfg.App.Entrypoint)
	if _, err := os.Stat(o.cfg.App.Entrypoint); err != nil {
		return nil, &deployerrors.MissingArtifactError{Path: o.cfg.App.Entrypoint}
	}
	o.stepOK("entry artifact present")

	// 2. Working directories; idempotent, non-fatal.
	for _, dir := range []string{o.cfg.Logs.Dir, o.cfg.App.StaticDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			o.stepWarn("could not create %s: %v", dir, err)
		}
	}

	// 3-4. Today's log path, then the retention sweep.
	now := o.now()
	logPath, err := logretain.PreparedLogPath(o.cfg.Logs.Dir, now)
	if err != nil {
		return nil, deployerrors.Wrap(err, "preparing log path")
	}
	o.step("pruning logs older than %d days", o.cfg.Logs.RetentionDays)
	res, err := logretain.Prune(o.cfg.Logs.Dir, logretain.DefaultPattern, o.cfg.Logs.RetentionDays, now)
	if err != nil {
		o.stepWarn("log retention sweep failed: %v", err)
	} else {
		o.stepOK("log retention: %d removed, %d kept", res.Deleted, res.Examined-res.Deleted)
		if res.Failed > 0 {
			o.stepWarn("log retention: %d files could not be removed", res.Failed)
		}
	}

	// 5. Reverse proxy in the guest; the service runs degraded without it.
	o.step("ensuring nginx is running")
	o.ensureReverseProxy(ctx)

	// 6. Runtime environment: lazy ensure, never destructive here. The
	// deploy flow owns the destructive refresh.
	env := o.environment()
	o.step("ensuring runtime environment at %s", env.Root)
	created, err := o.envs.Ensure(ctx, env, o.execContext(nil))
	switch {
	case err != nil:
		o.stepWarn("could not ensure runtime environment: %v", err)
	case created:
		o.stepOK("runtime environment created")
	default:
		o.stepOK("runtime environment present")
	}

	// 7. Dependencies; a failed install leaves the previous set in place.
	o.step("installing dependencies from %s", env.Manifest)
	if err := o.envs.InstallDependencies(ctx, env, o.execContext(nil)); err != nil {
		if errors.Is(err, deployerrors.ErrManifestMissing) {
			o.stepWarn("no %s found, dependency install skipped", env.Manifest)
		} else {
			o.stepWarn("dependency install failed: %v", err)
		}
	} else {
		o.stepOK("dependencies installed")
	}

	// 8. Detached launch with merged output appended to today's log.
	o.step("launching %s on port %d", o.cfg.App.ProcessName, port)
	inst, err := o.launch(env, port, logPath)
	if err != nil {
		return nil, err
	}
	o.stepOK("service launched (pid %d, port %d, log %s)", inst.PID, inst.Port, inst.LogPath)
	return inst, nil
}

// ensureReverseProxy starts nginx inside the guest if it is not already
// running. Best effort: failure is reported, never fatal.
func (o *Orchestrator) ensureReverseProxy(ctx context.Context) {
	ec := o.execContext(nil)

	code, err := o.bridge.Run(ctx, bridge.GuestCommand{
		Payload: bridge.Step{"pgrep", "nginx"},
	}, ec, o.out)
	if err != nil {
		o.stepWarn("could not query nginx: %v", err)
		return
	}
	if code == 0 {
		o.stepOK("nginx already running")
		return
	}

	code, err = o.bridge.Run(ctx, bridge.GuestCommand{
		Payload: bridge.Step{"sudo", "service", "nginx", "start"},
	}, ec, o.out)
	if err != nil || code != 0 {
		o.stepWarn("nginx could not be started, continuing without reverse proxy")
		return
	}
	o.stepOK("nginx started")
}

// launch issues the fire-and-forget gunicorn start through the bridge.
func (o *Orchestrator) launch(env provision.Environment, port int, logPath string) (*ServiceInstance, error) {
	ec := o.execContext(map[string]string{
		"APP_ENV": o.cfg.Server.Mode,
		"PORT":    strconv.Itoa(port),
	})

	cmd := bridge.GuestCommand{
		Activation: []bridge.Step{env.ActivationStep()},
		Payload: bridge.Step{
			o.cfg.App.ProcessName,
			"--config", o.cfg.Server.GunicornConfig,
			"--bind", fmt.Sprintf("0.0.0.0:%d", port),
			o.cfg.Server.AppFactory,
		},
	}

	argv := o.bridge.Argv(cmd, ec)
	pid, err := o.spawner.SpawnDetached(argv[0], argv[1:], logPath)
	if err != nil {
		return nil, &deployerrors.LaunchError{Command: o.cfg.App.ProcessName, Cause: err}
	}

	return &ServiceInstance{
		PID:       pid,
		Port:      port,
		LogPath:   logPath,
		StartedAt: o.now(),
	}, nil
}
