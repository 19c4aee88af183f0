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
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/bridge"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/config"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/lifecycle"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/provision"
	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

type fakeEnvs struct {
	provisioned  bool
	ensured      bool
	installed    bool
	provisionErr error
	ensureErr    error
	installErr   error
	created      bool
}

func (f *fakeEnvs) Provision(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) error {
	f.provisioned = true
	return f.provisionErr
}

func (f *fakeEnvs) Ensure(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) (bool, error) {
	f.ensured = true
	return f.created, f.ensureErr
}

func (f *fakeEnvs) InstallDependencies(ctx context.Context, env provision.Environment, ec bridge.ExecutionContext) error {
	f.installed = true
	return f.installErr
}

type fakeProcs struct {
	procs        []*lifecycle.ServiceProcess
	terminated   []int32
	terminateErr error
}

func (f *fakeProcs) FindRunning(name string) (*lifecycle.ServiceProcess, error) {
	all, err := f.FindAll(name)
	if err != nil {
		return nil, err
	}
	return all[0], nil
}

func (f *fakeProcs) FindAll(name string) ([]*lifecycle.ServiceProcess, error) {
	if len(f.procs) == 0 {
		return nil, deployerrors.ErrProcessNotFound
	}
	return f.procs, nil
}

func (f *fakeProcs) Terminate(pid int32) error {
	if f.terminateErr != nil {
		return f.terminateErr
	}
	f.terminated = append(f.terminated, pid)
	return nil
}

type fakeSpawner struct {
	binary  string
	args    []string
	logPath string
	pid     int
	err     error
}

func (f *fakeSpawner) SpawnDetached(binary string, args []string, logPath string) (int, error) {
	f.binary = binary
	f.args = args
	f.logPath = logPath
	if f.err != nil {
		return 0, f.err
	}
	return f.pid, nil
}

// testConfig returns a config rooted in a fresh temp directory. The
// bridge binary does not exist, so guest commands fail fast and flows
// exercise their degraded paths deterministically.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.App.Entrypoint = filepath.Join(dir, "app.py")
	cfg.App.StaticDir = filepath.Join(dir, "static")
	cfg.Environment.Root = filepath.Join(dir, "venv")
	cfg.Environment.Requirements = filepath.Join(dir, "requirements.txt")
	cfg.Guest.Bridge = filepath.Join(dir, "no-such-bridge")
	cfg.Guest.Workdir = dir
	cfg.Logs.Dir = filepath.Join(dir, "logs")
	cfg.Logs.LifecycleLog = filepath.Join(dir, "logs", "lifecycle.log")
	return cfg
}

func testOrchestrator(t *testing.T, cfg *config.Config, envs *fakeEnvs, procs *fakeProcs, spawner *fakeSpawner) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := New(cfg, logger,
		WithEnvironmentManager(envs),
		WithProcessManager(procs),
		WithSpawner(spawner),
		WithOutput(out),
	)
	return o, out
}

func writeEntrypoint(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.App.Entrypoint, []byte("app = create_app()\n"), 0o644))
}

func markEnvironment(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.Environment.Root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Environment.Root, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644))
}

func TestDeploy(t *testing.T) {
	t.Run("provisions the environment", func(t *testing.T) {
		cfg := testConfig(t)
		envs := &fakeEnvs{}
		o, out := testOrchestrator(t, cfg, envs, &fakeProcs{}, &fakeSpawner{})

		err := o.Deploy(context.Background())

		require.NoError(t, err)
		assert.True(t, envs.provisioned)
		assert.Contains(t, out.String(), "refreshed")
	})

	t.Run("missing manifest is not fatal", func(t *testing.T) {
		cfg := testConfig(t)
		envs := &fakeEnvs{provisionErr: deployerrors.Wrap(deployerrors.ErrManifestMissing, "install")}
		o, out := testOrchestrator(t, cfg, envs, &fakeProcs{}, &fakeSpawner{})

		err := o.Deploy(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "dependency install skipped")
	})

	t.Run("provision failure aborts", func(t *testing.T) {
		cfg := testConfig(t)
		envs := &fakeEnvs{provisionErr: errors.New("venv create failed")}
		o, _ := testOrchestrator(t, cfg, envs, &fakeProcs{}, &fakeSpawner{})

		err := o.Deploy(context.Background())

		assert.Error(t, err)
	})
}

func TestStart(t *testing.T) {
	t.Run("launches detached with the requested port", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		envs := &fakeEnvs{}
		spawner := &fakeSpawner{pid: 4242}
		o, out := testOrchestrator(t, cfg, envs, &fakeProcs{}, spawner)

		inst, err := o.Start(context.Background(), 9090)

		require.NoError(t, err)
		assert.Equal(t, 4242, inst.PID)
		assert.Equal(t, 9090, inst.Port)
		assert.True(t, envs.ensured)
		assert.True(t, envs.installed)

		script := strings.Join(spawner.args, " ")
		assert.Contains(t, script, "0.0.0.0:9090")
		assert.Contains(t, script, "gunicorn")
		assert.Contains(t, script, "activate")
		assert.Contains(t, out.String(), "service launched")
	})

	t.Run("defaults to the configured port", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		spawner := &fakeSpawner{pid: 1}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, spawner)

		inst, err := o.Start(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, cfg.Server.Port, inst.Port)
	})

	t.Run("log output lands in the dated log file", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		spawner := &fakeSpawner{pid: 1}
		now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, spawner)
		WithClock(func() time.Time { return now })(o)

		inst, err := o.Start(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.Logs.Dir, "production_2026-03-15.log"), inst.LogPath)
		assert.Equal(t, inst.LogPath, spawner.logPath)
	})

	t.Run("prunes expired logs before launching", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		require.NoError(t, os.MkdirAll(cfg.Logs.Dir, 0o755))

		now := time.Now()
		stale := filepath.Join(cfg.Logs.Dir, "production_2026-01-01.log")
		fresh := filepath.Join(cfg.Logs.Dir, "production_2026-03-14.log")
		require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0o644))
		require.NoError(t, os.WriteFile(fresh, []byte("new\n"), 0o644))
		require.NoError(t, os.Chtimes(stale, now.AddDate(0, 0, -10), now.AddDate(0, 0, -10)))

		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, &fakeSpawner{pid: 1})

		_, err := o.Start(context.Background(), 0)

		require.NoError(t, err)
		assert.NoFileExists(t, stale)
		assert.FileExists(t, fresh)
	})

	t.Run("missing entry artifact is fatal", func(t *testing.T) {
		cfg := testConfig(t)
		spawner := &fakeSpawner{}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, spawner)

		_, err := o.Start(context.Background(), 0)

		var missing *deployerrors.MissingArtifactError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, cfg.App.Entrypoint, missing.Path)
		assert.Empty(t, spawner.binary, "nothing should be spawned")
	})

	t.Run("provisioning problems degrade rather than abort", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		envs := &fakeEnvs{
			ensureErr:  errors.New("guest unreachable"),
			installErr: errors.New("pip failed"),
		}
		o, out := testOrchestrator(t, cfg, envs, &fakeProcs{}, &fakeSpawner{pid: 7})

		inst, err := o.Start(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 7, inst.PID)
		assert.Contains(t, out.String(), "could not ensure runtime environment")
		assert.Contains(t, out.String(), "dependency install failed")
	})

	t.Run("spawn failure surfaces as a launch error", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		spawner := &fakeSpawner{err: errors.New("fork failed")}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, spawner)

		_, err := o.Start(context.Background(), 0)

		var launch *deployerrors.LaunchError
		require.ErrorAs(t, err, &launch)
	})
}

func TestStop(t *testing.T) {
	t.Run("no environment means nothing to stop", func(t *testing.T) {
		cfg := testConfig(t)
		procs := &fakeProcs{procs: []*lifecycle.ServiceProcess{{PID: 100, Name: "gunicorn"}}}
		o, out := testOrchestrator(t, cfg, &fakeEnvs{}, procs, &fakeSpawner{})

		res, err := o.Stop(context.Background(), false)

		require.NoError(t, err)
		assert.Empty(t, res.Stopped)
		assert.Empty(t, procs.terminated, "no signal without an environment")
		assert.Contains(t, out.String(), "nothing to stop")
	})

	t.Run("no matching process is a clean no-op", func(t *testing.T) {
		cfg := testConfig(t)
		markEnvironment(t, cfg)
		o, out := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, &fakeSpawner{})

		res, err := o.Stop(context.Background(), false)

		require.NoError(t, err)
		assert.Empty(t, res.Stopped)
		assert.Contains(t, out.String(), "nothing to stop")
	})

	t.Run("terminates the first match", func(t *testing.T) {
		cfg := testConfig(t)
		markEnvironment(t, cfg)
		procs := &fakeProcs{procs: []*lifecycle.ServiceProcess{
			{PID: 100, Name: "gunicorn"},
			{PID: 101, Name: "gunicorn"},
		}}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, procs, &fakeSpawner{})

		res, err := o.Stop(context.Background(), false)

		require.NoError(t, err)
		require.Len(t, res.Stopped, 1)
		assert.Equal(t, []int32{100}, procs.terminated)
	})

	t.Run("terminates every match with all", func(t *testing.T) {
		cfg := testConfig(t)
		markEnvironment(t, cfg)
		procs := &fakeProcs{procs: []*lifecycle.ServiceProcess{
			{PID: 100, Name: "gunicorn"},
			{PID: 101, Name: "gunicorn"},
		}}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, procs, &fakeSpawner{})

		res, err := o.Stop(context.Background(), true)

		require.NoError(t, err)
		require.Len(t, res.Stopped, 2)
		assert.Equal(t, []int32{100, 101}, procs.terminated)
	})

	t.Run("termination failure is an error when nothing stopped", func(t *testing.T) {
		cfg := testConfig(t)
		markEnvironment(t, cfg)
		procs := &fakeProcs{
			procs:        []*lifecycle.ServiceProcess{{PID: 100, Name: "gunicorn"}},
			terminateErr: errors.New("operation not permitted"),
		}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, procs, &fakeSpawner{})

		_, err := o.Stop(context.Background(), false)

		assert.Error(t, err)
	})
}

func TestStatus(t *testing.T) {
	t.Run("reports a stopped deployment", func(t *testing.T) {
		cfg := testConfig(t)
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, &fakeProcs{}, &fakeSpawner{})

		report, err := o.Status(context.Background())

		require.NoError(t, err)
		assert.False(t, report.EnvironmentExists)
		assert.False(t, report.Running)
		assert.Empty(t, report.Processes)
	})

	t.Run("reports a running deployment", func(t *testing.T) {
		cfg := testConfig(t)
		markEnvironment(t, cfg)
		procs := &fakeProcs{procs: []*lifecycle.ServiceProcess{{PID: 55, Name: "gunicorn"}}}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, procs, &fakeSpawner{})

		report, err := o.Status(context.Background())

		require.NoError(t, err)
		assert.True(t, report.EnvironmentExists)
		assert.True(t, report.Running)
		require.Len(t, report.Processes, 1)
		assert.EqualValues(t, 55, report.Processes[0].PID)
	})
}

func TestRestart(t *testing.T) {
	t.Run("stops all matches then starts", func(t *testing.T) {
		cfg := testConfig(t)
		writeEntrypoint(t, cfg)
		markEnvironment(t, cfg)
		procs := &fakeProcs{procs: []*lifecycle.ServiceProcess{
			{PID: 100, Name: "gunicorn"},
			{PID: 101, Name: "gunicorn"},
		}}
		spawner := &fakeSpawner{pid: 9}
		o, _ := testOrchestrator(t, cfg, &fakeEnvs{}, procs, spawner)

		inst, err := o.Restart(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, []int32{100, 101}, procs.terminated)
		assert.Equal(t, 9, inst.PID)
	})
}
