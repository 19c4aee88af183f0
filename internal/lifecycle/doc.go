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

/*
Package lifecycle manages service process lifecycle operations.

This package provides process discovery by executable identity, forceful
termination, detached process spawning, and lifecycle event logging for
the deployment orchestrator.

# Process Discovery

The running service is never cached; its identity is rediscovered on every
invocation by enumerating operating-system processes:

	proc, err := lifecycle.FindRunning("gunicorn")
	if errors.Is(err, deployerrors.ErrProcessNotFound) {
	    // Normal outcome: service already stopped.
	}

# Process Spawning

Detached spawning launches the service so it outlives the orchestrator:

	spawner := lifecycle.NewSpawner()
	pid, err := spawner.SpawnDetached("wsl.exe", args, logPath)

The spawned process runs in its own session with stdout and stderr
appended to the given log file; the orchestrator does not wait for it.

# Lifecycle Logging

Every orchestrator invocation appends audit events to a JSON-lines log,
correlated by a per-invocation run ID:

	events := lifecycle.NewEventLogger("logs/lifecycle.log")
	events.LogLaunch(pid, port)
*/
package lifecycle
