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

package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Event represents a lifecycle audit event (deploy, start, stop, etc.).
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Event     string    `json:"event"`
	PID       int       `json:"pid,omitempty"`
	Port      int       `json:"port,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventLogger appends lifecycle events to a JSON-lines file. All events
// of one orchestrator invocation share a run ID.
type EventLogger struct {
	logPath string
	runID   string
}

// NewEventLogger creates an event logger with a fresh run ID.
func NewEventLogger(logPath string) *EventLogger {
	return &EventLogger{
		logPath: logPath,
		runID:   uuid.NewString(),
	}
}

// RunID returns the identifier shared by this invocation's events.
func (l *EventLogger) RunID() string {
	return l.runID
}

// LogDeploy logs the beginning of a destructive environment refresh.
func (l *EventLogger) LogDeploy(root string) error {
	return l.write(Event{
		Event:   "deploy",
		Success: true,
		Message: fmt.Sprintf("environment refresh initiated at %s", root),
	})
}

// LogStart logs the beginning of a start flow.
func (l *EventLogger) LogStart(port int) error {
	return l.write(Event{
		Event:   "start",
		Port:    port,
		Success: true,
		Message: "service start initiated",
	})
}

// LogLaunch logs a successful fire-and-forget launch.
func (l *EventLogger) LogLaunch(pid, port int) error {
	return l.write(Event{
		Event:   "launch",
		PID:     pid,
		Port:    port,
		Success: true,
		Message: "launch command issued",
	})
}

// LogStartFailure logs a failed start flow.
func (l *EventLogger) LogStartFailure(err error) error {
	return l.write(Event{
		Event:   "start_failure",
		Success: false,
		Message: "service failed to start",
		Error:   err.Error(),
	})
}

// LogStop logs a stop being issued against a discovered process.
func (l *EventLogger) LogStop(pid int) error {
	return l.write(Event{
		Event:   "stop",
		PID:     pid,
		Success: true,
		Message: "termination signal issued",
	})
}

// LogStopFailure logs a termination failure.
func (l *EventLogger) LogStopFailure(pid int, err error) error {
	return l.write(Event{
		Event:   "stop_failure",
		PID:     pid,
		Success: false,
		Message: "failed to terminate service",
		Error:   err.Error(),
	})
}

// LogNothingToStop logs a stop flow that found nothing running.
func (l *EventLogger) LogNothingToStop(reason string) error {
	return l.write(Event{
		Event:   "stop_noop",
		Success: true,
		Message: reason,
	})
}

// write appends the event as one JSON line, stamping timestamp and run ID.
func (l *EventLogger) write(event Event) error {
	event.Timestamp = time.Now().UTC()
	event.RunID = l.runID

	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create lifecycle log directory: %w", err)
	}

	f, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open lifecycle log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write lifecycle event: %w", err)
	}

	return nil
}
