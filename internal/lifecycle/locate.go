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
	"fmt"

	"github.com/shirou/gopsutil/v3/process"

	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// ServiceProcess identifies a discovered service process.
type ServiceProcess struct {
	PID     int32  `json:"pid"`
	Name    string `json:"name"`
	Cmdline string `json:"cmdline,omitempty"`
}

// FindRunning returns the first enumerated process whose executable name
// matches exactly (case-sensitive). Additional matches are ignored; the
// stop flow terminates one deterministic candidate per invocation.
// Returns ErrProcessNotFound when nothing matches, which is a normal
// outcome, not a failure.
func FindRunning(executableName string) (*ServiceProcess, error) {
	matches, err := FindAll(executableName)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

// FindAll returns every process whose executable name matches exactly, in
// enumeration order. Returns ErrProcessNotFound when nothing matches.
func FindAll(executableName string) ([]*ServiceProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	var matches []*ServiceProcess
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// Processes can vanish mid-enumeration.
			continue
		}
		if name != executableName {
			continue
		}

		cmdline, _ := p.Cmdline()
		matches = append(matches, &ServiceProcess{
			PID:     p.Pid,
			Name:    name,
			Cmdline: cmdline,
		})
	}

	if len(matches) == 0 {
		return nil, deployerrors.ErrProcessNotFound
	}
	return matches, nil
}

// IsRunning reports whether a process with the given PID still exists.
func IsRunning(pid int32) bool {
	running, err := process.PidExists(pid)
	return err == nil && running
}

// Terminate sends a forceful termination signal to the process.
func Terminate(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := p.Kill(); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}
