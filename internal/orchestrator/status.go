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

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/lifecycle"
	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// StatusReport is a point-in-time observation of the deployment. Nothing
// is cached between invocations, so the report is rebuilt from the
// filesystem and the process table each time.
type StatusReport struct {
	EnvironmentRoot   string                      `json:"environment_root"`
	EnvironmentExists bool                        `json:"environment_exists"`
	ProcessName       string                      `json:"process_name"`
	Running           bool                        `json:"running"`
	Processes         []*lifecycle.ServiceProcess `json:"processes,omitempty"`
}

// Status reports whether the runtime environment is provisioned and
// which service processes are currently running.
func (o *Orchestrator) Status(ctx context.Context) (*StatusReport, error) {
	env := o.environment()
	report := &StatusReport{
		EnvironmentRoot:   env.Root,
		EnvironmentExists: env.Exists(),
		ProcessName:       o.cfg.App.ProcessName,
	}

	procs, err := o.procs.FindAll(o.cfg.App.ProcessName)
	if err != nil {
		if errors.Is(err, deployerrors.ErrProcessNotFound) {
			return report, nil
		}
		return nil, err
	}

	report.Running = len(procs) > 0
	report.Processes = procs
	return report, nil
}
