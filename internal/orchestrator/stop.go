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

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/lifecycle"
	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// StopResult summarizes a stop invocation. Stopped lists the processes
// that were signalled; an empty list with a nil error means there was
// nothing to stop, which is a normal outcome.
type StopResult struct {
	Stopped []*lifecycle.ServiceProcess
	Reason  string
}

// Stop terminates the running service. With all false, only the first
// matching process is signalled; with all true, every match is.
//
// An absent runtime environment or no matching process both resolve to a
// clean no-op: stopping a stopped service succeeds.
func (o *Orchestrator) Stop(ctx context.Context, all bool) (*StopResult, error) {
	env := o.environment()

	o.step("checking runtime environment at %s", env.Root)
	if !env.Exists() {
		reason := (&deployerrors.MissingEnvironmentError{Root: env.Root}).Error()
		o.stepWarn("%s, nothing to stop", reason)
		if err := o.events.LogNothingToStop(reason); err != nil {
			o.logger.Warn("failed to write lifecycle event", "error", err)
		}
		return &StopResult{Reason: reason}, nil
	}

	name := o.cfg.App.ProcessName
	o.step("locating %s", name)

	var targets []*lifecycle.ServiceProcess
	var err error
	if all {
		targets, err = o.procs.FindAll(name)
	} else {
		var p *lifecycle.ServiceProcess
		p, err = o.procs.FindRunning(name)
		if p != nil {
			targets = []*lifecycle.ServiceProcess{p}
		}
	}
	if err != nil {
		if errors.Is(err, deployerrors.ErrProcessNotFound) {
			reason := fmt.Sprintf("no %s process running", name)
			o.stepOK("%s, nothing to stop", reason)
			if logErr := o.events.LogNothingToStop(reason); logErr != nil {
				o.logger.Warn("failed to write lifecycle event", "error", logErr)
			}
			return &StopResult{Reason: reason}, nil
		}
		return nil, err
	}

	res := &StopResult{}
	var failed int
	for _, p := range targets {
		if err := o.procs.Terminate(p.PID); err != nil {
			failed++
			o.stepWarn("could not terminate pid %d: %v", p.PID, err)
			if logErr := o.events.LogStopFailure(int(p.PID), err); logErr != nil {
				o.logger.Warn("failed to write lifecycle event", "error", logErr)
			}
			continue
		}
		res.Stopped = append(res.Stopped, p)
		o.stepOK("terminated %s (pid %d)", p.Name, p.PID)
		if logErr := o.events.LogStop(int(p.PID)); logErr != nil {
			o.logger.Warn("failed to write lifecycle event", "error", logErr)
		}
	}

	if failed > 0 && len(res.Stopped) == 0 {
		return nil, fmt.Errorf("failed to terminate %d %s process(es)", failed, name)
	}
	return res, nil
}
