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

	deployerrors "github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/pkg/errors"
)

// Deploy performs the destructive environment refresh: any existing
// runtime environment is removed and rebuilt from the dependency
// manifest. Deploy never patches in place, so stale packages cannot
// survive.
func (o *Orchestrator) Deploy(ctx context.Context) error {
	env := o.environment()

	if err := o.events.LogDeploy(env.Root); err != nil {
		o.logger.Warn("failed to write lifecycle event", "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeouts.Provision)
	defer cancel()

	o.step("refreshing runtime environment at %s", env.Root)

	err := o.envs.Provision(ctx, env, o.execContext(nil))
	if err != nil {
		if errors.Is(err, deployerrors.ErrManifestMissing) {
			o.stepWarn("no %s found, dependency install skipped", env.Manifest)
			o.stepOK("runtime environment refreshed at %s", env.Root)
			return nil
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !deployerrors.IsTimeout(err) {
			err = &deployerrors.TimeoutError{
				Operation: "provision",
				Duration:  o.cfg.Timeouts.Provision,
				Cause:     err,
			}
		}
		return err
	}

	o.stepOK("runtime environment refreshed at %s", env.Root)
	o.stepOK("dependencies installed from %s", env.Manifest)
	return nil
}
