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

import "context"

// Restart stops every matching service process, then runs the full start
// flow. A stop that finds nothing running is not an error; restart on a
// stopped service is equivalent to start.
func (o *Orchestrator) Restart(ctx context.Context, port int) (*ServiceInstance, error) {
	if _, err := o.Stop(ctx, true); err != nil {
		return nil, err
	}
	return o.Start(ctx, port)
}
