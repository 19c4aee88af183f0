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

package bridge

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ExecutionContext describes where and under what ambient state a guest
// command runs. It is threaded explicitly into bridge and provisioner
// calls rather than mutated ambiently.
type ExecutionContext struct {
	// Workdir is the working directory inside the guest (empty: bridge default)
	Workdir string

	// Env holds environment variables exported before the command runs
	Env map[string]string

	// Distribution names the guest identity passed to the bridge (optional)
	Distribution string
}

// Step is a single command as an argv list. Steps are quoted individually
// before composition, so arguments never leak shell metacharacters into
// the composed invocation.
type Step []string

// GuestCommand composes environment activation steps and a payload into
// one guest shell invocation.
type GuestCommand struct {
	// Activation runs before the payload (e.g., sourcing the virtualenv)
	Activation []Step

	// Payload is the target command
	Payload Step
}

// Serialize renders the command as a single shell string: directory
// change, exports, activation steps, then the payload, joined with &&.
// Each element is quoted via shellquote so ad hoc string concatenation
// never reaches the guest shell.
func (c GuestCommand) Serialize(ec ExecutionContext) string {
	var parts []string

	if ec.Workdir != "" {
		parts = append(parts, shellquote.Join("cd", ec.Workdir))
	}

	for _, key := range sortedKeys(ec.Env) {
		parts = append(parts, "export "+shellquote.Join(key+"="+ec.Env[key]))
	}

	for _, step := range c.Activation {
		parts = append(parts, shellquote.Join(step...))
	}

	parts = append(parts, shellquote.Join(c.Payload...))

	return strings.Join(parts, " && ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
