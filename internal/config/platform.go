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

package config

import "runtime"

// defaultBridge returns the host command used to reach the guest context.
// On a Windows host the Linux subsystem is addressed through wsl.exe; on a
// Linux host (CI, or running directly inside the subsystem) commands run
// through the local shell.
func defaultBridge() string {
	if runtime.GOOS == "windows" {
		return "wsl.exe"
	}
	return "sh"
}
