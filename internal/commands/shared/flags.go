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

package shared

// The global flags live here so every subcommand reads the same values
// without threading them through each constructor. The root command binds
// them once at startup.
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string
)

// RegisterFlagPointers hands the flag storage to the root command for
// binding with cobra's persistent flags.
func RegisterFlagPointers() (verbose, quiet, json *bool, configPath *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &configFlag
}

// GetVerbose reports whether --verbose was given.
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet reports whether --quiet was given.
func GetQuiet() bool {
	return quietFlag
}

// GetJSON reports whether --json output was requested.
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the --config value; empty means the default
// deployctl.yaml lookup.
func GetConfigPath() string {
	return configFlag
}
