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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/deploy"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/service"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version.Set(v, c, b)
}

// NewRootCommand creates the root Cobra command for deployctl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployctl",
		Short: "deployctl - web service deployment and lifecycle",
		Long: `deployctl manages the deployment lifecycle of the document processing
web service: rebuilding its Python runtime environment, starting it
detached with daily log rotation, and stopping it by process name.

Commands that talk to the service host go through the configured guest
bridge, so the same tool works from a Windows host driving WSL and from
a plain Linux shell.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, quiet, json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: deployctl.yaml)")

	cmd.AddCommand(deploy.NewCommand())
	cmd.AddCommand(service.NewStartCommand())
	cmd.AddCommand(service.NewStopCommand())
	cmd.AddCommand(service.NewRestartCommand())
	cmd.AddCommand(service.NewStatusCommand())
	cmd.AddCommand(version.NewVersionCommand())

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version.Get()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
