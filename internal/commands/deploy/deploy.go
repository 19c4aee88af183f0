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

package deploy

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/orchestrator"
)

// NewCommand creates the deploy command.
func NewCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Rebuild the runtime environment from scratch",
		Long: `Destroy and recreate the Python runtime environment, then reinstall
dependencies from the manifest.

Deploy is deliberately destructive: the existing environment is removed
entirely so stale packages cannot survive an upgrade. The running service
is not touched; restart it afterwards to pick up the new environment.`,
		Example: `  # Rebuild the environment (asks for confirmation)
  deployctl deploy

  # Rebuild without asking, for CI pipelines
  deployctl deploy --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runDeploy(cmd *cobra.Command, yes bool) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	if !yes {
		var confirmed bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Destroy and rebuild the environment at %s?", cfg.Environment.Root),
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return shared.NewFailureError("confirmation aborted", err)
		}
		if !confirmed {
			if !shared.GetQuiet() {
				fmt.Println(console.RenderWarn("Deploy cancelled"))
			}
			return nil
		}
	}

	o := orchestrator.New(cfg, shared.NewLogger(),
		orchestrator.WithOutput(shared.ConsoleOutput()))

	if err := o.Deploy(cmd.Context()); err != nil {
		return shared.NewFailureError("deploy failed", err)
	}

	if !shared.GetQuiet() {
		fmt.Println(console.RenderOK("Deploy complete"))
	}
	return nil
}
