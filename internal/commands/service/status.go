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

package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/orchestrator"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service and environment status",
		Long: `Report whether the runtime environment is provisioned and whether the
service process is running. The report is a fresh observation of the
filesystem and the process table; nothing is cached between invocations.`,
		Example: `  # Human-readable status
  deployctl status

  # Machine-readable status
  deployctl status --json

  # Extract the running flag
  deployctl status --json | jq -r '.running'`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	o := orchestrator.New(cfg, shared.NewLogger(),
		orchestrator.WithOutput(shared.ConsoleOutput()))

	report, err := o.Status(cmd.Context())
	if err != nil {
		return shared.NewFailureError("status failed", err)
	}

	if shared.GetJSON() {
		return emitJSON(report)
	}

	fmt.Println(console.Header.Render("Deployment Status"))
	fmt.Println()

	envStyle, envText := console.StatusError, "missing"
	if report.EnvironmentExists {
		envStyle, envText = console.StatusOK, "provisioned"
	}
	fmt.Printf("%s %s %s\n", console.Muted.Render("Environment:"), envStyle.Render(envText), console.Muted.Render(report.EnvironmentRoot))

	if !report.Running {
		fmt.Printf("%s %s\n", console.Muted.Render("Service:"), console.StatusError.Render("stopped"))
		return nil
	}

	fmt.Printf("%s %s\n", console.Muted.Render("Service:"), console.StatusOK.Render("running"))
	for _, p := range report.Processes {
		fmt.Printf("  %s %s (pid %d)\n", console.StatusOK.Render(console.SymbolOK), p.Name, p.PID)
	}
	return nil
}

// emitJSON writes machine-readable command output to stdout.
func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
