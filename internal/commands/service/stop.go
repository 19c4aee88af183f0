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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/orchestrator"
)

// NewStopCommand creates the stop command.
func NewStopCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running service",
		Long: `Locate the service process by executable name and terminate it.

The stop command is idempotent: if the runtime environment does not exist
or no matching process is running, it reports that and exits successfully.

By default only the first matching process is terminated. Use --all when
multiple workers are running under the same executable name.`,
		Example: `  # Stop the service
  deployctl stop

  # Stop every matching process
  deployctl stop --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Terminate every matching process")

	return cmd
}

func runStop(cmd *cobra.Command, all bool) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	o := orchestrator.New(cfg, shared.NewLogger(),
		orchestrator.WithOutput(shared.ConsoleOutput()))

	res, err := o.Stop(cmd.Context(), all)
	if err != nil {
		return shared.NewFailureError("stop failed", err)
	}

	if shared.GetJSON() {
		pids := make([]int32, 0, len(res.Stopped))
		for _, p := range res.Stopped {
			pids = append(pids, p.PID)
		}
		return emitJSON(map[string]any{
			"stopped": pids,
			"reason":  res.Reason,
		})
	}

	if !shared.GetQuiet() && len(res.Stopped) > 0 {
		fmt.Println(console.RenderOK(fmt.Sprintf("Stopped %d process(es)", len(res.Stopped))))
	}
	return nil
}
