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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/orchestrator"
)

// NewRestartCommand creates the restart command.
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart [port]",
		Short: "Stop the service, then start it again",
		Long: `Stop every matching service process, then run the full start flow.

Restarting a stopped service is equivalent to starting it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := 0
			if len(args) == 1 {
				p, err := strconv.Atoi(args[0])
				if err != nil || p < 1 || p > 65535 {
					return shared.NewConfigError(fmt.Sprintf("invalid port %q", args[0]), nil)
				}
				port = p
			}
			return runRestart(cmd, port)
		},
	}
}

func runRestart(cmd *cobra.Command, port int) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	o := orchestrator.New(cfg, shared.NewLogger(),
		orchestrator.WithOutput(shared.ConsoleOutput()))

	inst, err := o.Restart(cmd.Context(), port)
	if err != nil {
		return shared.NewFailureError("restart failed", err)
	}

	if shared.GetJSON() {
		return emitJSON(map[string]any{
			"pid":      inst.PID,
			"port":     inst.Port,
			"log_path": inst.LogPath,
		})
	}

	if !shared.GetQuiet() {
		fmt.Println(console.RenderOK(fmt.Sprintf("Service restarted (PID %d, port %d)", inst.PID, inst.Port)))
	}
	return nil
}
