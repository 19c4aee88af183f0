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
	"time"

	"github.com/spf13/cobra"

	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/commands/shared"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/console"
	"github.com/YUNIKKAI/PhilFirst-Internal-Document-Processor/internal/orchestrator"
)

// NewStartCommand creates the start command.
func NewStartCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "start [port]",
		Short: "Start the service in the background",
		Long: `Start the web service detached from this terminal.

Start prepares everything the service needs before launching: the log
directory and today's log file, a retention sweep of old logs, the nginx
reverse proxy, and the runtime environment (created only if missing, never
rebuilt; use deploy for that). The service is then launched in the
background with its output appended to today's log.

The command returns as soon as the process is spawned. It does not wait
for the service to come up; check the log file if it fails to.`,
		Example: `  # Start on the configured port
  deployctl start

  # Start on port 9090
  deployctl start 9090`,
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
			return runStart(cmd, port, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Provision and bridge timeout (overrides config)")

	return cmd
}

func runStart(cmd *cobra.Command, port int, timeout time.Duration) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if timeout > 0 {
		cfg.Timeouts.Provision = timeout
		cfg.Timeouts.Bridge = timeout
	}

	o := orchestrator.New(cfg, shared.NewLogger(),
		orchestrator.WithOutput(shared.ConsoleOutput()))

	inst, err := o.Start(cmd.Context(), port)
	if err != nil {
		return shared.NewFailureError("start failed", err)
	}

	if shared.GetJSON() {
		return emitJSON(map[string]any{
			"pid":      inst.PID,
			"port":     inst.Port,
			"log_path": inst.LogPath,
		})
	}

	if !shared.GetQuiet() {
		fmt.Println(console.RenderOK(fmt.Sprintf("Service started (PID %d, port %d)", inst.PID, inst.Port)))
		fmt.Println(console.Muted.Render(fmt.Sprintf("Logs: %s", inst.LogPath)))
	}
	return nil
}
