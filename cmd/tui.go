/*
Copyright © 2025 Token Counter Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/store"
	"github.com/common-creation/tokencounter/internal/ui"
	"github.com/common-creation/tokencounter/internal/widget"
)

var (
	tuiPrompt        string
	tuiResponse      string
	tuiModel         string
	tuiServerURL     string
	tuiServerCommand string
	tuiSlot          string
	tuiTheme         string
	tuiNoPersist     bool
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the token counter widget in the terminal",
	Long: `Open the token counter widget in the terminal.

The form is seeded from --prompt, --response and --model, then from the state
saved by the previous session. Edits are saved as you type. Recompute sends
the form to the token_counter tool of an in-process server, or of the server
given with --server or --server-command.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiPrompt, "prompt", "", "initial prompt text")
	tuiCmd.Flags().StringVar(&tuiResponse, "response", "", "initial response text")
	tuiCmd.Flags().StringVar(&tuiModel, "model", "", "initial model")
	tuiCmd.Flags().StringVar(&tuiServerURL, "server", "", "MCP endpoint to send recompute calls to")
	tuiCmd.Flags().StringVar(&tuiServerCommand, "server-command", "", "MCP server to start as a subprocess")
	tuiCmd.Flags().StringVar(&tuiSlot, "slot", "", "name of the saved state slot (default from config)")
	tuiCmd.Flags().StringVar(&tuiTheme, "theme", "default", "color theme (default, dark, light)")
	tuiCmd.Flags().BoolVar(&tuiNoPersist, "no-persist", false, "do not load or save widget state")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()
	ctx := cmd.Context()

	client, err := connectToolServer(ctx, tuiServerURL, tuiServerCommand)
	if err != nil {
		return fmt.Errorf("failed to connect to token counter server: %w", err)
	}
	defer client.Close()

	opts := ui.AppOptions{
		Input:  toolInputFromFlags(cmd),
		Slot:   cfg.Widget.StateKey,
		Caller: client,
		Locale: cfg.Widget.LocaleTag(),
		Theme:  tuiTheme,
		Logger: logger,
	}
	if tuiSlot != "" {
		opts.Slot = tuiSlot
	}

	if !tuiNoPersist {
		st, err := store.Open(cfg.Widget.StatePath)
		if err != nil {
			ShowWarning("Widget state will not be saved: %v", err)
		} else {
			defer st.Close()
			opts.Store = st
		}
	}

	app, err := ui.NewApp(ctx, opts)
	if err != nil {
		return err
	}
	return app.Run()
}

// toolInputFromFlags returns the tool input given on the command line, or
// nil when no input flag was set.
func toolInputFromFlags(cmd *cobra.Command) *widget.ToolInput {
	var input widget.ToolInput
	set := false
	if cmd.Flags().Changed("prompt") {
		input.PromptText = widget.StringPtr(tuiPrompt)
		set = true
	}
	if cmd.Flags().Changed("response") {
		input.ResponseText = widget.StringPtr(tuiResponse)
		set = true
	}
	if cmd.Flags().Changed("model") {
		input.Model = widget.ModelPtr(models.ID(tuiModel))
		set = true
	}
	if !set {
		return nil
	}
	return &input
}
