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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/common-creation/tokencounter/internal/store"
)

var stateSlot string

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or clear saved widget state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved form of a slot as JSON",
	RunE:  runStateShow,
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved form of a slot",
	RunE:  runStateClear,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)

	stateCmd.PersistentFlags().StringVar(&stateSlot, "slot", "", "name of the saved state slot (default from config)")
}

func openStateStore() (*store.Store, string, error) {
	cfg := GetConfig()
	slot := stateSlot
	if slot == "" {
		slot = cfg.Widget.StateKey
	}
	st, err := store.Open(cfg.Widget.StatePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open state store: %w", err)
	}
	return st, slot, nil
}

func runStateShow(cmd *cobra.Command, args []string) error {
	st, slot, err := openStateStore()
	if err != nil {
		return err
	}
	defer st.Close()

	state, ok, err := st.Load(cmd.Context(), slot)
	if err != nil {
		return err
	}
	if !ok {
		ShowInfo("No saved state for slot %q", slot)
		return nil
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(state)
}

func runStateClear(cmd *cobra.Command, args []string) error {
	st, slot, err := openStateStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), slot); err != nil {
		return err
	}
	ShowSuccess("Cleared saved state for slot %q", slot)
	return nil
}
