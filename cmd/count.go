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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/widget"
)

var (
	countResponse      string
	countModel         string
	countFile          string
	countJSON          bool
	countServerURL     string
	countServerCommand string
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count [PROMPT...]",
	Short: "Count tokens and estimate cost",
	Long: `Count the tokens of a prompt and an optional response and print the
estimated cost on every supported model.

The prompt is taken from the arguments, from --file, or from standard input
when no argument (or "-") is given.

Examples:
  tokencounter count "Summarize this article"
  tokencounter count --file prompt.txt --response "..." --model gpt-4o
  cat prompt.txt | tokencounter count --json
  tokencounter count --server http://localhost:8000/mcp "hello"`,
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().StringVarP(&countResponse, "response", "r", "", "model response to count")
	countCmd.Flags().StringVarP(&countModel, "model", "m", "", "model used for tokenization (default from config)")
	countCmd.Flags().StringVarP(&countFile, "file", "f", "", "read the prompt from a file")
	countCmd.Flags().BoolVar(&countJSON, "json", false, "print the raw report as JSON")
	countCmd.Flags().StringVar(&countServerURL, "server", "", "count through a remote MCP endpoint")
	countCmd.Flags().StringVar(&countServerCommand, "server-command", "", "count through an MCP server started as a subprocess")
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	model := countModel
	if model == "" {
		model = cfg.Widget.DefaultModel
	}
	if _, err := models.Parse(model); err != nil {
		return err
	}

	req := tokens.Request{PromptText: prompt, ResponseText: countResponse, Model: model}

	var report *tokens.CostReport
	if countServerURL != "" || countServerCommand != "" {
		report, err = countRemote(ctx, req)
	} else {
		var r tokens.CostReport
		r, err = tokens.NewEstimator(nil).Estimate(ctx, req)
		report = &r
	}
	if err != nil {
		return err
	}

	if countJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	printReport(cmd.OutOrStdout(), report, message.NewPrinter(cfg.Widget.LocaleTag()))
	return nil
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if countFile != "" {
		data, err := os.ReadFile(countFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 && args[0] != "-" {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return string(data), nil
}

func countRemote(ctx context.Context, req tokens.Request) (*tokens.CostReport, error) {
	client, err := connectToolServer(ctx, countServerURL, countServerCommand)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	res, err := client.CallTool(ctx, widget.ToolName, widget.ToolArgs{
		PromptText:   req.PromptText,
		ResponseText: req.ResponseText,
		Model:        models.ID(req.Model),
	})
	if err != nil {
		return nil, err
	}
	if res.ToolOutput == nil {
		return nil, fmt.Errorf("%s returned no report", widget.ToolName)
	}
	return res.ToolOutput, nil
}

func printReport(w io.Writer, report *tokens.CostReport, p *message.Printer) {
	view := widget.BuildView(report, p)

	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, []string{r.Label, r.Tokens, r.Cost + " " + widget.CurrencySymbol})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Model", "Tokens", "Cost").
		Rows(rows...)

	fmt.Fprintln(w, tokens.Summary(*report))
	fmt.Fprintf(w, "Total tokens: %s (tokenized as %s)\n", view.Total, report.DefaultModel.Label())
	fmt.Fprintln(w, t.Render())
}
