package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagReflowDryRun bool
	flagReflowWindow string
	flagReflowJSON   bool
)

var reflowCmd = &cobra.Command{
	Use:   "reflow",
	Short: "Reshape the current window around its most important panes",
	Long: `Score the panes of a window, derive a target layout, and apply it
through swap and resize operations. Pane processes are never touched;
only geometry changes.

With --dry-run the plan is printed without applying anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		adapter, err := getAdapter()
		if err != nil {
			return err
		}
		blender, err := newBlender(cfg)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg, adapter, blender)
		if err != nil {
			return err
		}

		result, err := engine.Run(ctx, flagReflowWindow, flagReflowDryRun)
		if err != nil {
			return err
		}

		if flagReflowJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("strategy: %s   status: %s\n", engine.Strategy, result.Status)
		if result.Message != "" {
			fmt.Println(result.Message)
		}
		for _, p := range result.Panes {
			arrow := "  "
			if p.After != "unchanged" && p.After != p.Before {
				arrow = "->"
			}
			line := fmt.Sprintf("  %-6s imp=%.2f int=%.2f act=%.2f  %s %s %s",
				p.ID, p.Importance, p.Interestingness, p.Activity, p.Before, arrow, p.After)
			if p.Summary != "" {
				line += "  " + p.Summary
			}
			fmt.Println(line)
		}
		if len(result.Operations) > 0 {
			fmt.Printf("operations: %d\n", len(result.Operations))
			for _, op := range result.Operations {
				fmt.Printf("  %s\n", op)
			}
		}
		if result.LLMScored > 0 {
			fmt.Printf("llm scored: %d panes\n", result.LLMScored)
		}
		return nil
	},
}

func init() {
	reflowCmd.Flags().BoolVar(&flagReflowDryRun, "dry-run", false, "calculate and print the plan without applying it")
	reflowCmd.Flags().StringVar(&flagReflowWindow, "window", "", "window to reflow (default: current)")
	reflowCmd.Flags().BoolVar(&flagReflowJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(reflowCmd)
}
