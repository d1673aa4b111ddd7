package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture <pane-id>",
	Short: "Capture the content of a pane",
	Long: `Capture the content of a pane (scrollback included) and print it to
stdout. The pane id is the multiplexer's identifier, e.g. "%3" for tmux.

This is pure transport: the content is printed exactly as captured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paneID := args[0]

		adapter, err := getAdapter()
		if err != nil {
			return err
		}

		panes, err := adapter.AllPanes(cmd.Context(), "")
		if err != nil {
			return fmt.Errorf("listing panes: %w", err)
		}
		for _, p := range panes {
			if p.ID == paneID {
				fmt.Fprint(os.Stdout, p.Content)
				return nil
			}
		}
		return fmt.Errorf("pane %q not found", paneID)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
