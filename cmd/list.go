package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/model"
)

var (
	flagListAll  bool
	flagListJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List panes with their geometry",
	Long: `List the panes of the current window, one per line:

  %3  80x24 @0,0   active  vim    editing main.go

With --all, panes from every window of the session are listed and each
line is prefixed with its window id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := getAdapter()
		if err != nil {
			return err
		}

		var panes []model.PaneSnapshot
		if flagListAll {
			panes, err = adapter.AllPanes(cmd.Context(), "")
		} else {
			panes, err = adapter.Panes(cmd.Context(), "")
		}
		if err != nil {
			return fmt.Errorf("listing panes: %w", err)
		}

		if flagListJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(panes)
		}

		for _, p := range panes {
			active := ""
			if p.Active {
				active = "active"
			}
			title := p.Title
			if flagListAll {
				// AllPanes encodes the window id as "windowID:title".
				if idx := strings.IndexByte(title, ':'); idx > 0 {
					fmt.Printf("%-4s ", title[:idx])
					title = title[idx+1:]
				}
			}
			fmt.Printf("%-4s %dx%d @%d,%d  %-7s %-10s %s\n",
				p.ID, p.Width, p.Height, p.X, p.Y, active, p.Command, title)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&flagListAll, "all", false, "list panes across all windows of the session")
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}
