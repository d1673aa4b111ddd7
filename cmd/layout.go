package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/layout"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

var (
	flagLayoutTarget bool
	flagLayoutWindow string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print a window's layout as a tmux descriptor",
	Long: `Print the current geometry of a window as a tmux-style layout
descriptor, suitable for "tmux select-layout".

With --target the calculated target layout is encoded instead of the
current one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		adapter, err := getAdapter()
		if err != nil {
			return err
		}
		panes, err := adapter.Panes(ctx, flagLayoutWindow)
		if err != nil {
			return fmt.Errorf("listing panes: %w", err)
		}
		if len(panes) == 0 {
			return model.ErrNoPanes
		}
		width, height, err := adapter.WindowSize(ctx, flagLayoutWindow)
		if err != nil {
			return fmt.Errorf("reading window size: %w", err)
		}

		var wl model.WindowLayout
		if flagLayoutTarget {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			strategy, err := model.ParseStrategy(cfg.Strategy)
			if err != nil {
				return err
			}
			layoutType, err := model.ParseLayoutType(cfg.LayoutType)
			if err != nil {
				return err
			}
			a := analyzer.New()
			analyses := a.AnalyzePanes(panes)
			matrix := a.RelevanceMatrix(panes)
			calc := layout.NewCalculator(strategy)
			wl = calc.Calculate(panes, analyses, width, height, matrix, layoutType)
		} else {
			wl = model.WindowLayout{WindowWidth: width, WindowHeight: height}
			for _, p := range panes {
				wl.Panes = append(wl.Panes, model.PaneLayout{
					ID: p.ID, X: p.X, Y: p.Y, Width: p.Width, Height: p.Height,
				})
			}
		}

		fmt.Println(mux.EncodeLayout(wl))
		return nil
	},
}

func init() {
	layoutCmd.Flags().BoolVar(&flagLayoutTarget, "target", false, "encode the calculated target layout instead of the current one")
	layoutCmd.Flags().StringVar(&flagLayoutWindow, "window", "", "window to encode (default: current)")
	rootCmd.AddCommand(layoutCmd)
}
