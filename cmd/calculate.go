package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/layout"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

// calcPane mirrors one input pane augmented with its scores and target
// geometry.
type calcPane struct {
	ID              string  `json:"id"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Importance      float64 `json:"importance"`
	Interestingness float64 `json:"interestingness"`
	AreaRatio       float64 `json:"area_ratio"`
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate a target layout from a batch document",
	Long: `Read a batch document from stdin, score the panes, and print the
calculated layout as JSON. Nothing is applied; this is the pure
computation behind reflow, usable from scripts and other tools.

The output mirrors the input panes augmented with scores and the target
geometry, plus a tmux-style layout descriptor for the whole window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		in, err := model.DecodeBatchInput(os.Stdin)
		if err != nil {
			return err
		}
		panes := in.Snapshots()

		a := analyzer.New()
		analyses := a.AnalyzePanes(panes)
		matrix := a.RelevanceMatrix(panes)

		calc := layout.NewCalculator(strategy)
		if cfg.MinWidth > 0 {
			calc.MinWidth = cfg.MinWidth
		}
		if cfg.MinHeight > 0 {
			calc.MinHeight = cfg.MinHeight
		}
		target := calc.Calculate(panes, analyses, in.Window.Width, in.Window.Height, matrix, layoutType)

		out := struct {
			Window     model.BatchWindow `json:"window"`
			Strategy   model.Strategy    `json:"strategy"`
			LayoutType model.LayoutType  `json:"layout_type"`
			Panes      []calcPane        `json:"panes"`
			Descriptor string            `json:"descriptor"`
		}{
			Window:     in.Window,
			Strategy:   target.Strategy,
			LayoutType: layoutType,
			Descriptor: mux.EncodeLayout(target),
		}

		windowArea := float64(in.Window.Width * in.Window.Height)
		for _, p := range target.Panes {
			res := analyses[p.ID]
			out.Panes = append(out.Panes, calcPane{
				ID:              p.ID,
				X:               p.X,
				Y:               p.Y,
				Width:           p.Width,
				Height:          p.Height,
				Importance:      res.ImportanceScore,
				Interestingness: res.InterestingnessScore,
				AreaRatio:       float64(p.Area()) / windowArea,
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(calculateCmd)
}
