package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
)

var (
	flagAnalyzeStdin     bool
	flagAnalyzeRelevance bool
	flagAnalyzeWindow    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score pane content without touching the layout",
	Long: `Analyze pane content and print the derived metrics as JSON.

By default the panes of the current window are captured live. With
--stdin a batch document is read instead:

  {"window": {"width": 200, "height": 50},
   "panes": [{"id": "%1", "content": "..."}, ...]}

With --relevance the pairwise relevance results are included. With
--llm an LLM judgment is blended into the heuristic scores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var panes []model.PaneSnapshot
		if flagAnalyzeStdin {
			in, err := model.DecodeBatchInput(os.Stdin)
			if err != nil {
				return err
			}
			panes = in.Snapshots()
		} else {
			adapter, err := getAdapter()
			if err != nil {
				return err
			}
			panes, err = adapter.Panes(ctx, flagAnalyzeWindow)
			if err != nil {
				return fmt.Errorf("listing panes: %w", err)
			}
			if len(panes) == 0 {
				return model.ErrNoPanes
			}
		}

		a := analyzer.New()
		analyses := a.AnalyzePanes(panes)

		llmScored := 0
		blender, err := newBlender(cfg)
		if err != nil {
			return err
		}
		if blender != nil {
			llmScored = blender.Apply(ctx, panes, analyses)
		}

		out := struct {
			Panes     []model.AnalysisResult  `json:"panes"`
			Relevance []model.RelevanceResult `json:"relevance,omitempty"`
			LLMScored int                     `json:"llm_scored,omitempty"`
		}{LLMScored: llmScored}

		// Keep the capture order, not map order.
		for _, p := range panes {
			out.Panes = append(out.Panes, analyses[p.ID])
		}

		if flagAnalyzeRelevance {
			matrix := a.RelevanceMatrix(panes)
			for i := 0; i < len(panes); i++ {
				for j := i + 1; j < len(panes); j++ {
					if r, ok := matrix.Get(panes[i].ID, panes[j].ID); ok {
						out.Relevance = append(out.Relevance, r)
					}
				}
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagAnalyzeStdin, "stdin", false, "read a batch document from stdin instead of capturing live panes")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeRelevance, "relevance", false, "include pairwise relevance results")
	analyzeCmd.Flags().StringVar(&flagAnalyzeWindow, "window", "", "window to analyze (default: current)")
	rootCmd.AddCommand(analyzeCmd)
}
