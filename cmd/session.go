package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/session"
)

var flagSessionApply bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Cross-window session optimization",
	Long: `Inspect and reorganize panes across all windows of a session:
group related panes together, pull a pane's relatives next to it, and
park inactive panes in a dedicated window.

All subcommands are dry runs by default; pass --apply to move panes.`,
}

var sessionAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Suggest pane groupings across the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := newSessionOptimizer()
		if err != nil {
			return err
		}
		analysis, err := opt.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(analysis)
	},
}

var sessionOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Move related panes into shared windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := newSessionOptimizer()
		if err != nil {
			return err
		}
		result, err := opt.Optimize(cmd.Context(), !flagSessionApply)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var sessionConsolidateCmd = &cobra.Command{
	Use:   "consolidate <pane-id>",
	Short: "Pull panes related to the given pane into its window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := newSessionOptimizer()
		if err != nil {
			return err
		}
		result, err := opt.ConsolidateRelated(cmd.Context(), args[0], !flagSessionApply)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var sessionParkCmd = &cobra.Command{
	Use:   "park",
	Short: "Move inactive panes into a parking window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opt, err := newSessionOptimizer()
		if err != nil {
			return err
		}
		result, err := opt.ParkInactive(cmd.Context(), cfg.ParkWindowName, !flagSessionApply)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

// newSessionOptimizer builds an optimizer with the configured thresholds.
func newSessionOptimizer() (*session.Optimizer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	adapter, err := getAdapter()
	if err != nil {
		return nil, err
	}
	opt := session.NewOptimizer(adapter, analyzer.New())
	if cfg.RelevanceThreshold > 0 {
		opt.RelevanceThreshold = cfg.RelevanceThreshold
	}
	if cfg.ImportanceThreshold > 0 {
		opt.ImportanceThreshold = cfg.ImportanceThreshold
	}
	return opt, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	sessionCmd.PersistentFlags().BoolVar(&flagSessionApply, "apply", false, "apply the moves instead of printing a dry run")
	sessionCmd.AddCommand(sessionAnalyzeCmd)
	sessionCmd.AddCommand(sessionOptimizeCmd)
	sessionCmd.AddCommand(sessionConsolidateCmd)
	sessionCmd.AddCommand(sessionParkCmd)
	rootCmd.AddCommand(sessionCmd)
}
