package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/events"
	telem "github.com/timvw/panefit/internal/otel"
	"github.com/timvw/panefit/internal/watch"
)

var (
	flagNoEmbed     bool
	flagTheme       string
	flagEventSocket string
	flagAutoApply   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI that continuously rebalances the window",
	Long: `Launch an interactive terminal UI showing a live score table over the
current window's panes. The layout is recalculated on a timer and on
pane-activity events from shell hooks; press Enter to apply, or turn
on auto-apply to keep the window balanced hands-free.

If not already running inside tmux, watch re-launches itself in a new
tmux session. Use --no-embed to disable this behavior.

Configuration is loaded from .panefit.yaml or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&flagNoEmbed, "no-embed", false,
		"Do not auto-embed in a tmux session")
	watchCmd.Flags().StringVar(&flagTheme, "theme", "dark",
		"Color theme: dark, light")
	watchCmd.Flags().StringVar(&flagEventSocket, "event-socket", "",
		"Unix datagram socket path for hook events")
	watchCmd.Flags().BoolVar(&flagAutoApply, "auto", false,
		"Apply the calculated layout on every cycle")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command) error {
	// Reflowing needs a window to reflow, so make sure one exists.
	if !flagNoEmbed {
		autoEmbedInTmux()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // stops the event collector when the TUI exits

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}

	adapter, err := getAdapter()
	if err != nil {
		return fmt.Errorf("no supported terminal multiplexer found: %w", err)
	}

	blender, err := newBlender(cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, adapter, blender)
	if err != nil {
		return err
	}
	if tel != nil {
		engine.Metrics = tel.Metrics
	}

	// Event collector: shell hooks send pane-activity datagrams that
	// trigger an immediate rescan.
	socketPath := flagEventSocket
	if socketPath == "" {
		socketPath = events.DefaultSocketPath()
	}
	eventStore := events.NewStore(3 * time.Minute)
	collector := events.NewCollector(eventStore, socketPath)

	eventCh := make(chan events.Event, 16)
	collector.OnEvent = func(e events.Event) {
		select {
		case eventCh <- e:
		default:
			// TUI is busy; the pending event already forces a rescan.
		}
	}
	if err := collector.Start(ctx); err != nil {
		return fmt.Errorf("hook collector: %w", err)
	}
	fmt.Fprintf(os.Stderr, "hook collector: listening on %s\n", collector.SocketPath())

	tui := &watch.TUI{
		Engine:          engine,
		RefreshInterval: cfg.RefreshDuration,
		AutoApply:       flagAutoApply,
		EventCh:         eventCh,
		Events:          eventStore,
		Theme:           flagTheme,
	}
	return tui.Run(ctx)
}

// autoEmbedInTmux re-launches the current process inside a tmux session
// when not already running under tmux. On success, the current process
// is replaced (syscall.Exec) and this function never returns. On failure,
// it prints a warning and returns so the command can fail normally.
func autoEmbedInTmux() {
	if os.Getenv("TMUX") != "" {
		return // already inside tmux
	}

	tmuxPath, err := exec.LookPath("tmux")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: tmux not found in PATH\n")
		return
	}

	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not resolve executable path: %v\n", err)
		return
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "/"
	}

	// Pick a session name, avoiding conflicts with existing sessions.
	sessionName := "panefit-watch"
	hasSession := exec.Command(tmuxPath, "has-session", "-t", sessionName)
	if hasSession.Run() == nil {
		// Session exists, let tmux auto-name instead
		sessionName = ""
	}

	// Build: tmux new-session [-s name] -c <wd> <exe> <args...>
	tmuxArgs := []string{"tmux", "new-session"}
	if sessionName != "" {
		tmuxArgs = append(tmuxArgs, "-s", sessionName)
	}
	tmuxArgs = append(tmuxArgs, "-c", wd, exe)
	tmuxArgs = append(tmuxArgs, os.Args[1:]...)

	if sessionName != "" {
		fmt.Fprintf(os.Stderr, "not inside tmux, auto-embedding in tmux session %q\n", sessionName)
	} else {
		fmt.Fprintf(os.Stderr, "not inside tmux, auto-embedding in a new tmux session\n")
	}

	// Replace this process with tmux. On success, this never returns.
	if err := syscall.Exec(tmuxPath, tmuxArgs, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not auto-embed in tmux: %v\n", err)
		fmt.Fprintf(os.Stderr, "use --no-embed to suppress this warning\n")
	}
}
