package mux

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/timvw/panefit/internal/model"
)

const defaultHistoryLines = 100

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Tmux implements Adapter for tmux.
type Tmux struct {
	// HistoryLines is the number of scrollback lines captured per pane.
	HistoryLines int
}

// NewTmux creates a tmux adapter with the default capture history.
func NewTmux() *Tmux {
	return &Tmux{HistoryLines: defaultHistoryLines}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// IsAvailable reports whether a tmux server is reachable and we are
// attached to a session.
func (t *Tmux) IsAvailable(ctx context.Context) bool {
	out, err := t.run(ctx, "display-message", "-p", "#{session_name}")
	return err == nil && strings.TrimSpace(out) != ""
}

// Panes returns the panes of one window with captured content.
func (t *Tmux) Panes(ctx context.Context, window string) ([]model.PaneSnapshot, error) {
	format := "#{pane_id}|#{pane_width}|#{pane_height}|#{pane_top}|#{pane_left}|#{pane_active}|#{pane_title}|#{pane_current_command}"
	args := []string{"list-panes"}
	if window != "" {
		args = append(args, "-t", window)
	}
	args = append(args, "-F", format)

	out, err := t.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}

	var panes []model.PaneSnapshot
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 8)
		if len(parts) < 8 {
			continue
		}
		content, err := t.capture(ctx, parts[0])
		if err != nil {
			return nil, err
		}
		panes = append(panes, model.PaneSnapshot{
			ID:      parts[0],
			Content: content,
			Width:   atoi(parts[1]),
			Height:  atoi(parts[2]),
			Y:       atoi(parts[3]),
			X:       atoi(parts[4]),
			Active:  parts[5] == "1",
			Title:   parts[6],
			Command: parts[7],
		})
	}
	return panes, nil
}

// AllPanes returns every pane across all windows of a session. The window
// id rides in the title field as "windowID:title" so cross-window callers
// can group panes without a second round trip.
func (t *Tmux) AllPanes(ctx context.Context, session string) ([]model.PaneSnapshot, error) {
	format := "#{pane_id}|#{window_id}|#{pane_width}|#{pane_height}|#{pane_top}|#{pane_left}|#{pane_active}|#{pane_title}|#{pane_current_command}"
	args := []string{"list-panes", "-s"}
	if session != "" {
		args = append(args, "-t", session)
	}
	args = append(args, "-F", format)

	out, err := t.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes -s: %w", err)
	}

	var panes []model.PaneSnapshot
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 9)
		if len(parts) < 9 {
			continue
		}
		content, err := t.capture(ctx, parts[0])
		if err != nil {
			return nil, err
		}
		panes = append(panes, model.PaneSnapshot{
			ID:      parts[0],
			Content: content,
			Width:   atoi(parts[2]),
			Height:  atoi(parts[3]),
			Y:       atoi(parts[4]),
			X:       atoi(parts[5]),
			Active:  parts[6] == "1",
			Title:   parts[1] + ":" + parts[7],
			Command: parts[8],
		})
	}
	return panes, nil
}

// Windows lists the windows of a session.
func (t *Tmux) Windows(ctx context.Context, session string) ([]WindowInfo, error) {
	format := "#{window_id}|#{window_name}|#{window_active}|#{window_panes}"
	args := []string{"list-windows"}
	if session != "" {
		args = append(args, "-t", session)
	}
	args = append(args, "-F", format)

	out, err := t.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("tmux list-windows: %w", err)
	}

	var windows []WindowInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 4 {
			continue
		}
		windows = append(windows, WindowInfo{
			ID:        parts[0],
			Name:      parts[1],
			Active:    parts[2] == "1",
			PaneCount: atoi(parts[3]),
		})
	}
	return windows, nil
}

// WindowSize returns the window dimensions in cells.
func (t *Tmux) WindowSize(ctx context.Context, window string) (int, int, error) {
	args := []string{"display-message"}
	if window != "" {
		args = append(args, "-t", window)
	}
	args = append(args, "-p", "#{window_width}|#{window_height}")

	out, err := t.run(ctx, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("tmux display-message: %w", err)
	}
	parts := strings.SplitN(strings.TrimSpace(out), "|", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected window size output %q", out)
	}
	return atoi(parts[0]), atoi(parts[1]), nil
}

// ResizePane sets a pane's width and/or height. Zero leaves the dimension
// unchanged.
func (t *Tmux) ResizePane(ctx context.Context, paneID string, width, height int) error {
	if width > 0 {
		if _, err := t.run(ctx, "resize-pane", "-t", paneID, "-x", strconv.Itoa(width)); err != nil {
			return fmt.Errorf("tmux resize-pane -x: %w", err)
		}
	}
	if height > 0 {
		if _, err := t.run(ctx, "resize-pane", "-t", paneID, "-y", strconv.Itoa(height)); err != nil {
			return fmt.Errorf("tmux resize-pane -y: %w", err)
		}
	}
	return nil
}

// SwapPanes exchanges two panes, in the same window or across windows.
func (t *Tmux) SwapPanes(ctx context.Context, a, b string) error {
	if _, err := t.run(ctx, "swap-pane", "-s", a, "-t", b); err != nil {
		return fmt.Errorf("tmux swap-pane: %w", err)
	}
	return nil
}

// MovePane moves a pane into another window.
func (t *Tmux) MovePane(ctx context.Context, paneID, window string, vertical bool) error {
	direction := "-h"
	if vertical {
		direction = "-v"
	}
	if _, err := t.run(ctx, "join-pane", direction, "-s", paneID, "-t", window); err != nil {
		return fmt.Errorf("tmux join-pane: %w", err)
	}
	return nil
}

// BreakPane moves a pane out into a new window and returns the new
// window's id.
func (t *Tmux) BreakPane(ctx context.Context, paneID, windowName string) (string, error) {
	args := []string{"break-pane", "-s", paneID, "-P", "-F", "#{window_id}"}
	if windowName != "" {
		args = append(args, "-n", windowName)
	}
	out, err := t.run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("tmux break-pane: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// JoinPane moves a pane next to a target pane.
func (t *Tmux) JoinPane(ctx context.Context, paneID, targetPane string, vertical, before bool) error {
	args := []string{"join-pane"}
	if vertical {
		args = append(args, "-v")
	} else {
		args = append(args, "-h")
	}
	if before {
		args = append(args, "-b")
	}
	args = append(args, "-s", paneID, "-t", targetPane)
	if _, err := t.run(ctx, args...); err != nil {
		return fmt.Errorf("tmux join-pane: %w", err)
	}
	return nil
}

// ApplyLayout resizes every pane of the layout in place. Reordering is the
// transform planner's job.
func (t *Tmux) ApplyLayout(ctx context.Context, layout model.WindowLayout, window string) error {
	for _, p := range layout.Panes {
		if err := t.ResizePane(ctx, p.ID, p.Width, p.Height); err != nil {
			return err
		}
	}
	return nil
}

// CurrentSession returns the attached session name.
func (t *Tmux) CurrentSession(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CurrentWindow returns the attached window id.
func (t *Tmux) CurrentWindow(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{window_id}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// capture returns a pane's content including scrollback, with ANSI escape
// sequences stripped.
func (t *Tmux) capture(ctx context.Context, paneID string) (string, error) {
	history := t.HistoryLines
	if history <= 0 {
		history = defaultHistoryLines
	}
	out, err := t.run(ctx, "capture-pane", "-t", paneID, "-p", "-S", fmt.Sprintf("-%d", history))
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane -t %s: %w", paneID, err)
	}
	return ansiEscape.ReplaceAllString(out, ""), nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
