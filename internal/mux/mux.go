// Package mux provides an abstraction over terminal multiplexers.
//
// Adapters are pure transport: they capture pane snapshots and apply
// geometry mutations without interpreting content. All scoring happens in
// the analyzer and the optional LLM scorer.
package mux

import (
	"context"

	"github.com/timvw/panefit/internal/model"
)

// WindowInfo describes one window of a session.
type WindowInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	PaneCount int    `json:"pane_count"`
}

// Adapter abstracts terminal multiplexer operations. Implementations exist
// for tmux and for an in-memory store used by the batch entry points and
// tests.
//
// All mutating calls are strictly sequential from the caller's point of
// view; an adapter is not required to be safe for concurrent mutation.
type Adapter interface {
	// Name returns the adapter name (e.g. "tmux", "memory").
	Name() string

	// IsAvailable reports whether the adapter can serve requests right now.
	// Callers fail fast on false before running any analysis.
	IsAvailable(ctx context.Context) bool

	// Panes returns the panes of one window, content included.
	// An empty window targets the current window.
	Panes(ctx context.Context, window string) ([]model.PaneSnapshot, error)

	// AllPanes returns every pane across all windows of a session. The
	// window id is encoded into each snapshot's title as "windowID:title".
	// An empty session targets the current session.
	AllPanes(ctx context.Context, session string) ([]model.PaneSnapshot, error)

	// Windows lists the windows of a session.
	Windows(ctx context.Context, session string) ([]WindowInfo, error)

	// WindowSize returns the window dimensions in cells.
	WindowSize(ctx context.Context, window string) (width, height int, err error)

	// ResizePane sets a pane's width and/or height. A zero dimension is
	// left unchanged.
	ResizePane(ctx context.Context, paneID string, width, height int) error

	// SwapPanes exchanges the positions of two panes.
	SwapPanes(ctx context.Context, a, b string) error

	// MovePane moves a pane into another window, splitting vertically or
	// horizontally at the destination.
	MovePane(ctx context.Context, paneID, window string, vertical bool) error

	// BreakPane moves a pane out into a new window and returns the new
	// window's id. windowName may be empty.
	BreakPane(ctx context.Context, paneID, windowName string) (string, error)

	// JoinPane moves a pane next to a target pane.
	JoinPane(ctx context.Context, paneID, targetPane string, vertical, before bool) error

	// ApplyLayout resizes panes directly to a target layout without
	// reordering. Reflow-style callers plan a transform instead.
	ApplyLayout(ctx context.Context, layout model.WindowLayout, window string) error
}
