package mux

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/timvw/panefit/internal/model"
)

// Detect auto-detects the active terminal multiplexer. It checks
// environment variables first, then falls back to probing for a running
// tmux server.
func Detect() (Adapter, error) {
	if os.Getenv("TMUX") != "" {
		return NewTmux(), nil
	}

	if tmuxPath, err := exec.LookPath("tmux"); err == nil && tmuxPath != "" {
		cmd := exec.Command("tmux", "list-sessions")
		if err := cmd.Run(); err == nil {
			return NewTmux(), nil
		}
	}

	return nil, fmt.Errorf("%w: no terminal multiplexer detected (set $TMUX or install tmux)", model.ErrAdapterUnavailable)
}

// FromName creates an Adapter by name. "auto" runs detection.
func FromName(name string) (Adapter, error) {
	switch name {
	case "", "auto":
		return Detect()
	case "tmux":
		return NewTmux(), nil
	case "memory":
		return NewMemory(200, 50, nil), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %q (supported: tmux, memory, auto)", name)
	}
}
