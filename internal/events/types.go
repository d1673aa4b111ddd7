// Package events receives pane-activity notifications over a unix datagram
// socket. Shell hooks and editor plugins send small JSON payloads when a
// pane produces output or needs attention, letting watch mode rescan
// immediately instead of waiting for the next refresh tick.
package events

import (
	"fmt"
	"strings"
	"time"
)

const (
	KindOutput    = "output"
	KindCommand   = "command"
	KindFocus     = "focus"
	KindResize    = "resize"
	KindAttention = "attention"
)

// Event is one pane-activity notification.
type Event struct {
	// Pane is the multiplexer pane id, e.g. "%3".
	Pane string `json:"pane"`
	// Kind classifies the activity.
	Kind string `json:"kind"`
	// Source names the emitting hook, e.g. "zsh-precmd".
	Source string    `json:"source,omitempty"`
	TS     time.Time `json:"ts"`
	// Message carries optional detail, e.g. the command that finished.
	Message string `json:"message,omitempty"`
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Pane) == "" {
		return fmt.Errorf("pane is required")
	}
	if !isValidKind(e.Kind) {
		return fmt.Errorf("invalid kind %q", e.Kind)
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// IsAttentionKind reports whether the event should pull focus to its pane
// rather than merely mark it active.
func IsAttentionKind(kind string) bool {
	return kind == KindAttention
}

func isValidKind(kind string) bool {
	switch kind {
	case KindOutput, KindCommand, KindFocus, KindResize, KindAttention:
		return true
	default:
		return false
	}
}
