package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// BatchWindow is the window size in a batch request.
type BatchWindow struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BatchPane is one pane record in a batch request. All fields except
// id and content are optional; ApplyDefaults fills the documented defaults.
type BatchPane struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Active  bool   `json:"active"`
	Title   string `json:"title"`
	Command string `json:"command"`
}

// BatchInput is the document accepted by the calculation-only entry points
// (CLI calculate/analyze and the MCP tools).
type BatchInput struct {
	Window BatchWindow `json:"window"`
	Panes  []BatchPane `json:"panes"`
}

// DecodeBatchInput reads and validates a batch request. Malformed JSON is
// reported as a structured error with no partial computation; an empty pane
// list maps to ErrNoPanes.
func DecodeBatchInput(r io.Reader) (*BatchInput, error) {
	var in BatchInput
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("invalid batch input: %w", err)
	}
	in.ApplyDefaults()
	if len(in.Panes) == 0 {
		return nil, ErrNoPanes
	}
	return &in, nil
}

// ApplyDefaults fills omitted fields: window 200×50, pane 80×24 at (0,0).
func (in *BatchInput) ApplyDefaults() {
	if in.Window.Width <= 0 {
		in.Window.Width = 200
	}
	if in.Window.Height <= 0 {
		in.Window.Height = 50
	}
	for i := range in.Panes {
		if in.Panes[i].Width <= 0 {
			in.Panes[i].Width = 80
		}
		if in.Panes[i].Height <= 0 {
			in.Panes[i].Height = 24
		}
	}
}

// Snapshots converts the batch panes to PaneSnapshots.
func (in *BatchInput) Snapshots() []PaneSnapshot {
	panes := make([]PaneSnapshot, 0, len(in.Panes))
	for _, p := range in.Panes {
		panes = append(panes, PaneSnapshot{
			ID:      p.ID,
			Content: p.Content,
			Width:   p.Width,
			Height:  p.Height,
			X:       p.X,
			Y:       p.Y,
			Active:  p.Active,
			Title:   p.Title,
			Command: p.Command,
		})
	}
	return panes
}
