package mux

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/timvw/panefit/internal/model"
)

// Memory is an in-memory Adapter for batch entry points and tests. It
// models a single session of one or more windows and applies geometry
// mutations to its own state.
type Memory struct {
	mu         sync.Mutex
	width      int
	height     int
	current    string
	windows    map[string]string // window id -> name
	paneWindow map[string]string // pane id -> window id
	panes      []model.PaneSnapshot
	nextWindow int
}

// NewMemory creates a memory adapter with one window holding the given
// panes.
func NewMemory(width, height int, panes []model.PaneSnapshot) *Memory {
	m := &Memory{
		width:      width,
		height:     height,
		current:    "@0",
		windows:    map[string]string{"@0": "main"},
		paneWindow: make(map[string]string),
		nextWindow: 1,
	}
	m.panes = append(m.panes, panes...)
	for _, p := range panes {
		m.paneWindow[p.ID] = m.current
	}
	return m
}

// Name returns "memory".
func (m *Memory) Name() string {
	return "memory"
}

// IsAvailable always reports true.
func (m *Memory) IsAvailable(ctx context.Context) bool {
	return true
}

// SetContent replaces a pane's content.
func (m *Memory) SetContent(paneID, content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.panes {
		if m.panes[i].ID == paneID {
			m.panes[i].Content = content
			return true
		}
	}
	return false
}

// Panes returns the panes of one window. An empty window targets the
// current window.
func (m *Memory) Panes(ctx context.Context, window string) ([]model.PaneSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if window == "" {
		window = m.current
	}
	var out []model.PaneSnapshot
	for _, p := range m.panes {
		if m.paneWindow[p.ID] == window {
			out = append(out, p)
		}
	}
	return out, nil
}

// AllPanes returns every pane with its window id encoded into the title.
func (m *Memory) AllPanes(ctx context.Context, session string) ([]model.PaneSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PaneSnapshot, 0, len(m.panes))
	for _, p := range m.panes {
		p.Title = m.paneWindow[p.ID] + ":" + p.Title
		out = append(out, p)
	}
	return out, nil
}

// Windows lists the windows and their pane counts.
func (m *Memory) Windows(ctx context.Context, session string) ([]WindowInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, w := range m.paneWindow {
		counts[w]++
	}
	var out []WindowInfo
	for id, name := range m.windows {
		out = append(out, WindowInfo{
			ID:        id,
			Name:      name,
			Active:    id == m.current,
			PaneCount: counts[id],
		})
	}
	return out, nil
}

// WindowSize returns the configured window dimensions.
func (m *Memory) WindowSize(ctx context.Context, window string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height, nil
}

// ResizePane sets a pane's width and/or height. Zero leaves the dimension
// unchanged.
func (m *Memory) ResizePane(ctx context.Context, paneID string, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.panes {
		if m.panes[i].ID == paneID {
			if width > 0 {
				m.panes[i].Width = width
			}
			if height > 0 {
				m.panes[i].Height = height
			}
			return nil
		}
	}
	return fmt.Errorf("no such pane %q", paneID)
}

// SwapPanes exchanges the geometry of two panes, leaving content with its
// pane id. This mirrors swap-pane semantics where panes trade places.
func (m *Memory) SwapPanes(ctx context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ia, ib := -1, -1
	for i := range m.panes {
		switch m.panes[i].ID {
		case a:
			ia = i
		case b:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return fmt.Errorf("swap %q with %q: pane not found", a, b)
	}
	pa, pb := &m.panes[ia], &m.panes[ib]
	pa.X, pb.X = pb.X, pa.X
	pa.Y, pb.Y = pb.Y, pa.Y
	pa.Width, pb.Width = pb.Width, pa.Width
	pa.Height, pb.Height = pb.Height, pa.Height
	m.paneWindow[a], m.paneWindow[b] = m.paneWindow[b], m.paneWindow[a]
	return nil
}

// MovePane reassigns a pane to another window.
func (m *Memory) MovePane(ctx context.Context, paneID, window string, vertical bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paneWindow[paneID]; !ok {
		return fmt.Errorf("no such pane %q", paneID)
	}
	if _, ok := m.windows[window]; !ok {
		return fmt.Errorf("no such window %q", window)
	}
	m.paneWindow[paneID] = window
	return nil
}

// BreakPane moves a pane into a fresh window and returns the new window id.
func (m *Memory) BreakPane(ctx context.Context, paneID, windowName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paneWindow[paneID]; !ok {
		return "", fmt.Errorf("no such pane %q", paneID)
	}
	id := fmt.Sprintf("@%d", m.nextWindow)
	m.nextWindow++
	if windowName == "" {
		windowName = strings.TrimPrefix(id, "@")
	}
	m.windows[id] = windowName
	m.paneWindow[paneID] = id
	return id, nil
}

// JoinPane moves a pane into the target pane's window.
func (m *Memory) JoinPane(ctx context.Context, paneID, targetPane string, vertical, before bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.paneWindow[targetPane]
	if !ok {
		return fmt.Errorf("no such pane %q", targetPane)
	}
	if _, ok := m.paneWindow[paneID]; !ok {
		return fmt.Errorf("no such pane %q", paneID)
	}
	m.paneWindow[paneID] = w
	return nil
}

// ApplyLayout copies target geometry onto matching panes.
func (m *Memory) ApplyLayout(ctx context.Context, layout model.WindowLayout, window string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width = layout.WindowWidth
	m.height = layout.WindowHeight
	for _, target := range layout.Panes {
		for i := range m.panes {
			if m.panes[i].ID == target.ID {
				m.panes[i].X = target.X
				m.panes[i].Y = target.Y
				m.panes[i].Width = target.Width
				m.panes[i].Height = target.Height
				break
			}
		}
	}
	return nil
}
