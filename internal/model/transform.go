package model

import "fmt"

// StepOp identifies the kind of a transform step.
type StepOp string

const (
	OpSwap   StepOp = "swap"
	OpResize StepOp = "resize"
	OpMove   StepOp = "move"
	OpJoin   StepOp = "join"
	OpBreak  StepOp = "break"
)

// TransformStep is one operation in a transform plan. Which fields are
// meaningful depends on Op:
//
//	swap:   PaneID, TargetID (the two panes exchanged)
//	resize: PaneID, Width, Height (0 leaves the dimension unchanged)
//	move:   PaneID, TargetID (target window/container), Vertical
//	join:   PaneID, TargetID (target pane), Vertical, Before
//	break:  PaneID, NewWindowName
type TransformStep struct {
	Op            StepOp `json:"op"`
	PaneID        string `json:"pane_id"`
	TargetID      string `json:"target_id,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Vertical      bool   `json:"vertical,omitempty"`
	Before        bool   `json:"before,omitempty"`
	NewWindowName string `json:"new_window_name,omitempty"`
}

// String renders a step in the compact form used by reflow summaries.
func (s TransformStep) String() string {
	switch s.Op {
	case OpSwap:
		return fmt.Sprintf("swap(%s,%s)", s.PaneID, s.TargetID)
	case OpResize:
		return fmt.Sprintf("resize(%s,%dx%d)", s.PaneID, s.Width, s.Height)
	case OpMove:
		return fmt.Sprintf("move(%s,%s)", s.PaneID, s.TargetID)
	case OpJoin:
		return fmt.Sprintf("join(%s,%s)", s.PaneID, s.TargetID)
	case OpBreak:
		return fmt.Sprintf("break(%s,%s)", s.PaneID, s.NewWindowName)
	default:
		return string(s.Op)
	}
}

// TransformPlan is the ordered operation sequence that moves a window
// toward Target. Built fresh per planning call and consumed once.
type TransformPlan struct {
	Steps  []TransformStep `json:"steps"`
	Target WindowLayout    `json:"target"`
}

// SwapCount returns the number of swap steps in the plan.
func (p *TransformPlan) SwapCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Op == OpSwap {
			n++
		}
	}
	return n
}

// StepResult records the outcome of executing one step.
type StepResult struct {
	Step TransformStep `json:"step"`
	Err  error         `json:"-"`
}
