// Package transform diffs a live pane arrangement against a target layout
// and produces the ordered operation plan that moves one toward the other.
package transform

import (
	"context"
	"sort"

	"github.com/timvw/panefit/internal/model"
)

// Executor is the adapter capability set needed to run a plan.
type Executor interface {
	Panes(ctx context.Context, window string) ([]model.PaneSnapshot, error)
	ResizePane(ctx context.Context, paneID string, width, height int) error
	SwapPanes(ctx context.Context, a, b string) error
	MovePane(ctx context.Context, paneID, window string, vertical bool) error
	BreakPane(ctx context.Context, paneID, windowName string) (string, error)
	JoinPane(ctx context.Context, paneID, targetPane string, vertical, before bool) error
}

// Plan computes the steps that reorder and resize the current panes into
// the target layout.
//
// Both orderings are reading order, sorted by (y, x) ascending; the layout
// calculator places more important panes earlier, so target order encodes
// an importance ranking. A single greedy left-to-right pass emits one swap
// per misplaced position, recording the two pane ids actually exchanged.
// Target panes absent from the current window are skipped. Replanning an
// already-matching arrangement yields zero swaps.
//
// One resize step is appended per target pane regardless of whether its
// size changed; Execute filters unchanged dimensions against fresh state.
func Plan(current []model.PaneSnapshot, target model.WindowLayout) model.TransformPlan {
	plan := model.TransformPlan{Target: target}
	if len(current) == 0 {
		return plan
	}

	currentSorted := make([]model.PaneSnapshot, len(current))
	copy(currentSorted, current)
	sort.SliceStable(currentSorted, func(i, j int) bool {
		if currentSorted[i].Y != currentSorted[j].Y {
			return currentSorted[i].Y < currentSorted[j].Y
		}
		return currentSorted[i].X < currentSorted[j].X
	})
	working := make([]string, len(currentSorted))
	for i, p := range currentSorted {
		working[i] = p.ID
	}

	targetSorted := make([]model.PaneLayout, len(target.Panes))
	copy(targetSorted, target.Panes)
	sort.SliceStable(targetSorted, func(i, j int) bool {
		if targetSorted[i].Y != targetSorted[j].Y {
			return targetSorted[i].Y < targetSorted[j].Y
		}
		return targetSorted[i].X < targetSorted[j].X
	})

	for i, tp := range targetSorted {
		if i >= len(working) {
			break
		}
		if working[i] == tp.ID {
			continue
		}
		j := indexOf(working, tp.ID)
		if j < 0 {
			// Pane no longer exists in this window.
			continue
		}
		occupant := working[i]
		working[i], working[j] = working[j], working[i]
		plan.Steps = append(plan.Steps, model.TransformStep{
			Op:       model.OpSwap,
			PaneID:   occupant,
			TargetID: tp.ID,
		})
	}

	for _, tp := range target.Panes {
		plan.Steps = append(plan.Steps, model.TransformStep{
			Op:     model.OpResize,
			PaneID: tp.ID,
			Width:  tp.Width,
			Height: tp.Height,
		})
	}

	return plan
}

// Execute runs a plan against the adapter, best effort. Swaps run first in
// recorded order since each one shifts the arrangement the next depends
// on. Pane dimensions are then re-fetched and resizes run bottom-up by
// target y, skipping dimensions that already match, so shrinking a pane
// never disturbs a sibling that was already resized. Join, break, and move
// steps run last.
//
// A failed step is recorded and the rest of the plan still runs. The bool
// result is false if any step failed.
func Execute(ctx context.Context, plan model.TransformPlan, exec Executor, window string) ([]model.StepResult, bool) {
	var results []model.StepResult
	ok := true

	record := func(step model.TransformStep, err error) {
		results = append(results, model.StepResult{Step: step, Err: err})
		if err != nil {
			ok = false
		}
	}

	for _, step := range plan.Steps {
		if step.Op != model.OpSwap {
			continue
		}
		record(step, exec.SwapPanes(ctx, step.PaneID, step.TargetID))
	}

	current := map[string]model.PaneSnapshot{}
	if panes, err := exec.Panes(ctx, window); err == nil {
		for _, p := range panes {
			current[p.ID] = p
		}
	}

	var resizes []model.TransformStep
	for _, step := range plan.Steps {
		if step.Op == model.OpResize {
			resizes = append(resizes, step)
		}
	}
	targetY := map[string]int{}
	for _, p := range plan.Target.Panes {
		targetY[p.ID] = p.Y
	}
	sort.SliceStable(resizes, func(i, j int) bool {
		return targetY[resizes[i].PaneID] > targetY[resizes[j].PaneID]
	})

	for _, step := range resizes {
		width, height := step.Width, step.Height
		if p, known := current[step.PaneID]; known {
			if width == p.Width {
				width = 0
			}
			if height == p.Height {
				height = 0
			}
		}
		if width == 0 && height == 0 {
			continue
		}
		record(step, exec.ResizePane(ctx, step.PaneID, width, height))
	}

	for _, step := range plan.Steps {
		switch step.Op {
		case model.OpJoin:
			record(step, exec.JoinPane(ctx, step.PaneID, step.TargetID, step.Vertical, step.Before))
		case model.OpBreak:
			_, err := exec.BreakPane(ctx, step.PaneID, step.NewWindowName)
			record(step, err)
		case model.OpMove:
			record(step, exec.MovePane(ctx, step.PaneID, step.TargetID, step.Vertical))
		}
	}

	return results, ok
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
