package mux

import (
	"fmt"
	"strings"

	"github.com/timvw/panefit/internal/model"
)

// EncodeLayout renders a WindowLayout as a tmux layout descriptor.
//
// A lone pane encodes as "WxH,X,Y,paneNum". Multiple panes sharing a row or
// a column encode as a brace-delimited list of such triples. Genuinely
// mixed arrangements additionally carry a 4-hex-digit checksum prefix.
func EncodeLayout(layout model.WindowLayout) string {
	w, h := layout.WindowWidth, layout.WindowHeight

	if len(layout.Panes) == 0 {
		return fmt.Sprintf("%dx%d,0,0", w, h)
	}
	if len(layout.Panes) == 1 {
		return fmt.Sprintf("%dx%d,0,0,%s", w, h, paneNum(layout.Panes[0].ID))
	}

	cells := make([]string, 0, len(layout.Panes))
	sameX, sameY := true, true
	for i, p := range layout.Panes {
		cells = append(cells, fmt.Sprintf("%dx%d,%d,%d,%s", p.Width, p.Height, p.X, p.Y, paneNum(p.ID)))
		if i > 0 {
			sameX = sameX && p.X == layout.Panes[0].X
			sameY = sameY && p.Y == layout.Panes[0].Y
		}
	}

	inner := strings.Join(cells, ",")
	if sameX || sameY {
		return fmt.Sprintf("%dx%d,0,0{%s}", w, h, inner)
	}
	return fmt.Sprintf("%s,%dx%d,0,0{%s}", LayoutChecksum(inner), w, h, inner)
}

// LayoutChecksum computes the 16-bit rotating checksum tmux uses over a
// layout body, formatted as 4 lowercase hex digits.
func LayoutChecksum(body string) string {
	csum := 0
	for _, c := range []byte(body) {
		csum = ((csum >> 1) | ((csum & 1) << 15))
		csum = (csum + int(c)) & 0xffff
	}
	return fmt.Sprintf("%04x", csum)
}

func paneNum(id string) string {
	return strings.TrimPrefix(id, "%")
}
