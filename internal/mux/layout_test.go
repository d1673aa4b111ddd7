package mux

import (
	"regexp"
	"strings"
	"testing"

	"github.com/timvw/panefit/internal/model"
)

func TestLayoutChecksumDeterministic(t *testing.T) {
	body := "80x24,0,0,1,80x24,80,0,2"
	first := LayoutChecksum(body)

	if !regexp.MustCompile(`^[0-9a-f]{4}$`).MatchString(first) {
		t.Fatalf("checksum %q is not 4 lowercase hex digits", first)
	}
	for i := 0; i < 10; i++ {
		if got := LayoutChecksum(body); got != first {
			t.Fatalf("checksum unstable: %q vs %q", got, first)
		}
	}
	if LayoutChecksum("80x24,0,0,1") == first {
		t.Error("different bodies produced identical checksum")
	}
}

func TestEncodeLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout model.WindowLayout
		want   string
	}{
		{
			name:   "empty",
			layout: model.WindowLayout{WindowWidth: 80, WindowHeight: 24},
			want:   "80x24,0,0",
		},
		{
			name: "single pane",
			layout: model.WindowLayout{
				WindowWidth: 80, WindowHeight: 24,
				Panes: []model.PaneLayout{{ID: "%3", X: 0, Y: 0, Width: 80, Height: 24}},
			},
			want: "80x24,0,0,3",
		},
		{
			name: "horizontal row",
			layout: model.WindowLayout{
				WindowWidth: 160, WindowHeight: 24,
				Panes: []model.PaneLayout{
					{ID: "%1", X: 0, Y: 0, Width: 80, Height: 24},
					{ID: "%2", X: 80, Y: 0, Width: 80, Height: 24},
				},
			},
			want: "160x24,0,0{80x24,0,0,1,80x24,80,0,2}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeLayout(tt.layout); got != tt.want {
				t.Errorf("EncodeLayout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeLayoutMixedCarriesChecksum(t *testing.T) {
	layout := model.WindowLayout{
		WindowWidth: 160, WindowHeight: 48,
		Panes: []model.PaneLayout{
			{ID: "%1", X: 0, Y: 0, Width: 98, Height: 48},
			{ID: "%2", X: 98, Y: 0, Width: 62, Height: 24},
			{ID: "%3", X: 98, Y: 24, Width: 62, Height: 24},
		},
	}

	got := EncodeLayout(layout)
	parts := strings.SplitN(got, ",", 2)
	if !regexp.MustCompile(`^[0-9a-f]{4}$`).MatchString(parts[0]) {
		t.Fatalf("mixed layout %q lacks a checksum prefix", got)
	}
	if !strings.Contains(got, "{") || !strings.HasSuffix(got, "}") {
		t.Errorf("mixed layout %q lacks brace-delimited body", got)
	}
}
