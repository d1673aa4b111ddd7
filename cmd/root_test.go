package cmd

import (
	"os"
	"testing"

	"github.com/timvw/panefit/internal/mux"
)

func TestGetAdapterAppliesHistoryLines(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".panefit.yaml", []byte("history_lines: 55\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flagMux = "tmux"
	defer func() { flagMux = "" }()

	adapter, err := getAdapter()
	if err != nil {
		t.Fatalf("getAdapter() error: %v", err)
	}
	tm, ok := adapter.(*mux.Tmux)
	if !ok {
		t.Fatalf("adapter is %T, want *mux.Tmux", adapter)
	}
	if tm.HistoryLines != 55 {
		t.Errorf("HistoryLines = %d, want 55 from config", tm.HistoryLines)
	}
}
