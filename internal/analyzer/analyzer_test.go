package analyzer

import (
	"math"
	"strings"
	"testing"

	"github.com/timvw/panefit/internal/model"
)

func TestEntropyProperties(t *testing.T) {
	if got := entropyRunes([]rune("aaaaaaaa")); got != 0 {
		t.Errorf("entropy of single repeated symbol = %v, want 0", got)
	}

	// N distinct equally frequent symbols yield log2(N).
	if got, want := entropyRunes([]rune("abcd")), 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("entropy of 4 distinct symbols = %v, want %v", got, want)
	}
	if got, want := entropyStrings([]string{"x", "y"}), 1.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("entropy of 2 distinct tokens = %v, want %v", got, want)
	}
	if got := entropyRunes(nil); got != 0 {
		t.Errorf("entropy of empty input = %v, want 0", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed case and punctuation", "Hello, World! Foo-bar", []string{"hello", "world", "foo", "bar"}},
		{"drops single chars", "a b cd e fg", []string{"cd", "fg"}},
		{"empty", "", nil},
		{"only punctuation", "!!! ??? ...", nil},
		{"cyrillic", "Привет, мир!", []string{"привет", "мир"}},
		{"accented latin", "café crème", []string{"café", "crème"}},
		{"cjk with rune length filter", "你好 世界 一", []string{"你好", "世界"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	texts := []string{
		"",
		"x",
		strings.Repeat("$ git status\n", 80),
		strings.Repeat("aaaa ", 1000),
		"func main() { return fmt.Errorf(\"error: %w\", err) }",
		strings.Repeat("the quick brown fox jumps over the lazy dog ", 50),
	}

	a := New()
	for _, text := range texts {
		r := a.Analyze(text, "")
		for name, v := range map[string]float64{
			"surprisal":       r.SurprisalScore,
			"activity":        r.RecentActivityScore,
			"importance":      r.ImportanceScore,
			"interestingness": r.InterestingnessScore,
		} {
			if v < 0 || v > 1 {
				t.Errorf("text %.20q: %s score %v out of [0,1]", text, name, v)
			}
		}
		if r.CharEntropy < 0 || r.WordEntropy < 0 {
			t.Errorf("text %.20q: negative entropy", text)
		}
	}
}

func TestAnalyzeEmptyContent(t *testing.T) {
	a := New()
	r := a.Analyze("", "%1")
	if r.ImportanceScore != 0 || r.InterestingnessScore != 0 {
		t.Errorf("empty content scored %v/%v, want 0/0", r.ImportanceScore, r.InterestingnessScore)
	}
	if r.ContentHash == "" {
		t.Error("empty content must still hash")
	}
}

func TestContentHashStable(t *testing.T) {
	h1 := ContentHash("hello world")
	h2 := ContentHash("hello world")
	if h1 != h2 {
		t.Errorf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16", len(h1))
	}
	if h1 == ContentHash("hello worlD") {
		t.Error("distinct content produced identical hash")
	}
}

func TestChangeDetection(t *testing.T) {
	a := New()

	// First sighting: no prior hash, no change score.
	r := a.Analyze("some initial content here", "%5")
	if r.ImportanceScore <= 0 {
		t.Fatal("expected nonzero importance")
	}
	base := r.ImportanceScore

	// Same content again: still no change contribution.
	r = a.Analyze("some initial content here", "%5")
	if r.ImportanceScore != base {
		t.Errorf("unchanged content importance moved from %v to %v", base, r.ImportanceScore)
	}

	// Different content: change contributes 0.15 * 0.3 to importance.
	r = a.Analyze("completely different content now", "%5")
	r2 := a.Analyze("completely different content now", "%5")
	if r.ImportanceScore <= r2.ImportanceScore {
		t.Errorf("changed content %v should outscore settled content %v", r.ImportanceScore, r2.ImportanceScore)
	}
}

func TestHistoryBounded(t *testing.T) {
	a := New()
	for i := 0; i < 30; i++ {
		a.Analyze(strings.Repeat("word ", i+2), "%9")
	}
	a.mu.Lock()
	n := len(a.history["%9"])
	a.mu.Unlock()
	if n > historyLimit {
		t.Errorf("history holds %d hashes, want at most %d", n, historyLimit)
	}
}

func TestSurprisalNeutralOnShortText(t *testing.T) {
	a := New()
	// Three tokens cannot form a single 3-gram context plus continuation.
	if got := a.surprisal([]string{"one", "two", "three"}); got != 0.5 {
		t.Errorf("short text surprisal = %v, want neutral 0.5", got)
	}
}

func TestDetectActivity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		min  float64
		max  float64
	}{
		{"blank", "\n\n\n", 0, 0},
		{"single prompt line", "$ ls -la", 0.12, 0.12},
		{"saturates", strings.Repeat("$ git status\n", 40), 1, 1},
		{"plain prose", "just some text\nmore text", 0.04, 0.04},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectActivity(tt.in)
			if got < tt.min-1e-9 || got > tt.max+1e-9 {
				t.Errorf("detectActivity = %v, want in [%v,%v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestActiveShellOutscoresIdlePane(t *testing.T) {
	a := New()
	busy := a.Analyze(strings.Repeat("$ git status\n", 80), "A")
	idle := a.Analyze("\n", "B")

	if busy.RecentActivityScore <= idle.RecentActivityScore {
		t.Errorf("activity: busy %v <= idle %v", busy.RecentActivityScore, idle.RecentActivityScore)
	}
	if busy.ImportanceScore <= idle.ImportanceScore {
		t.Errorf("importance: busy %v <= idle %v", busy.ImportanceScore, idle.ImportanceScore)
	}
}

func TestAnalyzeNonASCIIContent(t *testing.T) {
	a := New()
	r := a.Analyze(strings.Repeat("привет мир это длинный вывод команды\n", 10), "%7")
	if r.WordCount == 0 {
		t.Fatal("non-ASCII content tokenized to nothing")
	}
	if r.ImportanceScore <= 0 || r.InterestingnessScore <= 0 {
		t.Errorf("non-ASCII content scored %v/%v, want > 0",
			r.ImportanceScore, r.InterestingnessScore)
	}
	if r.CharEntropy <= 0 {
		t.Errorf("char entropy = %v, want > 0", r.CharEntropy)
	}
}

func TestAnalyzePanes(t *testing.T) {
	a := New()
	panes := []model.PaneSnapshot{
		{ID: "%1", Content: "$ make build\ncompiling..."},
		{ID: "%2", Content: "idle"},
	}
	results := a.AnalyzePanes(panes)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, p := range panes {
		if results[p.ID].PaneID != p.ID {
			t.Errorf("result for %s has pane id %q", p.ID, results[p.ID].PaneID)
		}
	}
}
