// Package analyzer scores pane content for importance and interestingness.
//
// The scoring is purely lexical: Shannon entropy over characters and tokens,
// n-gram surprisal as an unpredictability proxy, and regex-based detection of
// recent shell activity. No content is interpreted beyond these statistics;
// semantic judgment is the optional LLM scorer's job.
package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/timvw/panefit/internal/model"
)

const (
	defaultNgramSize = 3
	historyLimit     = 10
	recentLineWindow = 20
)

// codeKeywords are tokens that indicate code or development activity.
var codeKeywords = map[string]struct{}{
	"function": {}, "def": {}, "class": {}, "import": {}, "from": {},
	"return": {}, "if": {}, "else": {}, "for": {}, "while": {}, "try": {},
	"except": {}, "catch": {}, "throw": {}, "async": {}, "await": {},
	"const": {}, "let": {}, "var": {}, "public": {}, "private": {},
	"static": {}, "void": {}, "int": {}, "string": {}, "bool": {},
	"true": {}, "false": {}, "null": {}, "none": {}, "self": {}, "this": {},
	"error": {}, "warning": {}, "debug": {}, "info": {}, "log": {},
	"test": {}, "spec": {}, "describe": {},
}

// activityPatterns match lines that indicate recent shell activity:
// prompts, package managers, VCS, container/build tools, interpreters.
var activityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\$\s`),
	regexp.MustCompile(`^>\s`),
	regexp.MustCompile(`^\[\d+\]`),
	regexp.MustCompile(`^npm\s`),
	regexp.MustCompile(`^yarn\s`),
	regexp.MustCompile(`^pnpm\s`),
	regexp.MustCompile(`^git\s`),
	regexp.MustCompile(`^docker\s`),
	regexp.MustCompile(`^kubectl\s`),
	regexp.MustCompile(`^python\s`),
	regexp.MustCompile(`^node\s`),
	regexp.MustCompile(`^ruby\s`),
	regexp.MustCompile(`^make\s`),
	regexp.MustCompile(`^cargo\s`),
	regexp.MustCompile(`^go\s`),
}

// nonWord strips punctuation while keeping letters and digits in any
// script; \w would be ASCII-only here and erase non-Latin text entirely.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Analyzer scores pane content. It retains a bounded per-pane content-hash
// history (last 10 hashes) for change detection; the history lives as long
// as the Analyzer instance, so callers construct one per session.
//
// Safe for concurrent use: panes are analyzed independently and the history
// map is mutex-protected.
type Analyzer struct {
	ngramSize int

	mu      sync.Mutex
	history map[string][]string
}

// New creates an Analyzer with the default n-gram context size (3).
func New() *Analyzer {
	return NewWithNgramSize(defaultNgramSize)
}

// NewWithNgramSize creates an Analyzer with a custom surprisal context size.
func NewWithNgramSize(n int) *Analyzer {
	if n < 1 {
		n = defaultNgramSize
	}
	return &Analyzer{
		ngramSize: n,
		history:   make(map[string][]string),
	}
}

// Analyze scores a single pane's content. When paneID is non-empty the new
// content hash is appended to that pane's bounded history, and the change
// score reflects whether the hash differs from the previously recorded one.
func (a *Analyzer) Analyze(content, paneID string) model.AnalysisResult {
	words := Tokenize(content)
	hash := ContentHash(content)

	if len(words) == 0 {
		a.recordHash(paneID, hash)
		return model.AnalysisResult{
			PaneID:      paneID,
			CharCount:   len(content),
			ContentHash: hash,
		}
	}

	chars := []rune(content)
	lines := strings.Split(strings.TrimSpace(content), "\n")

	charEntropy := entropyRunes(chars)
	wordEntropy := entropyStrings(words)

	wordCount := len(words)
	unique := make(map[string]struct{}, wordCount)
	totalLen := 0
	for _, w := range words {
		unique[w] = struct{}{}
		totalLen += len(w)
	}
	uniqueWordRatio := float64(len(unique)) / float64(wordCount)
	avgWordLength := float64(totalLen) / float64(wordCount)
	vocabularyRichness := float64(len(unique)) / math.Sqrt(float64(wordCount))

	activity := detectActivity(content)
	surprisal := a.surprisal(words)

	codeHits := 0
	for w := range unique {
		if _, ok := codeKeywords[w]; ok {
			codeHits++
		}
	}
	codeKeywordRatio := float64(codeHits) / float64(len(unique))

	changeScore := a.changeScore(paneID, hash)
	a.recordHash(paneID, hash)

	importance := math.Min(1.0,
		0.2*math.Min(1.0, float64(wordCount)/500)+
			0.2*activity+
			0.15*uniqueWordRatio+
			0.15*codeKeywordRatio+
			0.15*changeScore+
			0.15*math.Min(1.0, charEntropy/5.0))

	// Peak interestingness sits near 4 bits of character entropy; both
	// uniform noise and flat repetition fall away from it.
	entropyInterest := math.Max(0.0, 1.0-math.Abs(charEntropy-4.0)/4.0)
	interestingness := math.Min(1.0,
		0.25*surprisal+
			0.25*entropyInterest+
			0.25*vocabularyRichness/10.0+
			0.25*activity)

	return model.AnalysisResult{
		PaneID:               paneID,
		CharEntropy:          charEntropy,
		WordEntropy:          wordEntropy,
		WordCount:            wordCount,
		LineCount:            len(lines),
		CharCount:            len(content),
		UniqueWordRatio:      uniqueWordRatio,
		VocabularyRichness:   vocabularyRichness,
		AvgWordLength:        avgWordLength,
		SurprisalScore:       surprisal,
		RecentActivityScore:  activity,
		ImportanceScore:      importance,
		InterestingnessScore: interestingness,
		ContentHash:          hash,
	}
}

// AnalyzePane analyzes a snapshot.
func (a *Analyzer) AnalyzePane(pane model.PaneSnapshot) model.AnalysisResult {
	return a.Analyze(pane.Content, pane.ID)
}

// AnalyzePanes analyzes a batch and returns results keyed by pane id.
func (a *Analyzer) AnalyzePanes(panes []model.PaneSnapshot) map[string]model.AnalysisResult {
	results := make(map[string]model.AnalysisResult, len(panes))
	for _, p := range panes {
		results[p.ID] = a.AnalyzePane(p)
	}
	return results
}

// changeScore returns 0.3 when the pane's newest recorded hash differs from
// hash, 0 otherwise (including when the pane has no history yet).
func (a *Analyzer) changeScore(paneID, hash string) float64 {
	if paneID == "" {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.history[paneID]
	if len(h) > 0 && h[len(h)-1] != hash {
		return 0.3
	}
	return 0
}

func (a *Analyzer) recordHash(paneID, hash string) {
	if paneID == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	h := append(a.history[paneID], hash)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	a.history[paneID] = h
}

// surprisal averages the negative log2 probability of each observed token
// continuation under an n-gram model built over the same token stream,
// normalized by 10 and clamped to [0,1]. Texts too short to form a single
// context return a neutral 0.5.
func (a *Analyzer) surprisal(words []string) float64 {
	k := a.ngramSize
	if len(words) < k+1 {
		return 0.5
	}

	type dist struct {
		counts map[string]int
		total  int
	}
	contexts := make(map[string]*dist)
	for i := 0; i+k < len(words); i++ {
		ctx := strings.Join(words[i:i+k], "\x00")
		next := words[i+k]
		d, ok := contexts[ctx]
		if !ok {
			d = &dist{counts: make(map[string]int)}
			contexts[ctx] = d
		}
		d.counts[next]++
		d.total++
	}

	total := 0.0
	count := 0
	for i := 0; i+k < len(words); i++ {
		ctx := strings.Join(words[i:i+k], "\x00")
		d := contexts[ctx]
		if d == nil || d.total == 0 {
			continue
		}
		c := d.counts[words[i+k]]
		if c == 0 {
			c = 1
		}
		p := float64(c) / float64(d.total)
		total += -math.Log2(p)
		count++
	}
	if count == 0 {
		return 0.5
	}
	return math.Min(1.0, total/float64(count)/10.0)
}

// detectActivity scans the last 20 lines for shell-activity patterns
// (0.1 per matching line, one match counted per line) and adds 0.02 per
// non-empty recent line, clamped to [0,1].
func detectActivity(content string) float64 {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return 0
	}
	recent := lines
	if len(recent) > recentLineWindow {
		recent = recent[len(recent)-recentLineWindow:]
	}

	score := 0.0
	nonEmpty := 0
	for _, line := range recent {
		for _, re := range activityPatterns {
			if re.MatchString(line) {
				score += 0.1
				break
			}
		}
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	score += float64(nonEmpty) * 0.02
	return math.Min(1.0, score)
}

// Tokenize lower-cases text, strips non-word characters, splits on
// whitespace, and drops tokens of length <= 1 (in runes, so a two-rune
// CJK or Cyrillic token survives).
func Tokenize(text string) []string {
	text = nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(text)
	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// ContentHash returns a 16-hex-character digest for change detection.
// Truncated SHA-256; not used for integrity.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

// entropyRunes computes Shannon entropy (base 2) over rune frequencies.
func entropyRunes(items []rune) float64 {
	if len(items) == 0 {
		return 0
	}
	counts := make(map[rune]int, len(items))
	for _, r := range items {
		counts[r]++
	}
	h := 0.0
	total := float64(len(items))
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// entropyStrings computes Shannon entropy (base 2) over token frequencies.
func entropyStrings(items []string) float64 {
	if len(items) == 0 {
		return 0
	}
	counts := make(map[string]int, len(items))
	for _, s := range items {
		counts[s]++
	}
	h := 0.0
	total := float64(len(items))
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}
