package analyzer

import (
	"sort"

	"github.com/timvw/panefit/internal/model"
)

const keywordTopN = 20

// stopWords are excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "to": {}, "of": {},
	"in": {}, "for": {}, "on": {}, "with": {}, "at": {}, "by": {},
	"from": {}, "as": {}, "or": {}, "and": {}, "but": {}, "not": {},
	"no": {}, "so": {}, "if": {}, "it": {}, "its": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "then": {}, "than": {},
	"when": {}, "where": {},
}

// PairKey identifies an unordered pane pair in a relevance matrix.
// The matrix stores each pair under both orderings for O(1) lookup.
type PairKey struct {
	A, B string
}

// RelevanceMatrix maps pane-id pairs to their relevance.
type RelevanceMatrix map[PairKey]model.RelevanceResult

// Get looks up the relevance for a pair in either order.
func (m RelevanceMatrix) Get(id1, id2 string) (model.RelevanceResult, bool) {
	if r, ok := m[PairKey{id1, id2}]; ok {
		return r, true
	}
	r, ok := m[PairKey{id2, id1}]
	return r, ok
}

// ExtractKeywords returns the top-N tokens by frequency after stop-word
// removal.
func ExtractKeywords(text string, topN int) []string {
	words := Tokenize(text)
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}

	type wc struct {
		word  string
		count int
	}
	ranked := make([]wc, 0, len(freq))
	for w, c := range freq {
		ranked = append(ranked, wc{w, c})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	keywords := make([]string, 0, topN)
	for _, r := range ranked {
		if _, stop := stopWords[r.word]; stop {
			continue
		}
		keywords = append(keywords, r.word)
		if len(keywords) == topN {
			break
		}
	}
	return keywords
}

// Relevance computes pairwise similarity between two pane contents.
// Combined score = 0.4·keywordJaccard + 0.3·tokenJaccard + 0.3·topicSimilarity.
func (a *Analyzer) Relevance(content1, content2, id1, id2 string) model.RelevanceResult {
	kw1 := toSet(ExtractKeywords(content1, keywordTopN))
	kw2 := toSet(ExtractKeywords(content2, keywordTopN))

	shared := intersect(kw1, kw2)
	keywordJaccard := jaccardSim(kw1, kw2)

	words1 := toSet(Tokenize(content1))
	words2 := toSet(Tokenize(content2))
	tokenJaccard := jaccardSim(words1, words2)

	// Topic similarity compares only the code-keyword portions. Two panes
	// with no code tokens at all count as weakly related ("both non-code").
	code1 := intersectKeywordSet(words1)
	code2 := intersectKeywordSet(words2)
	topicSim := 0.0
	switch {
	case len(code1) > 0 && len(code2) > 0:
		topicSim = jaccardSim(code1, code2)
	case len(code1) == 0 && len(code2) == 0:
		topicSim = 0.5
	}

	sharedList := make([]string, 0, len(shared))
	for w := range shared {
		sharedList = append(sharedList, w)
	}
	sort.Strings(sharedList)

	return model.RelevanceResult{
		PaneID1:           id1,
		PaneID2:           id2,
		SharedKeywords:    sharedList,
		JaccardSimilarity: keywordJaccard,
		TopicSimilarity:   topicSim,
		CombinedScore:     0.4*keywordJaccard + 0.3*tokenJaccard + 0.3*topicSim,
	}
}

// RelevanceMatrix computes relevance for every unordered pane pair,
// storing each result under both key orderings.
func (a *Analyzer) RelevanceMatrix(panes []model.PaneSnapshot) RelevanceMatrix {
	matrix := make(RelevanceMatrix)
	for i := range panes {
		for j := i + 1; j < len(panes); j++ {
			r := a.Relevance(panes[i].Content, panes[j].Content, panes[i].ID, panes[j].ID)
			matrix[PairKey{panes[i].ID, panes[j].ID}] = r
			matrix[PairKey{panes[j].ID, panes[i].ID}] = r
		}
	}
	return matrix
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range a {
		if _, ok := b[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}

func intersectKeywordSet(words map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range words {
		if _, ok := codeKeywords[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}

func jaccardSim(a, b map[string]struct{}) float64 {
	union := len(a)
	inter := 0
	for w := range b {
		if _, ok := a[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
