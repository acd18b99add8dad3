package match

import (
	"sort"
	"strings"
)

// Scoring weights. Exact short-circuits; the fuzzy fallback only fires when
// no structural signal matched at all, so a typo can never outrank a real
// prefix or token hit.
const (
	scoreExact         = 1000.0
	scoreTokenPrefix   = 200.0
	scoreLabelPrefix   = 120.0
	scoreWholeWord     = 80.0
	scoreTokensInOrder = 80.0
	scoreSubstring     = 60.0
	scoreSubsequence   = 20.0

	aliasPenalty  = 10.0
	lengthPenalty = 0.5

	defaultPrefixCap = 6

	// Distance 3 lets singular/plural slips ("grocery" vs "groceries",
	// one substitution plus two insertions) resolve to the canonical
	// label instead of minting a near-duplicate category.
	defaultFuzzyMaxDist = 3
)

// Result pairs an item with its score and how many query tokens found a
// prefix or whole-word hit.
type Result struct {
	Item     Item
	Score    float64
	Coverage int
}

// Engine ranks items against queries. It is not safe for concurrent use;
// the session owns it exclusively.
type Engine struct {
	index        map[string][]int
	items        []Item
	prefixCap    int
	fuzzyMaxDist int
	useIndex     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithFuzzyMaxDist bounds the edit-distance fallback; 0 disables it.
func WithFuzzyMaxDist(d int) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.fuzzyMaxDist = d
		}
	}
}

// WithPrefixCap sets the longest token prefix stored in the index.
func WithPrefixCap(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.prefixCap = n
		}
	}
}

// WithoutIndex disables the token-prefix index; every query scans all items.
func WithoutIndex() Option {
	return func(e *Engine) { e.useIndex = false }
}

// NewEngine creates an engine over the given items.
func NewEngine(items []Item, opts ...Option) *Engine {
	e := &Engine{
		prefixCap:    defaultPrefixCap,
		fuzzyMaxDist: defaultFuzzyMaxDist,
		useIndex:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.SetItems(items)
	return e
}

// SetItems replaces the candidate set and rebuilds the prefix index
// eagerly. Call on every taxonomy mutation.
func (e *Engine) SetItems(items []Item) {
	e.items = items
	if !e.useIndex {
		e.index = nil
		return
	}
	idx := make(map[string][]int)
	for i, it := range e.items {
		seen := make(map[string]bool)
		for _, tok := range it.Tokens {
			limit := len(tok)
			if limit > e.prefixCap {
				limit = e.prefixCap
			}
			for k := 1; k <= limit; k++ {
				p := tok[:k]
				if !seen[p] {
					seen[p] = true
					idx[p] = append(idx[p], i)
				}
			}
		}
	}
	e.index = idx
}

// Items returns the current candidate set.
func (e *Engine) Items() []Item {
	return e.items
}

// Search ranks items against the query. An empty query returns the stable
// alphabetical listing; a query matching nothing returns an empty slice.
// limit <= 0 means no limit.
func (e *Engine) Search(query string, limit int) []Result {
	qNorm := Normalize(query)

	if qNorm == "" {
		out := make([]Result, len(e.items))
		for i, it := range e.items {
			out[i] = Result{Item: it}
		}
		sort.Slice(out, func(i, j int) bool {
			li, lj := strings.ToLower(out[i].Item.Label), strings.ToLower(out[j].Item.Label)
			if li != lj {
				return li < lj
			}
			return out[i].Item.ID < out[j].Item.ID
		})
		return clip(out, limit)
	}

	qTokens := strings.Split(qNorm, " ")
	qCompact := strings.ReplaceAll(qNorm, " ", "")

	// The prefix index narrows which items get the per-token scoring
	// loops; items outside the candidate set can still match through the
	// weak signals, so they are scanned with those only. The ranked
	// output is identical to a full unindexed scan either way.
	cand := e.candidateSet(qTokens)

	var results []Result
	for i, it := range e.items {
		tokenSignals := cand == nil || cand[i]

		score, coverage, matched := e.scoreOne(qNorm, qTokens, qCompact, it.Norm, it.Tokens, tokenSignals)
		for _, alias := range it.Aliases {
			aNorm := Normalize(alias)
			var aTokens []string
			if aNorm != "" {
				aTokens = strings.Split(aNorm, " ")
			}
			s, cov, ok := e.scoreOne(qNorm, qTokens, qCompact, aNorm, aTokens, true)
			if ok && s-aliasPenalty > score {
				score, coverage, matched = s-aliasPenalty, cov, true
			}
		}

		if matched {
			results = append(results, Result{Item: it, Score: score, Coverage: coverage})
		}
	}

	// Ties are common with short queries; the full chain keeps the order
	// reproducible.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Coverage != b.Coverage {
			return a.Coverage > b.Coverage
		}
		if len(a.Item.Norm) != len(b.Item.Norm) {
			return len(a.Item.Norm) < len(b.Item.Norm)
		}
		la, lb := strings.ToLower(a.Item.Label), strings.ToLower(b.Item.Label)
		if la != lb {
			return la < lb
		}
		return a.Item.ID < b.Item.ID
	})

	return clip(results, limit)
}

// Best returns the top-ranked item for the query.
func (e *Engine) Best(query string) (Item, bool) {
	res := e.Search(query, 1)
	if len(res) == 0 {
		return Item{}, false
	}
	return res[0].Item, true
}

// candidateSet returns the items eligible for token-signal scoring, or nil
// when every item is (index disabled).
func (e *Engine) candidateSet(qTokens []string) map[int]bool {
	if e.index == nil {
		return nil
	}

	hit := make(map[int]bool)
	for _, qt := range qTokens {
		if len(qt) > e.prefixCap {
			qt = qt[:e.prefixCap]
		}
		if qt == "" {
			continue
		}
		for _, i := range e.index[qt] {
			hit[i] = true
		}
	}
	return hit
}

// scoreOne scores the query against one target string (label or alias).
// tokenSignals gates the per-token loops; callers pass false only when the
// prefix index has already proven no token can hit.
func (e *Engine) scoreOne(qNorm string, qTokens []string, qCompact, targetNorm string, targetTokens []string, tokenSignals bool) (score float64, coverage int, matched bool) {
	if qNorm == "" || targetNorm == "" {
		return 0, 0, false
	}

	if qNorm == targetNorm {
		return scoreExact, len(qTokens), true
	}

	if strings.HasPrefix(targetNorm, qNorm) {
		score += scoreLabelPrefix
		matched = true
	}
	if strings.Contains(targetNorm, qNorm) {
		score += scoreSubstring
		matched = true
	}

	if tokenSignals {
		for _, qt := range qTokens {
			if qt == "" {
				continue
			}
			best := 0.0
			for _, tt := range targetTokens {
				if strings.HasPrefix(tt, qt) && scoreTokenPrefix > best {
					best = scoreTokenPrefix
				}
				if tt == qt && scoreWholeWord > best {
					best = scoreWholeWord
				}
			}
			if best > 0 {
				score += best
				coverage++
				matched = true
			}
		}

		if tokensInOrder(qTokens, targetTokens) {
			score += scoreTokensInOrder
			matched = true
		}
	}

	if qCompact != "" && isSubsequence(qCompact, targetNorm) {
		score += scoreSubsequence
		matched = true
	}

	if !matched && e.fuzzyMaxDist > 0 {
		dist := editDistance(qNorm, targetNorm, e.fuzzyMaxDist)
		if dist <= e.fuzzyMaxDist {
			matched = true
			bonus := 50.0 - 10.0*float64(dist)
			if bonus > 0 {
				score += bonus
			}
		}
	}

	score -= lengthPenalty * float64(len(targetNorm)-len(qNorm))
	return score, coverage, matched
}

// tokensInOrder reports whether every query token prefixes a target token,
// with the matched target tokens appearing in order (gaps allowed).
func tokensInOrder(qTokens, targetTokens []string) bool {
	if len(qTokens) == 0 {
		return false
	}
	pos := 0
	for _, qt := range qTokens {
		found := false
		for j := pos; j < len(targetTokens); j++ {
			if strings.HasPrefix(targetTokens[j], qt) {
				found = true
				pos = j + 1
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clip(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
