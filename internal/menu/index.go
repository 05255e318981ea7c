// Package menu serves the sushi menu catalog and a small, deterministic,
// concurrency-safe in-memory search over its items.
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// item's token set: score = |Q ∩ I| / |Q ∪ I|.
package menu

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Item is one dish found in the catalog. Raw is the original JSON object.
type Item struct {
	Name        string
	Description string
	Category    string
	Raw         json.RawMessage
}

// Result is a ranked item with its similarity score.
type Result struct {
	Item  json.RawMessage `json:"item"  swaggertype:"object"`
	Score float64         `json:"score" example:"0.5"`
}

// Option configures an Index.
type Option func(*indexConfig)

type indexConfig struct {
	stopwords map[string]struct{}
	maxItems  int
}

// WithStopwords drops the given words from item and query tokens.
func WithStopwords(words []string) Option {
	return func(c *indexConfig) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxItems caps how many items are indexed.
func WithMaxItems(n int) Option {
	return func(c *indexConfig) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

type doc struct {
	item   Item
	tokens map[string]struct{}
}

// Index ranks catalog items against free-text queries.
type Index struct {
	cfg  indexConfig
	docs []doc
}

// NewIndex builds an Index over items. Items without tokens are skipped.
func NewIndex(items []Item, opts ...Option) *Index {
	var cfg indexConfig
	for _, o := range opts {
		o(&cfg)
	}
	docs := make([]doc, 0, len(items))
	for _, it := range items {
		toks := tokenize(it.Name+" "+it.Description+" "+it.Category, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{item: it, tokens: toks})
		if cfg.maxItems > 0 && len(docs) >= cfg.maxItems {
			break
		}
	}
	return &Index{cfg: cfg, docs: docs}
}

// Len returns the number of indexed items.
func (i *Index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching items. k <= 0 means 5.
func (i *Index) TopK(q string, k int) []Result {
	if i == nil || len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 5
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		item     Item
		score    float64
		lenRunes int
	}

	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		buf = append(buf, scored{
			item:     d.item,
			score:    float64(over) / union,
			lenRunes: utf8.RuneCountInString(d.item.Name),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].item.Name < buf[b].item.Name
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for j := 0; j < k; j++ {
		out[j] = Result{Item: buf[j].item.Raw, Score: buf[j].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
