// Package classifier scores extracted text against the configured bilingual
// keyword table. Classification is a pure function of the candidate text and
// the table loaded at startup.
package classifier

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
)

// Classifier matches keywords with a single Aho-Corasick pass over the
// lowercased candidate text. The matcher finds substrings, so every hit is
// then confirmed at word boundaries: a short keyword must not fire inside a
// longer word ("ана" inside "астанада"). Each keyword belongs to exactly one
// category. The matcher reuses internal state between calls, so Match runs
// under mu.
type Classifier struct {
	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	keywords []string
	category []string
	priority map[string]int
}

// New builds the matcher from categories listed in priority order. A keyword
// appearing under several categories keeps its first (highest-priority) one.
func New(cfg config.ClassifierConfig) *Classifier {
	c := &Classifier{priority: make(map[string]int)}

	assigned := map[string]struct{}{}
	for rank, cat := range cfg.Categories {
		if _, ok := c.priority[cat.Name]; !ok {
			c.priority[cat.Name] = rank
		}
		for _, kw := range cat.Keywords {
			folded := strings.ToLower(strings.TrimSpace(kw))
			if folded == "" {
				continue
			}
			if _, dup := assigned[folded]; dup {
				continue
			}
			assigned[folded] = struct{}{}
			c.keywords = append(c.keywords, folded)
			c.category = append(c.category, cat.Name)
		}
	}

	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}
	return c
}

// Classify returns the matched keywords, the winning category, and the
// detected language for a candidate. Zero matches leaves Category empty,
// which rejects the candidate downstream.
func (c *Classifier) Classify(cand domain.Candidate) domain.Classification {
	text := strings.ToLower(cand.Title + " " + cand.Description + " " + cand.Body)

	result := domain.Classification{Language: DetectLanguage(text)}
	if c.matcher == nil || strings.TrimSpace(text) == "" {
		return result
	}

	c.mu.Lock()
	hits := c.matcher.Match([]byte(text))
	c.mu.Unlock()
	if len(hits) == 0 {
		return result
	}

	counts := map[string]int{}
	for _, idx := range hits {
		kw := c.keywords[idx]
		if !wholeWordMatch(text, kw) {
			continue
		}
		result.Keywords = append(result.Keywords, kw)
		counts[c.category[idx]]++
	}
	if len(result.Keywords) == 0 {
		return result
	}
	sort.Strings(result.Keywords)
	result.Count = len(result.Keywords)
	result.Category = c.pickCategory(counts)

	return result
}

// wholeWordMatch reports whether kw occurs in text delimited by non-word
// runes on both sides.
func wholeWordMatch(text, kw string) bool {
	for from := 0; from+len(kw) <= len(text); {
		idx := strings.Index(text[from:], kw)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(kw)
		if startsWord(text, start) && endsWord(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func startsWord(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func endsWord(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// pickCategory selects the category with the most keyword hits; equal counts
// resolve to the category configured earlier.
func (c *Classifier) pickCategory(counts map[string]int) string {
	best := ""
	bestCount := 0
	for name, count := range counts {
		if count > bestCount {
			best, bestCount = name, count
			continue
		}
		if count == bestCount && c.priority[name] < c.priority[best] {
			best = name
		}
	}
	return best
}
