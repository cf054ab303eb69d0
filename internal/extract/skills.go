package extract

import (
	"sort"
	"strings"
	"unicode"
)

// SkillExtractor intersects document tokens against a fixed skill vocabulary.
// Single-word skills require a whole-token match; multi-word skills fall back
// to substring containment. Same input text always yields the same skill set.
type SkillExtractor struct {
	single map[string]struct{}
	multi  []string
}

// NewSkillExtractor constructs a SkillExtractor over the vocabulary skills.
func NewSkillExtractor(vocab Vocabulary) *SkillExtractor {
	e := &SkillExtractor{single: make(map[string]struct{})}
	for _, s := range vocab.Skills {
		if strings.ContainsRune(s, ' ') {
			e.multi = append(e.multi, s)
		} else {
			e.single[s] = struct{}{}
		}
	}
	sort.Strings(e.multi)
	return e
}

// Extract returns the sorted set of vocabulary skills found in text.
func (e *SkillExtractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	for _, tok := range tokenize(lower) {
		if _, ok := e.single[tok]; ok {
			found[tok] = struct{}{}
		}
	}
	for _, phrase := range e.multi {
		if strings.Contains(lower, phrase) {
			found[phrase] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// tokenize splits lowercased text into tokens, keeping characters that occur
// inside common skill names (dots as in "node.js", plus signs as in "c++",
// and hash as in "c#") attached to their token.
func tokenize(lower string) []string {
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '.', '+', '#':
			return false
		}
		return true
	})
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		// Strip sentence punctuation; interior dots ("node.js") survive.
		t = strings.Trim(t, ".")
		if t != "" {
			toks = append(toks, t)
		}
	}
	return toks
}

// Intersect returns elements of a present in b, sorted. Both inputs are
// treated as sets.
func Intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(a))
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		if _, ok := set[s]; ok {
			if _, dup := seen[s]; !dup {
				out = append(out, s)
				seen[s] = struct{}{}
			}
		}
	}
	sort.Strings(out)
	return out
}

// Difference returns elements of a absent from b, sorted.
func Difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(a))
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		if _, ok := set[s]; !ok {
			if _, dup := seen[s]; !dup {
				out = append(out, s)
				seen[s] = struct{}{}
			}
		}
	}
	sort.Strings(out)
	return out
}
