// Package match computes the similarity signals blended into the hybrid score.
package match

import (
	"math"
	"regexp"
	"strings"
)

// wordRe mirrors the usual vectorizer token pattern: two or more word
// characters, punctuation dropped.
var wordRe = regexp.MustCompile(`\w\w+`)

// TFIDF computes the cosine similarity of TF-IDF vectors fit jointly over
// exactly the two documents, scaled to [0,100]. Either input being empty or
// whitespace-only yields 0.
func TFIDF(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	ta := termCounts(a)
	tb := termCounts(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	// Smoothed idf over the two-document corpus: ln((1+n)/(1+df)) + 1.
	idf := func(term string) float64 {
		df := 0
		if _, ok := ta[term]; ok {
			df++
		}
		if _, ok := tb[term]; ok {
			df++
		}
		return math.Log(3.0/(1.0+float64(df))) + 1.0
	}

	va := make(map[string]float64, len(ta))
	for term, tf := range ta {
		va[term] = float64(tf) * idf(term)
	}
	vb := make(map[string]float64, len(tb))
	for term, tf := range tb {
		vb[term] = float64(tf) * idf(term)
	}

	var dot, na, nb float64
	for term, w := range va {
		na += w * w
		if w2, ok := vb[term]; ok {
			dot += w * w2
		}
	}
	for _, w := range vb {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)) * 100
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		counts[tok]++
	}
	return counts
}
