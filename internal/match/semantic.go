package match

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Semantic computes dense-embedding cosine similarity between two texts,
// scaled to [0,100]. Both texts are embedded through the same client so the
// vector spaces match. A nil or failing embedder degrades to 0, never an
// error: semantic similarity must not block scoring.
func Semantic(ctx context.Context, emb domain.Embedder, a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	if emb == nil {
		slog.Debug("embedder unavailable; semantic score degraded to 0")
		return 0
	}
	vecs, err := emb.Embed(ctx, []string{a, b})
	if err != nil || len(vecs) != 2 {
		slog.Warn("embedding failed; semantic score degraded to 0", slog.Any("error", err))
		return 0
	}
	sim := Cosine(vecs[0], vecs[1])
	if sim < 0 {
		sim = 0
	}
	return sim * 100
}

// Cosine returns the cosine similarity of two vectors, 0 when dimensions
// differ or either vector is all-zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
