// Package stub provides deterministic in-process implementations of the AI
// ports for development and tests. No network calls are made.
package stub

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// EmbedDims is the fixed dimension of stub embeddings.
const EmbedDims = 384

// Embedder produces deterministic pseudo-embeddings: the same text always
// maps to the same vector, and texts sharing tokens land near each other,
// which is enough for retrieval and similarity tests.
type Embedder struct{}

// NewEmbedder constructs a stub embedder.
func NewEmbedder() *Embedder { return &Embedder{} }

// Embed returns one deterministic vector per input text.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

// embedText hashes each token into a handful of dimensions so token overlap
// translates into vector proximity.
func embedText(text string) []float32 {
	v := make([]float32, EmbedDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := sha256.Sum256([]byte(tok))
		for j := 0; j < 4; j++ {
			idx := binary.BigEndian.Uint32(h[j*8:]) % EmbedDims
			sign := float32(1)
			if h[j*8+4]%2 == 1 {
				sign = -1
			}
			v[idx] += sign
		}
	}
	return v
}

// Narrator is a scripted narrative port. With Text set it succeeds with that
// narrative; otherwise it reports failure so composers exercise the
// rule-based path.
type Narrator struct {
	Text   string
	Reason string
}

// Narrate returns the scripted result.
func (n *Narrator) Narrate(_ context.Context, _, _ string) domain.NarrativeResult {
	if n.Text != "" {
		return domain.NarrativeResult{OK: true, Text: n.Text}
	}
	reason := n.Reason
	if reason == "" {
		reason = "narrator stubbed out"
	}
	return domain.NarrativeResult{Reason: reason}
}
