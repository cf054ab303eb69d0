package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
)

// Store pairs chunks with their flat vector index and answers top-k evidence
// queries. A Store is built once per document and is not safe for concurrent
// mutation; concurrent Retrieve calls after Build are fine.
type Store struct {
	embedder domain.Embedder
	metric   Metric
	chunks   []domain.Chunk
	index    *FlatIndex
}

// NewStore constructs a Store using the given embedder. A nil embedder is
// allowed: Build then records chunks only and Retrieve serves the document-
// order fallback.
func NewStore(embedder domain.Embedder, metric Metric) *Store {
	return &Store{embedder: embedder, metric: metric}
}

// Chunks returns the stored chunks in ordinal order.
func (s *Store) Chunks() []domain.Chunk { return s.chunks }

// Indexed reports whether vector search is available.
func (s *Store) Indexed() bool { return s.index != nil && s.index.Len() == len(s.chunks) && len(s.chunks) > 0 }

// Build embeds all chunks in one batch and indexes them. Embedding failure
// leaves the store in fallback mode instead of returning an error: retrieval
// must never block scoring.
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk) {
	tracer := otel.Tracer("rag.store")
	ctx, span := tracer.Start(ctx, "store.Build")
	defer span.End()

	s.chunks = chunks
	s.index = nil
	if len(chunks) == 0 {
		return
	}
	if s.embedder == nil {
		slog.Debug("embedder unavailable; vector index skipped", slog.Int("chunks", len(chunks)))
		return
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		slog.Warn("chunk embedding failed; falling back to document order",
			slog.Int("chunks", len(chunks)), slog.Any("error", err))
		return
	}
	ix := NewFlatIndex(s.metric)
	if err := ix.Add(vectors); err != nil {
		slog.Warn("indexing failed; falling back to document order", slog.Any("error", err))
		return
	}
	s.index = ix
}

// Retrieve returns the k chunks most relevant to the query, ordered by
// descending similarity. The second return reports whether the results are
// vector-backed; on any failure the first k chunks in document order are
// returned instead.
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]domain.EvidenceChunk, bool) {
	start := time.Now()
	defer func() { observability.RetrievalDuration.Observe(time.Since(start).Seconds()) }()

	if k <= 0 {
		k = 3
	}
	if !s.Indexed() {
		observability.RetrievalTotal.WithLabelValues("fallback").Inc()
		return s.firstK(k), false
	}
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) != 1 {
		slog.Warn("query embedding failed; falling back to document order", slog.Any("error", err))
		observability.RetrievalTotal.WithLabelValues("fallback").Inc()
		return s.firstK(k), false
	}
	hits, err := s.index.Search(vecs[0], k)
	if err != nil {
		slog.Warn("index search failed; falling back to document order", slog.Any("error", err))
		observability.RetrievalTotal.WithLabelValues("fallback").Inc()
		return s.firstK(k), false
	}
	out := make([]domain.EvidenceChunk, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.EvidenceChunk{Chunk: s.chunks[h.Ordinal], Score: h.Score})
	}
	observability.RetrievalTotal.WithLabelValues("vector").Inc()
	return out, true
}

// firstK returns the first k chunks in document order with zero scores.
func (s *Store) firstK(k int) []domain.EvidenceChunk {
	if k > len(s.chunks) {
		k = len(s.chunks)
	}
	out := make([]domain.EvidenceChunk, 0, k)
	for _, c := range s.chunks[:k] {
		out = append(out, domain.EvidenceChunk{Chunk: c})
	}
	return out
}

// Index exposes the underlying flat index for persistence; nil in fallback mode.
func (s *Store) Index() *FlatIndex { return s.index }

// Restore rebuilds a Store from persisted chunks and index, validating that
// they agree in length.
func Restore(embedder domain.Embedder, chunks []domain.Chunk, index *FlatIndex) (*Store, error) {
	if index == nil || index.Len() != len(chunks) {
		return nil, fmt.Errorf("%w: index/metadata length mismatch", domain.ErrInvalidArgument)
	}
	return &Store{embedder: embedder, metric: index.Metric(), chunks: chunks, index: index}, nil
}
