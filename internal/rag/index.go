package rag

import (
	"fmt"
	"math"
	"sort"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Metric selects the distance used by the flat index.
type Metric string

// Supported metrics. Inner-product mode pre-normalizes stored and query
// vectors to unit length so the dot product approximates cosine similarity.
const (
	MetricL2           Metric = "l2"
	MetricInnerProduct Metric = "ip"
)

// ParseMetric maps a config string to a Metric, defaulting to L2.
func ParseMetric(s string) Metric {
	if Metric(s) == MetricInnerProduct {
		return MetricInnerProduct
	}
	return MetricL2
}

// Hit is one nearest-neighbour result: the chunk ordinal and a bounded
// similarity score (higher is closer).
type Hit struct {
	Ordinal int
	Score   float64
}

// FlatIndex is an exact brute-force nearest-neighbour index over fixed-
// dimension vectors. It maps chunk ordinal to embedding and is ephemeral:
// built per request, or loaded from disk in the offline variant.
type FlatIndex struct {
	metric  Metric
	dim     int
	vectors [][]float32
}

// NewFlatIndex constructs an empty index for the given metric.
func NewFlatIndex(metric Metric) *FlatIndex {
	return &FlatIndex{metric: metric}
}

// Len returns the number of indexed vectors.
func (ix *FlatIndex) Len() int { return len(ix.vectors) }

// Dim returns the vector dimension, 0 while empty.
func (ix *FlatIndex) Dim() int { return ix.dim }

// Metric returns the configured distance metric.
func (ix *FlatIndex) Metric() Metric { return ix.metric }

// Add appends vectors to the index in ordinal order. All vectors must share
// one dimension; mixing dimensions means the embeddings came from different
// models and is rejected.
func (ix *FlatIndex) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector", domain.ErrInvalidArgument)
		}
		if ix.dim == 0 {
			ix.dim = len(v)
		}
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector dimension %d, index dimension %d", domain.ErrInvalidArgument, len(v), ix.dim)
		}
		if ix.metric == MetricInnerProduct {
			v = normalize(v)
		}
		ix.vectors = append(ix.vectors, v)
	}
	return nil
}

// Search returns the k nearest vectors to query, ordered by descending
// similarity. L2 distances convert to a bounded score via 1/(1+dist); inner
// product scores are the dot of unit vectors.
func (ix *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if ix.Len() == 0 {
		return nil, fmt.Errorf("%w: index is empty", domain.ErrNotFound)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", domain.ErrInvalidArgument, len(query), ix.dim)
	}
	if k <= 0 || k > ix.Len() {
		k = ix.Len()
	}
	if ix.metric == MetricInnerProduct {
		query = normalize(query)
	}
	hits := make([]Hit, 0, ix.Len())
	for i, v := range ix.vectors {
		hits = append(hits, Hit{Ordinal: i, Score: ix.score(query, v)})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	return hits[:k], nil
}

func (ix *FlatIndex) score(q, v []float32) float64 {
	if ix.metric == MetricInnerProduct {
		var dot float64
		for i := range q {
			dot += float64(q[i]) * float64(v[i])
		}
		return dot
	}
	// Squared L2, as flat L2 indexes conventionally report it.
	var dist float64
	for i := range q {
		d := float64(q[i]) - float64(v[i])
		dist += d * d
	}
	return 1.0 / (1.0 + dist)
}

func normalize(v []float32) []float32 {
	var n float64
	for _, x := range v {
		n += float64(x) * float64(x)
	}
	if n == 0 {
		return v
	}
	n = math.Sqrt(n)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}
