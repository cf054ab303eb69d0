package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunker_ChunkWords(t *testing.T) {
	t.Parallel()

	t.Run("empty text yields no chunks", func(t *testing.T) {
		t.Parallel()
		c := NewChunker(500, 50, 0)
		assert.Nil(t, c.ChunkWords("", domain.ChunkMeta{}))
		assert.Nil(t, c.ChunkWords("   ", domain.ChunkMeta{}))
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		t.Parallel()
		c := NewChunker(500, 50, 0)
		chunks := c.ChunkWords(words(120), domain.ChunkMeta{Source: "resume"})
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Ordinal)
		assert.Equal(t, 0, chunks[0].WordStart)
		assert.Equal(t, 120, chunks[0].WordEnd)
		assert.Equal(t, "resume", chunks[0].Meta.Source)
	})

	t.Run("windows overlap and cover every word", func(t *testing.T) {
		t.Parallel()
		const total = 1200
		c := NewChunker(500, 50, 0)
		chunks := c.ChunkWords(words(total), domain.ChunkMeta{})
		require.Len(t, chunks, 3)

		covered := make([]bool, total)
		for i, ch := range chunks {
			assert.Equal(t, i, ch.Ordinal)
			for w := ch.WordStart; w < ch.WordEnd; w++ {
				covered[w] = true
			}
			if i > 0 {
				// Consecutive windows share the overlap region.
				assert.Less(t, ch.WordStart, chunks[i-1].WordEnd)
			}
		}
		for w, ok := range covered {
			require.True(t, ok, "word %d not covered", w)
		}
	})

	t.Run("degenerate sizes are clamped", func(t *testing.T) {
		t.Parallel()
		c := NewChunker(0, -5, 0)
		assert.Equal(t, 500, c.Size)
		assert.Equal(t, 0, c.Overlap)

		c = NewChunker(10, 10, 0)
		assert.Equal(t, 5, c.Overlap)
	})

	t.Run("token bound splits oversized windows", func(t *testing.T) {
		t.Parallel()
		c := NewChunker(100, 0, 20)
		chunks := c.ChunkWords(words(100), domain.ChunkMeta{})
		require.NotEmpty(t, chunks)
		assert.Greater(t, len(chunks), 1)
		// Word spans still tile the input without gaps.
		next := 0
		for _, ch := range chunks {
			assert.Equal(t, next, ch.WordStart)
			next = ch.WordEnd
		}
		assert.Equal(t, 100, next)
	})
}
