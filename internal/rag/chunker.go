// Package rag implements the chunked vector index and evidence retrieval.
//
// A long document is split into overlapping fixed-size chunks, every chunk is
// embedded in a batch, and a flat in-memory index answers nearest-neighbour
// queries. The index is rebuilt fresh per request and discarded afterwards;
// file persistence exists only for the offline market variant.
package rag

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Chunker splits text into word windows of Size words with Overlap words
// shared between consecutive windows so context is not lost at boundaries.
// When MaxTokens > 0 a window whose token count exceeds the bound is split
// further.
type Chunker struct {
	Size      int
	Overlap   int
	MaxTokens int

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

// NewChunker constructs a Chunker, clamping degenerate size/overlap values.
func NewChunker(size, overlap, maxTokens int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{Size: size, Overlap: overlap, MaxTokens: maxTokens}
}

// ChunkWords splits text into chunks carrying the given metadata. Every word
// index of the input appears in at least one chunk; ordinals are sequential
// from 0.
func (c *Chunker) ChunkWords(text string, meta domain.ChunkMeta) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.Size - c.Overlap
	var chunks []domain.Chunk
	for start := 0; start < len(words); start += step {
		end := start + c.Size
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		for _, part := range c.splitByTokens(window) {
			chunks = append(chunks, domain.Chunk{
				Ordinal:   len(chunks),
				Text:      strings.Join(part.words, " "),
				WordStart: start + part.offset,
				WordEnd:   start + part.offset + len(part.words),
				Meta:      meta,
			})
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}

type wordSpan struct {
	words  []string
	offset int
}

// splitByTokens halves a window repeatedly until every part fits MaxTokens.
// Token counting failures disable the bound rather than failing chunking.
func (c *Chunker) splitByTokens(words []string) []wordSpan {
	if c.MaxTokens <= 0 {
		return []wordSpan{{words: words}}
	}
	c.encOnce.Do(func() {
		// Offline BPE assets keep token counting hermetic.
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tiktoken encoding unavailable; token bound disabled", slog.Any("error", err))
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return []wordSpan{{words: words}}
	}
	var split func(ws []string, off int) []wordSpan
	split = func(ws []string, off int) []wordSpan {
		if len(ws) <= 1 || len(c.enc.Encode(strings.Join(ws, " "), nil, nil)) <= c.MaxTokens {
			return []wordSpan{{words: ws, offset: off}}
		}
		mid := len(ws) / 2
		return append(split(ws[:mid], off), split(ws[mid:], off+mid)...)
	}
	return split(words, 0)
}
