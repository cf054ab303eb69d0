package rag

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// File names of the persisted pair. The vector file and the metadata file are
// read and written together, never independently.
const (
	indexFileName = "index.gob"
	metaFileName  = "chunks.json"
)

type indexFile struct {
	Metric  Metric
	Dim     int
	Vectors [][]float32
}

// SaveTo writes the store's index and chunk metadata into dir as a pair.
// Both files are written to temp paths first and renamed so a crash cannot
// leave a partial pair behind. Saving an unindexed store is an error.
func (s *Store) SaveTo(dir string) error {
	if !s.Indexed() {
		return fmt.Errorf("%w: nothing to persist, store has no index", domain.ErrInvalidArgument)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("op=rag.save: %w", err)
	}

	idxPath := filepath.Join(dir, indexFileName)
	if err := writeAtomic(idxPath, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(indexFile{
			Metric:  s.index.metric,
			Dim:     s.index.dim,
			Vectors: s.index.vectors,
		})
	}); err != nil {
		return fmt.Errorf("op=rag.save index: %w", err)
	}

	metaPath := filepath.Join(dir, metaFileName)
	if err := writeAtomic(metaPath, func(f *os.File) error {
		return json.NewEncoder(f).Encode(s.chunks)
	}); err != nil {
		// Keep the pair consistent: drop the index file we just wrote.
		_ = os.Remove(idxPath)
		return fmt.Errorf("op=rag.save metadata: %w", err)
	}
	return nil
}

// LoadFrom reads a persisted pair from dir and restores a queryable Store
// using the given embedder for queries. Both files must exist and agree in
// length.
func LoadFrom(dir string, embedder domain.Embedder) (*Store, error) {
	idxF, err := os.Open(filepath.Join(dir, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("op=rag.load index: %w", err)
	}
	defer func() { _ = idxF.Close() }()
	var raw indexFile
	if err := gob.NewDecoder(idxF).Decode(&raw); err != nil {
		return nil, fmt.Errorf("op=rag.load index decode: %w", err)
	}

	metaF, err := os.Open(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("op=rag.load metadata: %w", err)
	}
	defer func() { _ = metaF.Close() }()
	var chunks []domain.Chunk
	if err := json.NewDecoder(metaF).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("op=rag.load metadata decode: %w", err)
	}

	ix := &FlatIndex{metric: raw.Metric, dim: raw.Dim, vectors: raw.Vectors}
	return Restore(embedder, chunks, ix)
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
