// Package ingest builds the vector index the serving core consumes: it
// walks a knowledge directory, chunks the documents, embeds each chunk and
// writes the result as a read-only index directory.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"carenova/internal/index"
	"carenova/internal/llm"
)

// Options configure one ingest run.
type Options struct {
	SourceDir         string
	IndexDir          string
	SentencesPerChunk int
	OverlapSentences  int
	Concurrency       int
}

// Run builds the index from every .txt and .md file under SourceDir.
// Chunks are embedded concurrently; the index is committed only when every
// chunk succeeded, so a half-built index never replaces a good one until
// Close commits.
func Run(ctx context.Context, opts Options, embedder llm.Embedder, log *slog.Logger) (int, error) {
	chunks, err := collectChunks(opts)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no documents found under %s", opts.SourceDir)
	}
	log.Info("chunked knowledge base", "chunks", len(chunks), "source", opts.SourceDir)

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	g.SetLimit(concurrency)
	for i := range chunks {
		i := i
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("embed chunk from %s: %w", chunks[i].Source, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	writer, err := index.Create(opts.IndexDir, len(vectors[0]))
	if err != nil {
		return 0, err
	}
	for i, c := range chunks {
		if err := writer.Add(c.Source, c.Text, vectors[i]); err != nil {
			writer.Close()
			return 0, err
		}
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}
	log.Info("index written", "dir", opts.IndexDir, "chunks", len(chunks))
	return len(chunks), nil
}

func collectChunks(opts Options) ([]Chunk, error) {
	chunker := NewSentenceChunker(opts.SentencesPerChunk, opts.OverlapSentences)
	var chunks []Chunk
	err := filepath.WalkDir(opts.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.SourceDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		chunks = append(chunks, chunker.Chunk(rel, string(data))...)
		return nil
	})
	return chunks, err
}
