// Package retriever turns a free-text query into grounding chunks from the
// persisted vector index.  It degrades to zero chunks rather than failing:
// an absent index or an embedding error means "no grounding available".
package retriever

import (
	"context"
	"log/slog"

	"carenova/internal/index"
	"carenova/internal/llm"
	"carenova/pkg"
)

// Retriever embeds queries and searches the loaded index.
type Retriever struct {
	embedder  llm.Embedder
	store     *index.Store
	k         int
	threshold float64
	log       *slog.Logger
}

// New constructs a Retriever.  k and threshold come from the index
// configuration and bound what Retrieve may return.
func New(embedder llm.Embedder, store *index.Store, k int, threshold float64, log *slog.Logger) *Retriever {
	return &Retriever{embedder: embedder, store: store, k: k, threshold: threshold, log: log}
}

// Ready reports whether the vector index is loaded and searchable.
func (r *Retriever) Ready() bool { return r.store.Ready() }

// Retrieve returns up to k chunks relevant to the query, best first, all at
// or above the configured score threshold.  An unavailable index yields
// (nil, nil); only the embedding call can produce an error, and callers
// must treat it as "no grounding", not as a request failure.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]pkg.RetrievedChunk, error) {
	if !r.store.Ready() {
		return nil, nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.log.Warn("query embedding failed", "error", err)
		return nil, err
	}
	results := r.store.Search(vec, r.k, r.threshold)
	chunks := make([]pkg.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, pkg.RetrievedChunk{
			Text:   res.Chunk.Text,
			Source: res.Chunk.Source,
			Score:  res.Score,
		})
	}
	r.log.Debug("retrieved chunks", "count", len(chunks))
	return chunks, nil
}
