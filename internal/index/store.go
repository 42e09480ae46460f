// Package index reads and writes the persisted vector index: a sqlite
// database holding chunk texts, source metadata and embedding vectors.
// Search is brute-force cosine similarity over vectors loaded at startup;
// the corpus is small enough that an approximate index is unnecessary.
package index

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"
)

// DBFileName is the sqlite file inside the index directory.
const DBFileName = "chunks.db"

// Chunk is one embedded span of source text.
type Chunk struct {
	ID     int64
	Source string
	Text   string
}

// Result pairs a chunk with its similarity score for a query vector.
type Result struct {
	Chunk Chunk
	Score float64
}

// Store is the read side of the index.  After Open it is immutable and may
// be shared freely across concurrent handlers.
type Store struct {
	chunks  []Chunk
	vectors [][]float32
	dim     int
	ready   bool
}

// Open loads the index under dir into memory.  A missing directory or
// database yields a non-ready store and no error: callers must treat that
// as "no grounding available", not as a failure.  Errors are returned only
// for an index that exists but cannot be read; even then the returned store
// is usable (empty, not ready).
func Open(dir string) (*Store, error) {
	s := &Store{}
	path := filepath.Join(dir, DBFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return s, nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return s, fmt.Errorf("open index %s: %w", path, err)
	}
	defer db.Close()

	var dimStr string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&dimStr); err != nil {
		return s, fmt.Errorf("read index meta: %w", err)
	}
	dim, err := strconv.Atoi(dimStr)
	if err != nil || dim <= 0 {
		return s, fmt.Errorf("invalid index dimension %q", dimStr)
	}

	rows, err := db.Query(`SELECT id, source, text, embedding FROM chunks ORDER BY id`)
	if err != nil {
		return s, fmt.Errorf("read chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c    Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Text, &blob); err != nil {
			return s, err
		}
		vec, err := decodeVector(blob, dim)
		if err != nil {
			return s, fmt.Errorf("chunk %d: %w", c.ID, err)
		}
		s.chunks = append(s.chunks, c)
		s.vectors = append(s.vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	s.dim = dim
	s.ready = len(s.chunks) > 0
	return s, nil
}

// Ready reports whether the index was loaded and holds at least one chunk.
func (s *Store) Ready() bool { return s.ready }

// Len returns the number of indexed chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Search returns up to k chunks whose cosine similarity to vec is at or
// above threshold, ordered by descending score.  A non-ready store or a
// dimension mismatch yields no results.
func (s *Store) Search(vec []float32, k int, threshold float64) []Result {
	if !s.ready || len(vec) != s.dim || k <= 0 {
		return nil
	}
	results := make([]Result, 0, k)
	for i, v := range s.vectors {
		score := cosine(vec, v)
		if score < threshold {
			continue
		}
		results = append(results, Result{Chunk: s.chunks[i], Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func decodeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != dim*4 {
		return nil, fmt.Errorf("embedding blob size %d does not match dimension %d", len(blob), dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

func encodeVector(vec []float32) []byte {
	blob := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}
