package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// Writer is the build side of the index, used by the ingest job.  All
// chunks are written in one transaction committed by Close; the serving
// core never writes.
type Writer struct {
	db  *sql.DB
	tx  *sql.Tx
	dim int
}

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	source    TEXT NOT NULL,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);
`

// Create opens a fresh index database under dir, replacing any previous
// one.  dimension is the embedding vector length and must match every Add.
func Create(dir string, dimension int) (*Writer, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dimension)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, DBFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("create index %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('dimension', ?)`, fmt.Sprint(dimension)); err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}
	return &Writer{db: db, tx: tx, dim: dimension}, nil
}

// Add stores one embedded chunk.
func (w *Writer) Add(source, text string, vec []float32) error {
	if len(vec) != w.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), w.dim)
	}
	_, err := w.tx.Exec(
		`INSERT INTO chunks (source, text, embedding) VALUES (?, ?, ?)`,
		source, text, encodeVector(vec),
	)
	return err
}

// Close commits the pending chunks and closes the database.
func (w *Writer) Close() error {
	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return err
	}
	return w.db.Close()
}
