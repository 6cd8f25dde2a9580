// Package rag answers questions from the SOP document by retrieving the
// closest chunks from the vector store and asking the LLM to answer from
// them alone.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/kb-assist/internal/progress"
	"github.com/ziadkadry99/kb-assist/internal/vectordb"
)

// ErrEmptyIndex is returned when the vector store holds no chunks.
var ErrEmptyIndex = errors.New("vector store is empty; run `kbassist index` first")

// addBatchSize is the number of chunks embedded per EmbedDocuments call, so
// progress can be reported while a large document is indexed.
const addBatchSize = 16

// Indexer builds the vector store from documents on disk.
type Indexer struct {
	Store        vectordb.VectorStore
	Dir          string
	ChunkSize    int
	ChunkOverlap int
	Reporter     progress.Reporter
	Logger       *slog.Logger
}

// BuildStats summarizes an index build.
type BuildStats struct {
	Files  int
	Chunks int
}

// Build reads every file matching pattern (a path or a doublestar glob),
// splits it into chunks, embeds them and persists the store to Dir.
// Existing chunks of a re-indexed file are replaced.
func (ix *Indexer) Build(ctx context.Context, pattern string) (BuildStats, error) {
	logger := ix.logger()
	reporter := ix.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}

	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return BuildStats{}, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return BuildStats{}, fmt.Errorf("no documents match %q", pattern)
	}

	now := time.Now().UTC()
	var docs []vectordb.Document
	var sources []string
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return BuildStats{}, fmt.Errorf("reading %s: %w", path, err)
		}
		source := filepath.ToSlash(path)
		sources = append(sources, source)
		chunks := SplitDocument(string(data), ix.ChunkSize, ix.ChunkOverlap)
		logger.Info("document split", "source", source, "chunks", len(chunks))

		for i, chunk := range chunks {
			sum := sha256.Sum256([]byte(chunk))
			docs = append(docs, vectordb.Document{
				ID:      fmt.Sprintf("%s#%d", source, i),
				Content: chunk,
				Metadata: vectordb.DocumentMetadata{
					Source:      source,
					ChunkIndex:  i,
					ContentHash: hex.EncodeToString(sum[:]),
					IndexedAt:   now,
				},
			})
		}
	}

	// Embed everything before touching the store, so a failed build leaves
	// the previous chunks in place.
	reporter.Start(len(docs))
	for start := 0; start < len(docs); start += addBatchSize {
		end := min(start+addBatchSize, len(docs))
		if err := ix.Store.EmbedDocuments(ctx, docs[start:end]); err != nil {
			reporter.Finish()
			return BuildStats{}, fmt.Errorf("embedding chunks: %w", err)
		}
		reporter.Update(end, docs[end-1].ID)
	}
	reporter.Finish()

	for _, source := range sources {
		if err := ix.Store.DeleteBySource(ctx, source); err != nil {
			return BuildStats{}, fmt.Errorf("clearing %s: %w", source, err)
		}
	}
	if err := ix.Store.AddDocuments(ctx, docs); err != nil {
		return BuildStats{}, fmt.Errorf("storing chunks: %w", err)
	}

	if err := os.MkdirAll(ix.Dir, 0o755); err != nil {
		return BuildStats{}, fmt.Errorf("creating %s: %w", ix.Dir, err)
	}
	if err := ix.Store.Persist(ctx, ix.Dir); err != nil {
		return BuildStats{}, fmt.Errorf("persisting vector store: %w", err)
	}

	stats := BuildStats{Files: len(files), Chunks: len(docs)}
	logger.Info("vector store built", "files", stats.Files, "chunks", stats.Chunks, "dir", ix.Dir)
	return stats, nil
}

// Load reads a previously persisted store from Dir.
func (ix *Indexer) Load(ctx context.Context) error {
	if err := ix.Store.Load(ctx, ix.Dir); err != nil {
		return fmt.Errorf("loading vector store from %s: %w", ix.Dir, err)
	}
	ix.logger().Info("vector store loaded", "chunks", ix.Store.Count())
	return nil
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger != nil {
		return ix.Logger
	}
	return slog.Default()
}
