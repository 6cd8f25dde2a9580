package vectordb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/kb-assist/internal/embeddings"
)

const (
	collectionName = "sop"
	exportFile     = "chromem.gob.gz"
)

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedder:   embedder,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  metadataToMap(doc.Metadata),
			Embedding: doc.Embedding,
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, runtime.NumCPU())
}

func (s *ChromemStore) EmbedDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("%s returned %d embeddings for %d documents", s.embedder.Name(), len(vectors), len(docs))
	}
	for i := range docs {
		docs[i].Embedding = vectors[i]
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 3
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	limit = min(limit, count)

	results, err := s.collection.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}
	return searchResults, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	return s.collection.Delete(ctx, map[string]string{"source": source}, nil)
}

func (s *ChromemStore) Persist(_ context.Context, dir string) error {
	return s.db.ExportToFile(filepath.Join(dir, exportFile), true, "")
}

func (s *ChromemStore) Load(_ context.Context, dir string) error {
	if err := s.db.ImportFromFile(filepath.Join(dir, exportFile), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"source":       m.Source,
		"chunk_index":  strconv.Itoa(m.ChunkIndex),
		"content_hash": m.ContentHash,
		"indexed_at":   m.IndexedAt.Format(time.RFC3339),
	}
}

func mapToMetadata(m map[string]string) DocumentMetadata {
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	indexedAt, _ := time.Parse(time.RFC3339, m["indexed_at"])
	return DocumentMetadata{
		Source:      m["source"],
		ChunkIndex:  chunkIndex,
		ContentHash: m["content_hash"],
		IndexedAt:   indexedAt,
	}
}

func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil || filter.Source == nil {
		return nil
	}
	return map[string]string{"source": *filter.Source}
}
