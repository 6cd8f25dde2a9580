package vectordb

import "time"

// Document is a chunk of a source document stored for retrieval.
// Embedding is computed on add when empty.
type Document struct {
	ID        string
	Content   string
	Metadata  DocumentMetadata
	Embedding []float32
}

// DocumentMetadata describes where a chunk came from.
type DocumentMetadata struct {
	Source      string
	ChunkIndex  int
	ContentHash string
	IndexedAt   time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	Source *string
}
