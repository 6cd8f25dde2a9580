// Package vectordb stores document chunks and finds the ones closest to a
// question.
package vectordb

import "context"

// VectorStore stores documents and searches them by embedding similarity.
type VectorStore interface {
	// AddDocuments adds or updates documents in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// EmbedDocuments fills in the Embedding of each document without
	// storing it.
	EmbedDocuments(ctx context.Context, docs []Document) error

	// Search returns up to limit documents most similar to query.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteBySource removes all chunks of the given source document.
	DeleteBySource(ctx context.Context, source string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
