// Package embeddings turns text into vectors for retrieval.
package embeddings

import "context"

// Embedder generates embeddings for text.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
