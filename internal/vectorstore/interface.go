// Package vectorstore defines the embedding and dense-vector storage
// interfaces used by the indexing and retrieval layers, and a Qdrant gRPC
// implementation of Store.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	ErrCollectionNotFound    = errors.New("collection not found")
	ErrCollectionExists      = errors.New("collection already exists")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrEmptyDocuments        = errors.New("empty or nil documents")
	ErrConnectionFailed      = errors.New("failed to connect to qdrant")
	ErrEmbeddingFailed       = errors.New("failed to generate embeddings")
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Embedder generates dense vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates one embedding per input text, in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query string. Some
	// providers (e.g. instructor-style models) encode queries and documents
	// asymmetrically, so this is kept distinct from EmbedDocuments.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the embedding width this provider produces, used to
	// size new collections.
	Dimensions() int
}

// Store is the transport-agnostic interface for dense-vector storage and
// similarity search, implemented over Qdrant's gRPC API.
type Store interface {
	// AddDocuments embeds and upserts docs into the collection named by each
	// Document.Collection. Re-adding a Document with the same ID overwrites
	// it, making ingestion idempotent.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// SearchInCollection returns up to k documents from collectionName
	// ordered by descending similarity to query, restricted to points whose
	// metadata matches every key/value pair in filters.
	SearchInCollection(ctx context.Context, collectionName, query string, k int, filters map[string]interface{}) ([]SearchResult, error)

	// ExactSearch performs brute-force cosine similarity without relying on
	// the HNSW index, for collections too small for the index to have built.
	ExactSearch(ctx context.Context, collectionName, query string, k int) ([]SearchResult, error)

	// DeleteDocuments removes points by ID from a collection.
	DeleteDocuments(ctx context.Context, collectionName string, ids []string) error

	// CreateCollection creates an empty collection sized for vectorSize-wide
	// vectors. Returns ErrCollectionExists if it already exists.
	CreateCollection(ctx context.Context, collectionName string, vectorSize int) error

	// DeleteCollection deletes a collection and all its points.
	DeleteCollection(ctx context.Context, collectionName string) error

	// CollectionExists reports whether collectionName has been created.
	CollectionExists(ctx context.Context, collectionName string) (bool, error)

	// ListCollections returns every collection name known to the store.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionInfo returns point count and vector size for a collection.
	GetCollectionInfo(ctx context.Context, collectionName string) (*CollectionInfo, error)

	// Close releases the underlying connection.
	Close() error
}
