package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemConfig configures the embedded chromem-go vector store.
type ChromemConfig struct {
	// Path is the directory chromem-go persists its gob files to. "~" expands
	// to the user's home directory.
	Path string

	// Compress enables gzip compression of the persisted collection files.
	Compress bool

	// VectorSize is the expected embedding dimension; CreateCollection
	// rejects any other size.
	VectorSize int
}

func (c *ChromemConfig) applyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/ctxsearch/vectorstore"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 384
	}
}

func (c ChromemConfig) validate() error {
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements Store over chromem-go, an embeddable, pure-Go
// vector database with no external service dependency. It is the default
// backend for single-node deployments that would rather not run Qdrant;
// QdrantStore remains the choice for multi-node or larger corpora.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	config   ChromemConfig
	logger   *zap.Logger

	collections sync.Map // collectionName -> vectorSize
}

// NewChromemStore opens (or creates) a persistent chromem-go database at
// cfg.Path.
func NewChromemStore(cfg ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	expandedPath, err := expandChromemPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(expandedPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", expandedPath, err)
	}

	db, err := chromem.NewPersistentDB(expandedPath, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem db: %w", err)
	}

	store := &ChromemStore{db: db, embedder: embedder, config: cfg, logger: logger}

	logger.Info("chromem store opened",
		zap.String("path", expandedPath),
		zap.Bool("compress", cfg.Compress),
		zap.Int("vector_size", cfg.VectorSize),
	)

	return store, nil
}

func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

func (s *ChromemStore) createEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// getCollection looks up an existing collection, passing the embedding
// function explicitly; chromem-go falls back to an OpenAI default embedder
// for persisted collections when nil is passed instead.
func (s *ChromemStore) getCollection(name string) *chromem.Collection {
	return s.db.GetCollection(name, s.createEmbeddingFunc())
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	byCollection := map[string][]Document{}
	for _, d := range docs {
		if d.Collection == "" {
			return nil, fmt.Errorf("document %q has no collection", d.ID)
		}
		byCollection[d.Collection] = append(byCollection[d.Collection], d)
	}

	var ids []string
	for collectionName, group := range byCollection {
		if err := ValidateCollectionName(collectionName); err != nil {
			return nil, err
		}
		collection, err := s.db.GetOrCreateCollection(collectionName, nil, s.createEmbeddingFunc())
		if err != nil {
			return nil, fmt.Errorf("getting/creating collection %s: %w", collectionName, err)
		}
		s.collections.Store(collectionName, s.config.VectorSize)

		texts := make([]string, len(group))
		for i, d := range group {
			texts[i] = d.Content
		}
		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		}

		chromemDocs := make([]chromem.Document, len(group))
		for i, d := range group {
			if d.ID == "" {
				return nil, fmt.Errorf("document at index %d in collection %s has empty ID", i, collectionName)
			}
			chromemDocs[i] = chromem.Document{
				ID:        d.ID,
				Content:   d.Content,
				Metadata:  convertMetadataToString(d.Metadata),
				Embedding: embeddings[i],
			}
			ids = append(ids, d.ID)
		}

		if err := collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
			return nil, fmt.Errorf("adding documents to %s: %w", collectionName, err)
		}
	}

	return ids, nil
}

func (s *ChromemStore) SearchInCollection(ctx context.Context, collectionName, query string, k int, filters map[string]interface{}) ([]SearchResult, error) {
	if err := ValidateCollectionName(collectionName); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	collection := s.getCollection(collectionName)
	if collection == nil {
		return nil, ErrCollectionNotFound
	}

	docCount := collection.Count()
	if docCount == 0 {
		return []SearchResult{}, nil
	}
	if k > docCount {
		k = docCount
	}

	results, err := collection.Query(ctx, query, k, convertMetadataToString(filters), nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collectionName, err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: convertMetadataFromString(r.Metadata),
		}
	}
	return out, nil
}

// ExactSearch performs the same query as SearchInCollection; chromem-go
// always does a brute-force scan (no HNSW index to bypass).
func (s *ChromemStore) ExactSearch(ctx context.Context, collectionName, query string, k int) ([]SearchResult, error) {
	return s.SearchInCollection(ctx, collectionName, query, k, nil)
}

func (s *ChromemStore) DeleteDocuments(ctx context.Context, collectionName string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ValidateCollectionName(collectionName); err != nil {
		return err
	}
	collection := s.getCollection(collectionName)
	if collection == nil {
		return ErrCollectionNotFound
	}

	var failed []string
	for _, id := range ids {
		if err := collection.Delete(ctx, nil, nil, id); err != nil {
			s.logger.Error("failed to delete document",
				zap.String("collection", collectionName),
				zap.String("id", id),
				zap.Error(err),
			)
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to delete %d of %d documents: %v", len(failed), len(ids), failed)
	}
	return nil
}

func (s *ChromemStore) CreateCollection(ctx context.Context, collectionName string, vectorSize int) error {
	if err := ValidateCollectionName(collectionName); err != nil {
		return err
	}
	if vectorSize == 0 {
		vectorSize = s.config.VectorSize
	}
	if vectorSize != s.config.VectorSize {
		return fmt.Errorf("vector size %d does not match configured size %d", vectorSize, s.config.VectorSize)
	}
	if existing := s.getCollection(collectionName); existing != nil {
		return ErrCollectionExists
	}

	if _, err := s.db.CreateCollection(collectionName, nil, s.createEmbeddingFunc()); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return ErrCollectionExists
		}
		return fmt.Errorf("creating collection %s: %w", collectionName, err)
	}
	s.collections.Store(collectionName, vectorSize)
	return nil
}

func (s *ChromemStore) DeleteCollection(ctx context.Context, collectionName string) error {
	if err := ValidateCollectionName(collectionName); err != nil {
		return err
	}
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("deleting collection %s: %w", collectionName, err)
	}
	s.collections.Delete(collectionName)
	return nil
}

func (s *ChromemStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	if err := ValidateCollectionName(collectionName); err != nil {
		return false, err
	}
	return s.getCollection(collectionName) != nil, nil
}

func (s *ChromemStore) ListCollections(ctx context.Context) ([]string, error) {
	collectionsMap := s.db.ListCollections()
	names := make([]string, 0, len(collectionsMap))
	for name := range collectionsMap {
		names = append(names, name)
	}
	return names, nil
}

func (s *ChromemStore) GetCollectionInfo(ctx context.Context, collectionName string) (*CollectionInfo, error) {
	if err := ValidateCollectionName(collectionName); err != nil {
		return nil, err
	}
	collection := s.getCollection(collectionName)
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	vectorSize := s.config.VectorSize
	if v, ok := s.collections.Load(collectionName); ok {
		vectorSize = v.(int)
	}
	return &CollectionInfo{
		Name:       collectionName,
		PointCount: collection.Count(),
		VectorSize: vectorSize,
	}, nil
}

// Close is a no-op: chromem-go persists synchronously on every write.
func (s *ChromemStore) Close() error {
	s.logger.Info("chromem store closed")
	return nil
}

func convertMetadataToString(metadata map[string]interface{}) map[string]string {
	if metadata == nil {
		return nil
	}
	result := make(map[string]string, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			result[k] = val
		case int:
			result[k] = fmt.Sprintf("%d", val)
		case int64:
			result[k] = fmt.Sprintf("%d", val)
		case float64:
			result[k] = fmt.Sprintf("%f", val)
		case bool:
			result[k] = fmt.Sprintf("%t", val)
		default:
			result[k] = fmt.Sprintf("%v", val)
		}
	}
	return result
}

func convertMetadataFromString(metadata map[string]string) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	result := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		result[k] = v
	}
	return result
}

// Ensure ChromemStore implements Store.
var _ Store = (*ChromemStore)(nil)
