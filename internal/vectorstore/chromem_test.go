package vectorstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

// chromemTestEmbedder returns a deterministic, hash-derived embedding per
// text so search ranking is reproducible without a real model.
type chromemTestEmbedder struct{ vectorSize int }

func (e *chromemTestEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *chromemTestEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *chromemTestEmbedder) Dimensions() int { return e.vectorSize }

func (e *chromemTestEmbedder) embed(text string) []float32 {
	hash := 0
	for _, c := range text {
		hash = (hash*31 + int(c)) % 1000
	}
	v := make([]float32, e.vectorSize)
	for i := range v {
		v[i] = float32((hash+i)%100) / 100.0
	}
	return v
}

func newTestChromemStore(t *testing.T) *vectorstore.ChromemStore {
	t.Helper()
	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       t.TempDir(),
		VectorSize: 8,
	}, &chromemTestEmbedder{vectorSize: 8}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestChromemCreateCollectionRejectsDuplicateAndWrongVectorSize(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "proj", 8))
	err := store.CreateCollection(ctx, "proj", 8)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionExists)

	err = store.CreateCollection(ctx, "other", 16)
	assert.Error(t, err, "vector size mismatch against the configured size must be rejected")
}

func TestChromemAddAndSearchRoundTrips(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "alpha document", Collection: "proj", Metadata: map[string]interface{}{"file": "a.go"}},
		{ID: "n2", Content: "beta document", Collection: "proj", Metadata: map[string]interface{}{"file": "b.go"}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2"}, ids)

	results, err := store.SearchInCollection(ctx, "proj", "alpha document", 5, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	info, err := store.GetCollectionInfo(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, 2, info.PointCount)
}

func TestChromemSearchOnMissingCollectionReturnsNotFound(t *testing.T) {
	store := newTestChromemStore(t)
	_, err := store.SearchInCollection(context.Background(), "ghost", "query", 5, nil)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestChromemDeleteDocumentsRemovesThemFromSearch(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "alpha", Collection: "proj"},
		{ID: "n2", Content: "beta", Collection: "proj"},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocuments(ctx, "proj", []string{"n1"}))

	info, err := store.GetCollectionInfo(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, 1, info.PointCount)
}

func TestChromemCollectionExistsAndListCollections(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	exists, err := store.CollectionExists(ctx, "proj")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, "proj", 8))

	exists, err = store.CollectionExists(ctx, "proj")
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "proj")
}
