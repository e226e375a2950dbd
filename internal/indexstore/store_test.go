package indexstore

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

// fakeVectorStore is an in-memory vectorstore.Store double: every point
// scores 1 and results come back in ascending ID order, which is enough to
// exercise indexstore's idempotency and comparison logic without a real
// similarity model.
type fakeVectorStore struct {
	collections map[string]int // name -> vectorSize
	points      map[string]map[string]vectorstore.Document
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{
		collections: map[string]int{},
		points:      map[string]map[string]vectorstore.Document{},
	}
}

func (f *fakeVectorStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if f.points[d.Collection] == nil {
			f.points[d.Collection] = map[string]vectorstore.Document{}
		}
		f.points[d.Collection][d.ID] = d
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (f *fakeVectorStore) SearchInCollection(ctx context.Context, collectionName, query string, k int, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	var results []vectorstore.SearchResult
	for id, d := range f.points[collectionName] {
		results = append(results, vectorstore.SearchResult{ID: id, Content: d.Content, Score: 1, Metadata: d.Metadata})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeVectorStore) ExactSearch(ctx context.Context, collectionName, query string, k int) ([]vectorstore.SearchResult, error) {
	return f.SearchInCollection(ctx, collectionName, query, k, nil)
}

func (f *fakeVectorStore) DeleteDocuments(ctx context.Context, collectionName string, ids []string) error {
	for _, id := range ids {
		delete(f.points[collectionName], id)
	}
	return nil
}

func (f *fakeVectorStore) CreateCollection(ctx context.Context, collectionName string, vectorSize int) error {
	if _, ok := f.collections[collectionName]; ok {
		return vectorstore.ErrCollectionExists
	}
	f.collections[collectionName] = vectorSize
	return nil
}

func (f *fakeVectorStore) DeleteCollection(ctx context.Context, collectionName string) error {
	delete(f.collections, collectionName)
	delete(f.points, collectionName)
	return nil
}

func (f *fakeVectorStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	_, ok := f.collections[collectionName]
	return ok, nil
}

func (f *fakeVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeVectorStore) GetCollectionInfo(ctx context.Context, collectionName string) (*vectorstore.CollectionInfo, error) {
	return &vectorstore.CollectionInfo{
		Name:       collectionName,
		PointCount: len(f.points[collectionName]),
		VectorSize: f.collections[collectionName],
	}, nil
}

func (f *fakeVectorStore) Close() error { return nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(newFakeVectorStore(), t.TempDir(), nil, 2, nil)
	require.NoError(t, err)
	return store
}

// fakeLLM always completes with a fixed reply, just enough to build an
// Extractor for exercising auto-mode resolution.
type fakeLLM struct{ reply string }

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

func newTestStoreWithExtractor(t *testing.T) *Store {
	t.Helper()
	p, err := prompts.Load()
	require.NoError(t, err)
	extractor := graphextract.New(&fakeLLM{}, p)
	store, err := New(newFakeVectorStore(), t.TempDir(), extractor, 2, nil)
	require.NoError(t, err)
	return store
}

func TestCreateIsIdempotentForSameMode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))

	exists, err := store.Exists(ctx, "proj")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateConflictsOnModeChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	err := store.Create(ctx, "proj", config.IndexModeGraph, 8, graphextract.CodeContent)
	assert.Error(t, err)
}

func TestCreateResolvesAutoModeToGraphWhenExtractorConfigured(t *testing.T) {
	store := newTestStoreWithExtractor(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "proj", config.IndexModeAuto, 8, graphextract.CodeContent))

	handle, err := store.Open(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, config.IndexModeGraph, handle.Mode, "auto must never be persisted verbatim")
}

func TestCreateResolvesAutoModeToVectorWithoutExtractor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "proj", config.IndexModeAuto, 8, graphextract.CodeContent))

	handle, err := store.Open(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, config.IndexModeVector, handle.Mode)
}

func TestCreateWithAutoModeAgainHonorsAlreadyResolvedMode(t *testing.T) {
	store := newTestStoreWithExtractor(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "proj", config.IndexModeAuto, 8, graphextract.CodeContent))
	// A second auto-mode Create must not re-decide or conflict against the
	// mode already on record.
	require.NoError(t, store.Create(ctx, "proj", config.IndexModeAuto, 8, graphextract.CodeContent))

	handle, err := store.Open(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, config.IndexModeGraph, handle.Mode)
}

func TestWriteFailsNotFoundOnUncreatedCollection(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Write(context.Background(), "ghost", nil)
	assert.Error(t, err)
}

func TestWriteIsIdempotentByNodeID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))

	nodes := []splitter.Node{
		{ID: "n1", DocRef: "doc1", Text: "alpha", Metadata: map[string]interface{}{}},
		{ID: "n2", DocRef: "doc1", Text: "beta", Metadata: map[string]interface{}{}},
	}

	result, err := store.Write(ctx, "proj", nodes)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)

	// Re-writing the same node ids overwrites in place rather than duplicating.
	result, err = store.Write(ctx, "proj", nodes)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)

	stats, err := store.Stats(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PointCount)
}

func TestRefreshTotalEqualsRefreshedPlusUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	router, err := splitter.NewRouter(512, 50)
	require.NoError(t, err)

	docs := []reader.Document{
		{ID: "a.md", Text: "First version of document a."},
		{ID: "b.md", Text: "First version of document b."},
	}
	result, err := store.Refresh(ctx, "proj", docs, router)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result.Refreshed+result.Unchanged)
	assert.Equal(t, 2, result.Refreshed)
	assert.Equal(t, 0, result.Unchanged)

	// Second refresh with identical content changes nothing.
	result, err = store.Refresh(ctx, "proj", docs, router)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result.Refreshed+result.Unchanged)
	assert.Equal(t, 0, result.Refreshed)
	assert.Equal(t, 2, result.Unchanged)

	// Changing one document's content refreshes only that one.
	docs[0].Text = "Second, edited version of document a."
	result, err = store.Refresh(ctx, "proj", docs, router)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result.Refreshed+result.Unchanged)
	assert.Equal(t, 1, result.Refreshed)
	assert.Equal(t, 1, result.Unchanged)
}

func TestSearchFailsNotFoundOnUncreatedCollection(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Search(context.Background(), "ghost", "query", 5)
	assert.Error(t, err)
}

func TestSearchWithZeroLimitReturnsEmptyWithoutCallingBackend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))

	results, err := store.Search(ctx, "proj", "query", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExistsReportsFalseBeforeCreate(t *testing.T) {
	store := newTestStore(t)
	exists, err := store.Exists(context.Background(), "proj")
	require.NoError(t, err)
	assert.False(t, exists)
}
