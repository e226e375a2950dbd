package retrieval

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/cache"
	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

// fakeVectorStore mirrors indexstore's test double: points are returned in
// ID order with a constant score, which is enough to exercise ordering,
// citation shape, and existence-threshold behavior deterministically.
type fakeVectorStore struct {
	collections map[string]int
	points      map[string]map[string]vectorstore.Document
	score       float32
}

func newFakeVectorStore(score float32) *fakeVectorStore {
	return &fakeVectorStore{
		collections: map[string]int{},
		points:      map[string]map[string]vectorstore.Document{},
		score:       score,
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
		results = append(results, vectorstore.SearchResult{ID: id, Content: d.Content, Score: f.score, Metadata: d.Metadata})
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
	return nil, nil
}

func (f *fakeVectorStore) GetCollectionInfo(ctx context.Context, collectionName string) (*vectorstore.CollectionInfo, error) {
	return &vectorstore.CollectionInfo{Name: collectionName, PointCount: len(f.points[collectionName])}, nil
}

func (f *fakeVectorStore) Close() error { return nil }

// fakeLLM always completes with reply, recording every prompt it was asked.
type fakeLLM struct {
	reply   string
	prompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, nil
}

func newTestEngine(t *testing.T, vstore *fakeVectorStore, synth *fakeLLM) *Engine {
	t.Helper()
	return newTestEngineWithCache(t, vstore, synth, disabledCache(t))
}

func disabledCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(&config.Config{RedisEnabled: false})
	require.NoError(t, err)
	return c
}

func enabledCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	c, err := cache.New(&config.Config{
		RedisEnabled: true,
		RedisHost:    mr.Host(),
		RedisPort:    port,
		CacheTTLS:    3600,
	})
	require.NoError(t, err)
	require.True(t, c.Enabled())
	return c
}

func newTestEngineWithCache(t *testing.T, vstore *fakeVectorStore, synth *fakeLLM, c *cache.Cache) *Engine {
	t.Helper()

	store, err := indexstore.New(vstore, t.TempDir(), nil, 2, nil)
	require.NoError(t, err)

	p, err := prompts.Load()
	require.NoError(t, err)

	res := resources.NewFromOptions(resources.Options{
		Config:  &config.Config{},
		FastLLM: synth,
		Complex: synth,
		Alt:     synth,
		Cache:   c,
		Prompts: p,
	})
	return New(store, res)
}

func TestSearchIsNotIndexedOnUncreatedCollection(t *testing.T) {
	engine := newTestEngine(t, newFakeVectorStore(0.9), &fakeLLM{reply: "unused"})
	_, err := engine.Search(context.Background(), "query", "ghost", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not indexed")
}

func TestSearchCachesAnswerDeterministically(t *testing.T) {
	vstore := newFakeVectorStore(0.9)
	synth := &fakeLLM{reply: "UserService owns user persistence."}
	engine := newTestEngineWithCache(t, vstore, synth, enabledCache(t))
	ctx := context.Background()

	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err := vstore.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "UserService persists users.", Collection: "proj", Metadata: map[string]interface{}{"file": "user_service.go"}},
	})
	require.NoError(t, err)

	first, err := engine.Search(ctx, "what owns users", "proj", 3)
	require.NoError(t, err)
	assert.Equal(t, synth.reply, first)
	assert.Len(t, synth.prompts, 1)

	second, err := engine.Search(ctx, "what owns users", "proj", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// A cache hit must not call the LLM again.
	assert.Len(t, synth.prompts, 1)
}

func TestSearchWithDisabledCacheNeverErrorsAndAlwaysResynthesizes(t *testing.T) {
	vstore := newFakeVectorStore(0.9)
	synth := &fakeLLM{reply: "synthesized"}
	engine := newTestEngine(t, vstore, synth)
	ctx := context.Background()

	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err := vstore.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "alpha", Collection: "proj"},
	})
	require.NoError(t, err)

	_, err = engine.Search(ctx, "query", "proj", 3)
	require.NoError(t, err)
	_, err = engine.Search(ctx, "query", "proj", 3)
	require.NoError(t, err)

	assert.Len(t, synth.prompts, 2, "a disabled cache must miss on every call")
}

func TestSearchWithCitationsLengthAtMostK(t *testing.T) {
	vstore := newFakeVectorStore(0.9)
	synth := &fakeLLM{reply: "synthesized answer"}
	engine := newTestEngine(t, vstore, synth)
	ctx := context.Background()

	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err := vstore.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "alpha", Collection: "proj", Metadata: map[string]interface{}{"file": "a.go"}},
		{ID: "n2", Content: "beta", Collection: "proj", Metadata: map[string]interface{}{"file": "b.go"}},
		{ID: "n3", Content: "gamma", Collection: "proj", Metadata: map[string]interface{}{"file": "c.go"}},
	})
	require.NoError(t, err)

	result, err := engine.SearchWithCitations(ctx, "query", "proj", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Citations), 2)
	for i, c := range result.Citations {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestExistsThresholdGatesBoolean(t *testing.T) {
	ctx := context.Background()

	below := newFakeVectorStore(0.5)
	engine := newTestEngine(t, below, &fakeLLM{})
	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err := below.AddDocuments(ctx, []vectorstore.Document{{ID: "n1", Content: "x", Collection: "proj"}})
	require.NoError(t, err)
	result, err := engine.Exists(ctx, "Foo", "proj")
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.InDelta(t, 0.5, result.Confidence, 0.0001)

	above := newFakeVectorStore(0.95)
	engine = newTestEngine(t, above, &fakeLLM{})
	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err = above.AddDocuments(ctx, []vectorstore.Document{{ID: "n1", Content: "x", Collection: "proj"}})
	require.NoError(t, err)
	result, err = engine.Exists(ctx, "Foo", "proj")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
	assert.GreaterOrEqual(t, result.Confidence, existenceThreshold)
}

func TestExistsOnUncreatedCollectionReturnsNotIndexedMessage(t *testing.T) {
	engine := newTestEngine(t, newFakeVectorStore(0.9), &fakeLLM{})
	result, err := engine.Exists(context.Background(), "Foo", "ghost")
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, NotIndexedMessage("ghost"), result.Error)
}

// TestSearchWithZeroLimitNeverCallsBackend exercises the k<=0 boundary: the
// engine must synthesize the empty-result answer without invoking the
// vector backend at all, rather than forwarding a non-positive limit into
// it.
func TestSearchWithZeroLimitNeverCallsBackend(t *testing.T) {
	vstore := newFakeVectorStore(0.9)
	synth := &fakeLLM{reply: "unused"}
	engine := newTestEngine(t, vstore, synth)
	ctx := context.Background()

	require.NoError(t, engine.store.Create(ctx, "proj", config.IndexModeVector, 8, graphextract.CodeContent))
	_, err := vstore.AddDocuments(ctx, []vectorstore.Document{
		{ID: "n1", Content: "alpha", Collection: "proj"},
	})
	require.NoError(t, err)

	answer, err := engine.Search(ctx, "query", "proj", 0)
	require.NoError(t, err)
	assert.Contains(t, answer, "No information found")

	chunks, err := engine.Retrieve(ctx, "query", "proj", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
