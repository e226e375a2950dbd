package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := New(&config.Config{
		RedisEnabled: true,
		RedisHost:    mr.Host(),
		RedisPort:    port,
		CacheTTLS:    3600,
	})
	require.NoError(t, err)
	require.True(t, c.Enabled())
	return c
}

func TestQueryCacheHitIsDeterministic(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetQuery(ctx, "what owns users", 5, "proj")
	assert.False(t, ok)

	stored := c.PutQuery(ctx, "what owns users", 5, "proj", "UserService owns it.")
	assert.True(t, stored)

	raw, ok := c.GetQuery(ctx, "what owns users", 5, "proj")
	require.True(t, ok)

	var answer string
	require.NoError(t, json.Unmarshal(raw, &answer))
	assert.Equal(t, "UserService owns it.", answer)
}

func TestQueryCacheKeyIsScopedByLimitAndCollection(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.PutQuery(ctx, "query", 5, "proj-a", "answer-a")

	_, ok := c.GetQuery(ctx, "query", 5, "proj-b")
	assert.False(t, ok, "same query against a different collection must miss")

	_, ok = c.GetQuery(ctx, "query", 10, "proj-a")
	assert.False(t, ok, "same query with a different limit must miss")
}

func TestDisabledCacheNeverErrors(t *testing.T) {
	c, err := New(&config.Config{RedisEnabled: false})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	_, ok := c.GetQuery(ctx, "query", 5, "proj")
	assert.False(t, ok)
	assert.False(t, c.PutQuery(ctx, "query", 5, "proj", "answer"))
	assert.NoError(t, c.DeleteQuery(ctx, "query", 5, "proj"))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisDegradesInsteadOfErroring(t *testing.T) {
	c, err := New(&config.Config{
		RedisEnabled: true,
		RedisHost:    "127.0.0.1",
		RedisPort:    1, // nothing listens here
		CacheTTLS:    60,
	})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestIngestionCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ic := c.Ingestion("proj")
	ctx := context.Background()

	type node struct {
		Text string
	}

	found, err := ic.GetNode(ctx, "n1", &node{})
	require.NoError(t, err)
	assert.False(t, found)

	ic.PutNode(ctx, "n1", node{Text: "hello"})

	var out node
	found, err = ic.GetNode(ctx, "n1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", out.Text)
}
