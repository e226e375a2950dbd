package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// IngestionCache namespaces node_id -> transformed_node entries by
// collection, so a refresh can skip re-embedding and re-extracting nodes
// whose source content hasn't changed since the last index run.
type IngestionCache struct {
	cache      *Cache
	collection string
}

// Ingestion scopes c to a single collection's ingestion cache.
func (c *Cache) Ingestion(collection string) *IngestionCache {
	return &IngestionCache{cache: c, collection: collection}
}

func (i *IngestionCache) key(nodeID string) string {
	return fmt.Sprintf("ctxsearch:ingest:%s:%s", i.collection, nodeID)
}

// GetNode returns the cached transformed node for nodeID, if present.
func (i *IngestionCache) GetNode(ctx context.Context, nodeID string, out interface{}) (bool, error) {
	if !i.cache.enabled {
		return false, nil
	}
	val, err := i.cache.client.Get(ctx, i.key(nodeID)).Bytes()
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("decoding cached node %s: %w", nodeID, err)
	}
	return true, nil
}

// PutNode stores the transformed node for nodeID with the cache's default
// TTL, so an unchanged source file can skip re-extraction on the next
// refresh within that window.
func (i *IngestionCache) PutNode(ctx context.Context, nodeID string, node interface{}) {
	if !i.cache.enabled {
		return
	}
	data, err := json.Marshal(node)
	if err != nil {
		return
	}
	_ = i.cache.client.Set(ctx, i.key(nodeID), data, i.cache.ttl).Err()
}
