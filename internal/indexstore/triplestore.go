package indexstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
)

// tripleStore persists, per collection, the graph triplets extracted from
// each node, keyed by source node id so re-extraction of an edited node
// overwrites its prior triplets rather than accumulating duplicates.
//
// This service has no dedicated graph database in its stack (the teacher
// has none either); "graph" and "hybrid" collections keep their triplets
// in this JSON sidecar alongside the vector collection's manifest, rather
// than standing up a second storage backend this spec never calls for.
type tripleStore struct {
	dir string
	mu  sync.Mutex
}

func newTripleStore(dir string) (*tripleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating triple store dir %s: %w", dir, err)
	}
	return &tripleStore{dir: dir}, nil
}

func (t *tripleStore) path(collection string) string {
	return filepath.Join(t.dir, collection+".triplets.json")
}

func (t *tripleStore) load(collection string) (map[string][]graphextract.Triplet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]graphextract.Triplet{}, nil
		}
		return nil, fmt.Errorf("reading triplets for %s: %w", collection, err)
	}
	var byNode map[string][]graphextract.Triplet
	if err := json.Unmarshal(data, &byNode); err != nil {
		return nil, fmt.Errorf("decoding triplets for %s: %w", collection, err)
	}
	return byNode, nil
}

func (t *tripleStore) save(collection string, byNode map[string][]graphextract.Triplet) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(byNode)
	if err != nil {
		return fmt.Errorf("encoding triplets for %s: %w", collection, err)
	}
	final := t.path(collection)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing triplets for %s: %w", collection, err)
	}
	return os.Rename(tmp, final)
}

func (t *tripleStore) delete(collection string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.Remove(t.path(collection)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting triplets for %s: %w", collection, err)
	}
	return nil
}

// upsert replaces every triplet previously recorded for each node id present
// in fresh, merging the result into whatever was already stored for other
// nodes.
func upsertTriplets(existing map[string][]graphextract.Triplet, fresh map[string][]graphextract.Triplet) map[string][]graphextract.Triplet {
	if existing == nil {
		existing = map[string][]graphextract.Triplet{}
	}
	for nodeID, triplets := range fresh {
		existing[nodeID] = triplets
	}
	return existing
}
