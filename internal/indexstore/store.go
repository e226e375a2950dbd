package indexstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

// Store is the per-collection lifecycle manager: creation, idempotent
// writes, comparison-based refresh, and deletion, layered over a borrowed
// vectorstore.Store.
type Store struct {
	vstore     vectorstore.Store
	manifests  *vectorstore.ManifestStore
	hashes     *hashIndex
	triples    *tripleStore
	extractor  *graphextract.Extractor
	numWorkers int
	logger     *logging.Logger

	collectionLocks sync.Map // collection name -> *sync.Mutex
}

// New builds a Store. extractor may be nil if no graph/hybrid collection
// will ever be created; dataDir holds the manifest and content-hash
// sidecars.
func New(vstore vectorstore.Store, dataDir string, extractor *graphextract.Extractor, numWorkers int, logger *logging.Logger) (*Store, error) {
	manifests, err := vectorstore.NewManifestStore(dataDir + "/manifests")
	if err != nil {
		return nil, err
	}
	hashes, err := newHashIndex(dataDir + "/hashes")
	if err != nil {
		return nil, err
	}
	triples, err := newTripleStore(dataDir + "/triplets")
	if err != nil {
		return nil, err
	}
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		vstore:     vstore,
		manifests:  manifests,
		hashes:     hashes,
		triples:    triples,
		extractor:  extractor,
		numWorkers: numWorkers,
		logger:     logger,
	}, nil
}

func (s *Store) lockFor(collection string) *sync.Mutex {
	v, _ := s.collectionLocks.LoadOrStore(collection, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Create provisions a collection's backing store and persists its resolved
// mode and content type. Calling Create again with a different mode than
// the one on record fails Conflict, unless mode is IndexModeAuto, in which
// case the already-resolved mode is honored silently. Calling it again
// with the same mode is a no-op.
//
// IndexModeAuto is resolved, never persisted verbatim: a collection backed
// by a configured graph extractor resolves to graph; otherwise it resolves
// to vector, since there is no graph store to populate.
func (s *Store) Create(ctx context.Context, name string, mode config.IndexMode, vectorSize int, contentType graphextract.ContentKind) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.manifests.Load(name)
	if err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if existing != nil {
		if mode != config.IndexModeAuto && config.IndexMode(existing.Mode) != mode {
			return apperr.New(apperr.ConflictKind, fmt.Sprintf("collection %s already exists with mode %s", name, existing.Mode))
		}
		return nil
	}

	resolvedMode := mode
	if resolvedMode == config.IndexModeAuto {
		if s.extractor != nil {
			resolvedMode = config.IndexModeGraph
		} else {
			resolvedMode = config.IndexModeVector
		}
	}

	exists, err := s.vstore.CollectionExists(ctx, name)
	if err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("checking collection %s", name), err)
	}
	if !exists {
		if err := s.vstore.CreateCollection(ctx, name, vectorSize); err != nil {
			return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("creating collection %s", name), err)
		}
	}

	now := time.Now()
	return s.manifests.Save(&vectorstore.Manifest{
		Collection:  name,
		Mode:        string(resolvedMode),
		ContentType: string(contentType),
		VectorSize:  vectorSize,
		CreatedAt:   now,
	})
}

// Write embeds and upserts nodes into name, idempotent by node id. For
// graph/hybrid collections it additionally extracts and persists triplets.
func (s *Store) Write(ctx context.Context, name string, nodes []splitter.Node) (WriteResult, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return WriteResult{}, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if man == nil {
		return WriteResult{}, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(ctx, name, man, nodes)
}

func (s *Store) extractNodes(ctx context.Context, name string, nodes []splitter.Node, contentType graphextract.ContentKind) error {
	existing, err := s.triples.load(name)
	if err != nil {
		return err
	}

	fresh := make(map[string][]graphextract.Triplet, len(nodes))
	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.numWorkers)

	for _, n := range nodes {
		node := n
		group.Go(func() error {
			triplets, err := s.extractor.ExtractNode(gctx, node, contentType)
			if err != nil {
				return nil // one node's extraction failure doesn't abort the batch
			}
			mu.Lock()
			fresh[node.ID] = triplets
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return s.triples.save(name, upsertTriplets(existing, fresh))
}

// Open returns a read handle, failing NotFound if the collection was never
// created.
func (s *Store) Open(ctx context.Context, name string) (*Handle, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if man == nil {
		return nil, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}
	return &Handle{Name: name, Mode: config.IndexMode(man.Mode)}, nil
}

// Delete removes all points and triplets for a collection. Idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.vstore.CollectionExists(ctx, name)
	if err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("checking collection %s", name), err)
	}
	if exists {
		if err := s.vstore.DeleteCollection(ctx, name); err != nil {
			return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("deleting collection %s", name), err)
		}
	}

	if err := s.manifests.Delete(name); err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("deleting manifest for %s", name), err)
	}
	if err := s.hashes.delete(name); err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("deleting content hashes for %s", name), err)
	}
	if err := s.triples.delete(name); err != nil {
		return apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("deleting triplets for %s", name), err)
	}
	return nil
}

// Refresh compares each input document's stable id and content hash
// against the stored set, writing only new or changed documents. Documents
// not present in docs are left untouched — refresh never deletes.
func (s *Store) Refresh(ctx context.Context, name string, docs []reader.Document, router *splitter.Router) (RefreshResult, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if man == nil {
		return RefreshResult{}, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	stored, err := s.hashes.load(name)
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading content hashes for %s", name), err)
	}

	result := RefreshResult{Total: len(docs)}
	var changed []reader.Document
	for _, doc := range docs {
		hash := contentHash(doc.Text)
		if prior, ok := stored[doc.ID]; ok && prior == hash {
			result.Unchanged++
			continue
		}
		stored[doc.ID] = hash
		changed = append(changed, doc)
	}
	result.Refreshed = len(changed)

	if len(changed) > 0 {
		nodes := router.SplitDocuments(changed)
		if _, err := s.writeLocked(ctx, name, man, nodes); err != nil {
			return result, err
		}
	}

	if err := s.hashes.save(name, stored); err != nil {
		return result, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("saving content hashes for %s", name), err)
	}
	return result, nil
}

// writeLocked performs the AddDocuments + graph-extraction body of Write
// without re-acquiring the per-collection lock, for callers (Refresh) that
// already hold it.
func (s *Store) writeLocked(ctx context.Context, name string, man *vectorstore.Manifest, nodes []splitter.Node) (WriteResult, error) {
	docs := make([]vectorstore.Document, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, vectorstore.Document{
			ID:         n.ID,
			Content:    n.Text,
			Metadata:   n.Metadata,
			Collection: name,
		})
	}

	result := WriteResult{}
	if len(docs) > 0 {
		written, err := s.vstore.AddDocuments(ctx, docs)
		if err != nil {
			return result, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("writing to %s", name), err)
		}
		result.Written = len(written)
		result.Failed = len(docs) - len(written)
	}

	mode := config.IndexMode(man.Mode)
	if (mode == config.IndexModeGraph || mode == config.IndexModeHybrid) && s.extractor != nil {
		if err := s.extractNodes(ctx, name, nodes, graphextract.ContentKind(man.ContentType)); err != nil {
			s.logger.Warn(ctx, "graph extraction failed", zap.String("collection", name), zap.Error(err))
		}
	}

	man.LastIndexed = time.Now()
	if err := s.manifests.Save(man); err != nil {
		s.logger.Warn(ctx, "saving manifest after write", zap.String("collection", name), zap.Error(err))
	}
	return result, nil
}

// Search returns up to k results from name ordered by descending
// similarity, failing NotFound if the collection was never created. This
// is the one read path RetrievalEngine borrows directly, rather than
// reaching around indexstore to the vector client. k<=0 is a valid empty
// query: it returns no results without ever reaching the backend, rather
// than the backend's own rejection of a non-positive limit.
func (s *Store) Search(ctx context.Context, name, query string, k int) ([]vectorstore.SearchResult, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if man == nil {
		return nil, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := s.vstore.SearchInCollection(ctx, name, query, k, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("searching %s", name), err)
	}
	return results, nil
}

// Triplets returns the graph triplets extracted for name's nodes, keyed by
// source node id. Empty for vector-mode collections.
func (s *Store) Triplets(ctx context.Context, name string) (map[string][]graphextract.Triplet, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}
	return s.triples.load(name)
}

// Exists reports whether a collection has ever been created.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return false, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	return man != nil, nil
}

// Stats reports a collection's current shape.
func (s *Store) Stats(ctx context.Context, name string) (Stats, error) {
	man, err := s.manifests.Load(name)
	if err != nil {
		return Stats{}, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("loading manifest for %s", name), err)
	}
	if man == nil {
		return Stats{}, apperr.NotFound(fmt.Sprintf("collection %s", name))
	}

	info, err := s.vstore.GetCollectionInfo(ctx, name)
	if err != nil {
		return Stats{}, apperr.Wrap(apperr.BackendErrorKind, fmt.Sprintf("reading collection info for %s", name), err)
	}

	return Stats{
		Name:        name,
		Mode:        config.IndexMode(man.Mode),
		PointCount:  info.PointCount,
		VectorSize:  info.VectorSize,
		LastIndexed: man.LastIndexed,
	}, nil
}
