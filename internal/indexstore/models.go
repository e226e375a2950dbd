// Package indexstore owns per-collection lifecycle: creation, idempotent
// writes, refresh-by-comparison, and deletion, layered over vectorstore.Store
// and (for graph/hybrid collections) graphextract.
package indexstore

import (
	"time"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
)

// WriteResult summarizes a Write call.
type WriteResult struct {
	Written int
	Failed  int
}

// RefreshResult summarizes a Refresh call: Total is the number of input
// documents considered, Refreshed is how many were new or changed,
// Unchanged is how many matched the stored content hash exactly.
type RefreshResult struct {
	Total     int
	Refreshed int
	Unchanged int
}

// Stats describes a collection's current shape.
type Stats struct {
	Name        string
	Mode        config.IndexMode
	PointCount  int
	VectorSize  int
	LastIndexed time.Time
}

// Handle is a read handle on an existing collection, returned by Open.
type Handle struct {
	Name string
	Mode config.IndexMode
}
