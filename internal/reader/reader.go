// Package reader implements the ReaderAdapters resource layer: pluggable
// sources that each produce a sequence of Documents for the splitter and
// index store to consume.
package reader

import "context"

// Document is a single loaded unit of content before chunking.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
}

// Reader loads documents from a single source string, whose meaning is
// reader-specific: a filesystem path, a URL, an "owner/repo" slug.
type Reader interface {
	LoadDocuments(ctx context.Context, source string) ([]Document, error)
}
