// Package splitter turns loaded Documents into a flat, ordered sequence of
// Nodes, choosing a code-aware or sentence-aware strategy per document
// extension.
package splitter

import (
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

// Node is a single chunk derived from a Document, ready for embedding.
type Node struct {
	ID         string
	DocRef     string
	Text       string
	ChunkIndex int
	Metadata   map[string]interface{}
}

// Splitter turns one Document into an ordered slice of Nodes.
type Splitter interface {
	Split(doc reader.Document) []Node
}

// codeExtensions are the languages CodeSplitter's line-window strategy
// applies to; everything else falls to SentenceSplitter.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".java": true, ".cpp": true, ".c": true, ".cs": true, ".go": true,
	".rs": true, ".php": true, ".rb": true, ".scala": true, ".kt": true,
	".swift": true, ".m": true, ".r": true, ".sql": true,
}

// Router dispatches each document to CodeSplitter or SentenceSplitter based
// on its file extension, read from Metadata["file"] when present.
type Router struct {
	Code     *CodeSplitter
	Sentence *SentenceSplitter
}

// NewRouter builds a Router with the spec-default code window and the
// configured sentence chunk size/overlap.
func NewRouter(chunkSize, chunkOverlap int) (*Router, error) {
	sentence, err := NewSentenceSplitter(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Router{
		Code:     NewCodeSplitter(),
		Sentence: sentence,
	}, nil
}

// SplitDocuments splits every document in docs, in order, concatenating
// their resulting nodes. Each node's ChunkIndex is scoped to its own
// source document, matching the per-document provenance Documents carry.
func (r *Router) SplitDocuments(docs []reader.Document) []Node {
	var nodes []Node
	for _, doc := range docs {
		if isCodeFile(doc) {
			nodes = append(nodes, r.Code.Split(doc)...)
		} else {
			nodes = append(nodes, r.Sentence.Split(doc)...)
		}
	}
	return nodes
}

func isCodeFile(doc reader.Document) bool {
	name, _ := doc.Metadata["file"].(string)
	if name == "" {
		name = doc.ID
	}
	return codeExtensions[strings.ToLower(filepath.Ext(name))]
}

func mergeMetadata(base map[string]interface{}, chunkIndex int) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out["chunk_index"] = chunkIndex
	return out
}
