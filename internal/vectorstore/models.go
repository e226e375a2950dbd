package vectorstore

// Document is a chunk of ingested content to be embedded and stored.
type Document struct {
	// ID is the unique identifier for the document within its collection.
	ID string

	// Content is the chunk's text.
	Content string

	// Metadata carries filterable attributes: file path, byte offsets,
	// framework, entity kind, and similar chunk provenance.
	Metadata map[string]interface{}

	// Collection is the target collection. It must be set: Store has no
	// implicit default collection, and both Store implementations reject a
	// Document whose Collection is empty.
	Collection string
}

// SearchResult is a single hit from a similarity search.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]interface{}
}

// CollectionInfo describes a collection's shape.
type CollectionInfo struct {
	Name       string `json:"name"`
	PointCount int    `json:"point_count"`
	VectorSize int    `json:"vector_size"`
}
