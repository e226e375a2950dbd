package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

func TestIsCodeFileUsesMetadataFileExtension(t *testing.T) {
	doc := reader.Document{ID: "abc", Metadata: map[string]interface{}{"file": "service.go"}}
	assert.True(t, isCodeFile(doc))

	doc = reader.Document{ID: "abc", Metadata: map[string]interface{}{"file": "README.md"}}
	assert.False(t, isCodeFile(doc))
}

func TestIsCodeFileFallsBackToDocID(t *testing.T) {
	doc := reader.Document{ID: "main.py"}
	assert.True(t, isCodeFile(doc))
}

func TestMergeMetadataCopiesAndStampsChunkIndex(t *testing.T) {
	base := map[string]interface{}{"file": "a.go"}
	merged := mergeMetadata(base, 3)

	assert.Equal(t, "a.go", merged["file"])
	assert.Equal(t, 3, merged["chunk_index"])
	_, baseHasChunkIndex := base["chunk_index"]
	assert.False(t, baseHasChunkIndex, "mergeMetadata must not mutate base")
}

func TestCapCharsSplitsOnRuneBoundaries(t *testing.T) {
	text := strings.Repeat("a", 10) + strings.Repeat("界", 5)
	pieces := capChars(text, 4)

	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 4)
	}
	assert.Equal(t, text, strings.Join(pieces, ""))
}

func TestCapCharsReturnsWholeTextWhenUnderLimit(t *testing.T) {
	assert.Equal(t, []string{"short"}, capChars("short", 100))
}

func TestCodeSplitterProducesOverlappingWindows(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, "line")
	}
	doc := reader.Document{ID: "file.go", Text: strings.Join(lines, "\n")}

	s := NewCodeSplitter()
	nodes := s.Split(doc)

	// 40-line windows stepping by 25 (15 lines of overlap) start at lines
	// 0, 25, 50 and 75; without the overlap 100 lines would need only 3.
	require.Len(t, nodes, 4)
	for i, n := range nodes {
		assert.Equal(t, i, n.ChunkIndex)
		assert.Equal(t, "file.go", n.DocRef)
		assert.Equal(t, i, n.Metadata["chunk_index"])
	}
}

func TestCodeSplitterEmptyTextYieldsSingleEmptyWindow(t *testing.T) {
	doc := reader.Document{ID: "file.go", Text: ""}
	s := NewCodeSplitter()
	nodes := s.Split(doc)
	require.Len(t, nodes, 1)
	assert.Equal(t, "", nodes[0].Text)
}

func TestSentenceSplitterNumbersNonEmptyChunksInOrder(t *testing.T) {
	s, err := NewSentenceSplitter(40, 10)
	require.NoError(t, err)

	doc := reader.Document{
		ID:   "doc1",
		Text: "First sentence here. Second sentence follows. Third one too. Fourth and final sentence.",
	}
	nodes := s.Split(doc)

	require.NotEmpty(t, nodes)
	for i, n := range nodes {
		assert.Equal(t, i, n.ChunkIndex)
		assert.NotEmpty(t, n.Text)
	}
}

func TestSentenceSplitterEmptyTextYieldsNoNodes(t *testing.T) {
	s, err := NewSentenceSplitter(512, 50)
	require.NoError(t, err)

	assert.Empty(t, s.Split(reader.Document{ID: "doc1", Text: "   "}))
}

func TestRouterDispatchesByExtension(t *testing.T) {
	router, err := NewRouter(512, 50)
	require.NoError(t, err)

	docs := []reader.Document{
		{ID: "a.go", Text: "func Foo() {}\nfunc Bar() {}"},
		{ID: "b.md", Text: "This is prose. It has two sentences."},
	}

	nodes := router.SplitDocuments(docs)

	require.NotEmpty(t, nodes)
	var sawGo, sawMd bool
	for _, n := range nodes {
		if n.DocRef == "a.go" {
			sawGo = true
		}
		if n.DocRef == "b.md" {
			sawMd = true
		}
	}
	assert.True(t, sawGo)
	assert.True(t, sawMd)
}
