package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
)

func TestMatchGlobDoublestarAndWildcard(t *testing.T) {
	assert.True(t, matchGlob("node_modules/**", "node_modules/a/b.js"))
	assert.True(t, matchGlob("**/node_modules/**", "src/node_modules/a.js"))
	assert.True(t, matchGlob("*.log", "debug.log"))
	assert.False(t, matchGlob("*.log", "debug.log.txt"))
	assert.False(t, matchGlob("node_modules/**", "vendor/a/b.js"))
}

func TestToGlobPatternVariants(t *testing.T) {
	assert.Equal(t, "dist/**", toGlobPattern("dist/"))
	assert.Equal(t, "**/package.json", toGlobPattern("package.json"))
	assert.Equal(t, "*.log", toGlobPattern("*.log"))
	assert.Equal(t, "build/**", toGlobPattern("/build/"))
}

func TestParseIgnoreLineSkipsCommentsBlanksAndNegations(t *testing.T) {
	assert.Equal(t, "", parseIgnoreLine("# a comment"))
	assert.Equal(t, "", parseIgnoreLine(""))
	assert.Equal(t, "", parseIgnoreLine("!keep-me.txt"))
	assert.NotEqual(t, "", parseIgnoreLine("dist/"))
}

func TestDeduplicatePreservesFirstOccurrenceOrder(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, deduplicate([]string{"a", "b", "a", "c", "b"}))
}

func TestDirectoryReaderHonorsExtensionsAndGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not code"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package vendor"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\n"), 0o644))

	r := NewDirectoryReader(config.IndexingConfig{
		Recursive:      true,
		FileExtensions: []string{".go"},
	})

	docs, err := r.LoadDocuments(context.Background(), root)
	require.NoError(t, err)

	var files []string
	for _, d := range docs {
		files = append(files, d.ID)
	}
	assert.Contains(t, files, "main.go")
	assert.NotContains(t, files, "notes.txt")
	assert.NotContains(t, files, "vendor/dep.go")
}

func TestDirectoryReaderRejectsNonDirectoryRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := NewDirectoryReader(config.IndexingConfig{})
	_, err := r.LoadDocuments(context.Background(), file)
	assert.Error(t, err)
}

func TestFormatTurnPrefixesRoleWhenPresent(t *testing.T) {
	assert.Equal(t, "[user]: hello", formatTurn("user", "hello"))
	assert.Equal(t, "hello", formatTurn("", "hello"))
}

func TestFlattenContentHandlesStringAndParts(t *testing.T) {
	assert.Equal(t, "hello", flattenContent([]byte(`"hello"`)))
	assert.Equal(t, "a b", flattenContent([]byte(`[{"text":"a"},{"text":"b"}]`)))
	assert.Equal(t, "", flattenContent([]byte(`123`)))
}

func TestConversationReaderLoadsNDJSONLines(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "chat.ndjson")
	content := `{"role":"user","content":"hi there"}
[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]
not json at all
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewConversationReader(nil)
	docs, err := r.LoadDocuments(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, "[user]: hi there", docs[0].Text)
	assert.Equal(t, "[user]: a", docs[1].Text)
	assert.Equal(t, "[assistant]: b", docs[2].Text)
}

func TestConversationReaderLoadsExportDocument(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "export.json")
	content := `{"conversations":[{"messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"hi"}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewConversationReader(nil)
	docs, err := r.LoadDocuments(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "[user]: hello", docs[0].Text)
	assert.Equal(t, "[assistant]: hi", docs[1].Text)
}
