package reader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
	"github.com/fyrsmithlabs/ctxsearch/internal/config"
)

// DirectoryReader recursively walks a root directory, honoring the
// indexing config's file-extension allowlist, explicit include paths, and
// gitignore-derived exclude patterns.
type DirectoryReader struct {
	cfg config.IndexingConfig

	// FilenameAsID makes each Document's ID its root-relative path instead
	// of a generated one, which refresh relies on to detect unchanged files.
	FilenameAsID bool
}

// NewDirectoryReader builds a DirectoryReader from the indexing section of
// Config.
func NewDirectoryReader(cfg config.IndexingConfig) *DirectoryReader {
	return &DirectoryReader{cfg: cfg, FilenameAsID: true}
}

func (r *DirectoryReader) LoadDocuments(ctx context.Context, root string) ([]Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("reading directory %s", root), err)
	}
	if !info.IsDir() {
		return nil, apperr.New(apperr.ReadErrorKind, fmt.Sprintf("%s is not a directory", root))
	}

	parser := newIgnoreParser(r.cfg.ExcludePatterns)
	excludes, err := parser.patterns(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, "reading ignore files", err)
	}

	extSet := make(map[string]bool, len(r.cfg.FileExtensions))
	for _, ext := range r.cfg.FileExtensions {
		extSet[ext] = true
	}

	var docs []Document
	walk := func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && !r.cfg.Recursive {
				return filepath.SkipDir
			}
			if matchesAny(excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(excludes, rel) {
			return nil
		}
		if len(extSet) > 0 && !extSet[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if len(r.cfg.IncludePaths) > 0 && !hasAnyPrefix(rel, r.cfg.IncludePaths) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // unreadable individual file is skipped, not fatal
		}

		id := rel
		if !r.FilenameAsID {
			id = ""
		}

		docs = append(docs, Document{
			ID:   id,
			Text: string(content),
			Metadata: map[string]interface{}{
				"file": rel,
			},
		})
		return nil
	}

	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("walking %s", root), err)
	}

	return docs, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matchGlob(p, path) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, strings.TrimPrefix(p, "./")) {
			return true
		}
	}
	return false
}
