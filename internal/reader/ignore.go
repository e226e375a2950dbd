package reader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignoreParser reads gitignore-style files under a directory root and
// converts their patterns into doublestar-compatible globs DirectoryReader
// can match against, falling back to config's exclude_patterns when a
// project carries no ignore file of its own.
type ignoreParser struct {
	ignoreFiles      []string
	fallbackPatterns []string
}

func newIgnoreParser(fallbackPatterns []string) *ignoreParser {
	return &ignoreParser{
		ignoreFiles:      []string{".gitignore", ".dockerignore", ".ctxsearchignore"},
		fallbackPatterns: fallbackPatterns,
	}
}

// patterns returns the combined, deduplicated exclude patterns for root, or
// the fallback set if none of the known ignore files exist.
func (p *ignoreParser) patterns(root string) ([]string, error) {
	var out []string
	foundAny := false

	for _, name := range p.ignoreFiles {
		filePatterns, err := p.parseFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out = append(out, filePatterns...)
		foundAny = true
	}

	if !foundAny {
		return p.fallbackPatterns, nil
	}
	return deduplicate(out), nil
}

func (p *ignoreParser) parseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pattern := parseIgnoreLine(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseIgnoreLine converts one gitignore-style line into a glob pattern, or
// "" for comments, blank lines, and negations (unsupported here, as in the
// ignore parser this is adapted from).
func parseIgnoreLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}
	return toGlobPattern(line)
}

func toGlobPattern(pattern string) string {
	pattern = strings.TrimPrefix(pattern, "/")

	if strings.HasSuffix(pattern, "/") {
		return pattern + "**"
	}
	if !strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "*") {
		pattern = "**/" + pattern
	}
	if !strings.HasSuffix(pattern, "/**") && !strings.HasSuffix(pattern, "/*") && !strings.Contains(pattern, ".") {
		pattern += "/**"
	}
	return pattern
}

func deduplicate(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
