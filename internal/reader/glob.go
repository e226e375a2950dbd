package reader

import (
	"regexp"
	"strings"
	"sync"
)

// globCache memoizes the regexp compiled for each glob pattern, since the
// same exclude pattern is matched against every file in a directory walk.
var (
	globCache   = map[string]*regexp.Regexp{}
	globCacheMu sync.Mutex
)

// matchGlob reports whether path matches a gitignore-derived glob pattern
// that may contain "**" (any number of path segments) and "*" (anything but
// a path separator). path/filepath.Match has no "**" support, and no
// example in the corpus imports a dedicated doublestar library, so this is
// a small stdlib regexp translation kept local to this package.
func matchGlob(pattern, path string) bool {
	globCacheMu.Lock()
	re, ok := globCache[pattern]
	if !ok {
		re = compileGlob(pattern)
		globCache[pattern] = re
	}
	globCacheMu.Unlock()
	return re.MatchString(path)
}

func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(pattern) {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString("(.*/)?")
			i += 3
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		case strings.ContainsRune(`.+()|[]{}^$\`, rune(pattern[i])):
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		default:
			b.WriteByte(pattern[i])
			i++
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
