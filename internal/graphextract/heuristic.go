package graphextract

import "regexp"

// declPattern maps a regex with one capture group (the declared name) to
// the entity type it seeds.
type declPattern struct {
	regex      *regexp.Regexp
	entityType EntityType
}

var declPatterns = []declPattern{
	{regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`), Class},
	{regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`), Function},
	{regexp.MustCompile(`\bdef\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), Function},
	{regexp.MustCompile(`\binterface\s+([A-Za-z_][A-Za-z0-9_]*)`), Class},
}

// seedCandidates scans text for declaration syntax and returns the
// distinct entity names found, each typed by the pattern that matched it.
func seedCandidates(text string) []NodeEntity {
	seen := map[string]bool{}
	var candidates []NodeEntity

	for _, p := range declPatterns {
		for _, match := range p.regex.FindAllStringSubmatch(text, -1) {
			name := match[1]
			key := string(p.entityType) + ":" + name
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, NodeEntity{Type: p.entityType, Name: name})
		}
	}
	return candidates
}
