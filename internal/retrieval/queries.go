package retrieval

import "strings"

// violationQueries are the fixed natural-language probes FindViolations
// issues against a collection, one per principle.
var violationQueries = []string{
	"Find classes or modules that take on more than one responsibility (SRP violations).",
	"Find code that directly instantiates its dependencies instead of receiving them (DIP violations).",
	"Find type-switch or type-dispatch chains that should be polymorphic instead (OCP violations).",
	"Find duplicated logic that should be extracted into a shared function (DRY violations).",
}

var violationsSummaryQuery = "Summarize any other architectural principle violations not already covered."

// complianceQueries are the fixed probes CheckArchitectureCompliance issues.
// Each carries one %s verb for the target language, so callers format it
// with fmt.Sprintf before issuing the query.
var complianceQueries = []string{
	"Find components in this %s codebase that construct their own dependencies instead of receiving them via injection.",
	"Find duplicated resource-management logic (connections, handles, clients) across components in this %s codebase.",
	"Find oversized components in this %s codebase that combine many unrelated concerns.",
	"Find places in this %s codebase that bypass the framework's idioms in favor of ad-hoc, native alternatives.",
}

// compliantPhrases mark a synthesized answer as reporting no finding.
var compliantPhrases = []string{
	"no information",
	"does not contain",
	"do not contain",
	"not contain any",
	"empty response",
}

// isCompliant reports whether answer indicates nothing was found, by any of
// the legacy sentinel phrases or the case-insensitive "empty response"
// substring carried over from the prior generation of this check.
func isCompliant(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range compliantPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

const findingsCap = 6
const minFindingsBeforeSummary = 2
