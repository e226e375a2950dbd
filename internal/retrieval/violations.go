package retrieval

import (
	"context"
	"fmt"
)

const violationSearchK = 5

// FindViolations issues the four fixed SRP/DIP/OCP/DRY probes against
// collection and returns the findings that survive compliance filtering,
// capped at findingsCap.
func (e *Engine) FindViolations(ctx context.Context, collection string) ([]string, error) {
	findings, err := e.runProbes(ctx, collection, violationQueries)
	if err != nil {
		return nil, err
	}

	if len(findings) < minFindingsBeforeSummary {
		summary, err := e.Search(ctx, violationsSummaryQuery, collection, violationSearchK)
		if err == nil && !isCompliant(summary) {
			findings = append(findings, summary)
		}
	}

	if len(findings) > findingsCap {
		findings = findings[:findingsCap]
	}
	return findings, nil
}

// CheckArchitectureCompliance issues the DI/resource-duplication/oversized-
// component/native-framework probes against collection. language is
// interpolated into each probe purely as a prompt hint.
func (e *Engine) CheckArchitectureCompliance(ctx context.Context, collection, language string) ([]string, error) {
	if language == "" {
		language = "this"
	}
	queries := make([]string, len(complianceQueries))
	for i, q := range complianceQueries {
		queries[i] = fmt.Sprintf(q, language)
	}

	findings, err := e.runProbes(ctx, collection, queries)
	if err != nil {
		return nil, err
	}
	if len(findings) > findingsCap {
		findings = findings[:findingsCap]
	}
	return findings, nil
}

// ComplianceLabels names each complianceQueries entry, in order, for
// transports that want a per-check breakdown rather than the bare
// findings list CheckArchitectureCompliance returns.
var ComplianceLabels = []string{
	"Dependency Injection",
	"Resource Duplication",
	"Oversized Components",
	"Native Framework Adoption",
}

// ComplianceReport runs the same probes as CheckArchitectureCompliance but
// returns one labeled, ✅-prefixed-when-compliant entry per check instead
// of discarding the compliant ones, for transports (the HTTP architecture
// endpoint) that report per-check status rather than a findings-only list.
func (e *Engine) ComplianceReport(ctx context.Context, collection, language string) ([]string, bool, error) {
	if language == "" {
		language = "this"
	}

	compliant := true
	items := make([]string, len(complianceQueries))
	for i, q := range complianceQueries {
		answer, err := e.Search(ctx, fmt.Sprintf(q, language), collection, violationSearchK)
		if err != nil {
			return nil, false, err
		}
		if isCompliant(answer) {
			items[i] = fmt.Sprintf("✅ %s: compliant", ComplianceLabels[i])
			continue
		}
		compliant = false
		items[i] = fmt.Sprintf("⚠️ %s: %s", ComplianceLabels[i], answer)
	}
	return items, compliant, nil
}

// runProbes runs each query through Search and keeps only the answers that
// report an actual finding.
func (e *Engine) runProbes(ctx context.Context, collection string, queries []string) ([]string, error) {
	findings := make([]string, 0, len(queries))
	for _, q := range queries {
		answer, err := e.Search(ctx, q, collection, violationSearchK)
		if err != nil {
			return nil, err
		}
		if isCompliant(answer) {
			continue
		}
		findings = append(findings, answer)
	}
	return findings, nil
}
