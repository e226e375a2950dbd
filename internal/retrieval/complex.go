package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
)

const complexSearchK = 8

// AnswerComplex decomposes query into sub-questions via the complex LLM,
// answers each against collections, and synthesizes a final answer. A
// sub-question that fails to answer is embedded as an error string in its
// place rather than aborting the whole query.
func (e *Engine) AnswerComplex(ctx context.Context, query string, collections []string) (string, error) {
	if len(collections) == 0 {
		return noIndexedProjects, nil
	}

	subQuestions, err := e.decompose(ctx, query)
	if err != nil {
		return "", err
	}
	if len(subQuestions) == 0 {
		subQuestions = []string{query}
	}

	subAnswers := make([]string, len(subQuestions))
	for i, sq := range subQuestions {
		answer, err := e.answerAcross(ctx, sq, collections)
		if err != nil {
			subAnswers[i] = fmt.Sprintf("(could not answer %q: %v)", sq, err)
			continue
		}
		subAnswers[i] = answer
	}

	return e.synthesizeComplex(ctx, query, subQuestions, subAnswers)
}

// answerAcross searches every collection for sq and concatenates the
// non-empty answers.
func (e *Engine) answerAcross(ctx context.Context, sq string, collections []string) (string, error) {
	var parts []string
	for _, c := range collections {
		answer, err := e.Search(ctx, sq, c, complexSearchK)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", c, answer))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no collection answered this sub-question")
	}
	return strings.Join(parts, "\n"), nil
}

func (e *Engine) decompose(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Break this question into a short numbered list of focused sub-questions that together answer it. "+
			"Reply with one sub-question per line, no numbering or other text.\n\nQuestion: %s", query)

	reply, err := e.resources.LLM(llm.KindComplex).Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var subQuestions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		subQuestions = append(subQuestions, line)
	}
	return subQuestions, nil
}

func (e *Engine) synthesizeComplex(ctx context.Context, query string, subQuestions, subAnswers []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Original question: %s\n\n", query)
	for i, sq := range subQuestions {
		fmt.Fprintf(&b, "Sub-question: %s\nAnswer: %s\n\n", sq, subAnswers[i])
	}
	b.WriteString("Synthesize a single coherent answer to the original question from the sub-answers above.")

	answer, err := e.resources.LLM(llm.KindComplex).Complete(ctx, b.String())
	if err != nil {
		return "", err
	}
	return answer, nil
}
