package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Synthesis merges the results of earlier plan steps into one coherent
// answer. The dispatcher passes completed dependency results in
// params["dependency_results"].
type Synthesis struct {
	llm domain.LLMClient
}

func NewSynthesis(llm domain.LLMClient) *Synthesis {
	return &Synthesis{llm: llm}
}

func (s *Synthesis) Name() string {
	return "synthesize"
}

func (s *Synthesis) Invoke(ctx context.Context, task string, params map[string]any) (string, error) {
	inputs := dependencyResults(params)
	if len(inputs) == 0 {
		return "", fmt.Errorf("synthesize: no dependency results to merge")
	}
	if len(inputs) == 1 {
		return inputs[0], nil
	}

	var b strings.Builder
	b.WriteString("Merge the following partial results into one coherent answer.\n")
	b.WriteString("Task: ")
	b.WriteString(task)
	b.WriteString("\n\n")
	for i, input := range inputs {
		fmt.Fprintf(&b, "Result %d:\n%s\n\n", i+1, input)
	}
	b.WriteString("Answer concisely, keeping concrete figures and dates.")

	answer, err := s.llm.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return answer, nil
}

func dependencyResults(params map[string]any) []string {
	raw, ok := params["dependency_results"].([]string)
	if ok {
		return raw
	}

	// Tolerate the []any shape a JSON round-trip produces.
	list, ok := params["dependency_results"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
