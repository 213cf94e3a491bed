package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Research is a generic LLM-backed capability. One instance is
// registered per analysis angle (market, financial, news); only the
// persona in the prompt differs.
type Research struct {
	llm     domain.LLMClient
	name    string
	persona string
}

func NewResearch(llm domain.LLMClient, name, persona string) *Research {
	return &Research{llm: llm, name: name, persona: persona}
}

func (r *Research) Name() string { return r.name }

func (r *Research) Invoke(ctx context.Context, task string, params map[string]any) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s covering Hong Kong listed companies.\n\n", r.persona)
	fmt.Fprintf(&b, "Task: %s\n", task)

	if code, ok := params["stock_code"].(string); ok && code != "" {
		fmt.Fprintf(&b, "Instrument: %s\n", code)
	}
	for _, dep := range dependencyResults(params) {
		fmt.Fprintf(&b, "\nEarlier finding:\n%s\n", dep)
	}
	b.WriteString("\nAnswer concisely with concrete facts where possible.")

	answer, err := r.llm.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("%s capability: %w", r.name, err)
	}
	return answer, nil
}

// dependencyResults tolerates both []string and the []any the params
// map carries after a JSON round trip.
func dependencyResults(params map[string]any) []string {
	switch deps := params["dependency_results"].(type) {
	case []string:
		return deps
	case []any:
		out := make([]string, 0, len(deps))
		for _, d := range deps {
			if s, ok := d.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
