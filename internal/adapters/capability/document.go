// Package capability holds concrete capability executors. The core is
// agnostic to them; they only satisfy domain.Capability.
package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Document is the default capability: it answers announcement questions
// by combining best-effort instrument summaries with a model call.
type Document struct {
	llm    domain.LLMClient
	lookup domain.DomainLookup
}

func NewDocument(llm domain.LLMClient, lookup domain.DomainLookup) *Document {
	return &Document{llm: llm, lookup: lookup}
}

func (d *Document) Name() string {
	return "document"
}

func (d *Document) Invoke(ctx context.Context, task string, params map[string]any) (string, error) {
	var b strings.Builder
	b.WriteString("You are an HKEX announcement analyst. Complete this task:\n")
	b.WriteString(task)

	if code, ok := params["stock_code"].(string); ok && d.lookup != nil {
		summary, err := d.lookup.LookupInstrument(ctx, code)
		if err == nil && summary != nil {
			fmt.Fprintf(&b, "\n\nKnown instrument: %s (%s), %d filings on record.",
				summary.Name, summary.Code, summary.DocumentCount)
		}
	}

	if results := params["dependency_results"]; results != nil {
		fmt.Fprintf(&b, "\n\nEarlier step results: %v", results)
	}

	answer, err := d.llm.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("document capability: %w", err)
	}
	return answer, nil
}
