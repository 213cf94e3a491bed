package llm

import (
	"context"
	"strings"
)

const mockPlanResponse = `{
  "steps": [
    {"step": 1, "task": "Answer the query from available announcement data", "capability": "document", "params": {}, "depends_on": []}
  ],
  "reasoning": "mock planner: single-step plan",
  "is_simple": true
}`

const mockReflectionResponse = `{
  "is_complete": true,
  "quality_score": 0.9,
  "completeness_score": 0.9,
  "accuracy_score": 0.9,
  "consistency_score": 0.9,
  "missing_info": [],
  "suggested_actions": [],
  "should_retry": false,
  "summary": "mock reflector: pass"
}`

// MockLLM is the local-mode model client. By default it sniffs the
// prompt and returns a canned plan, reflection or answer; tests can
// override CompleteFunc for scripted behavior.
type MockLLM struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}

	switch {
	case strings.Contains(prompt, "task-planning expert"):
		return mockPlanResponse, nil
	case strings.Contains(prompt, "result-quality assessor"):
		return mockReflectionResponse, nil
	default:
		return "Mock answer based on locally available announcement data.", nil
	}
}
