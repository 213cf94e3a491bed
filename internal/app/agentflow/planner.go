package agentflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
	"github.com/quaysidelabs/quayside-agent/internal/observability"
)

// DefaultCapability receives every step the planner cannot attribute
// and every fallback plan.
const DefaultCapability = "document"

// Planner turns (query, profile) into a Plan via the model capability.
// It never fails: any model or parse error degrades to a deterministic
// single-step fallback plan.
type Planner struct {
	llm     domain.LLMClient
	prompts *PromptSet
}

func NewPlanner(llm domain.LLMClient, prompts *PromptSet) *Planner {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Planner{llm: llm, prompts: prompts}
}

// CreatePlan formats the planning instructions plus the worked-example
// set, invokes the model and parses its output. profile may be nil.
func (p *Planner) CreatePlan(ctx context.Context, query string, profile *domain.UserProfile) *domain.Plan {
	log := observability.LoggerFromContext(ctx).With("component", "planner")

	prompt := fmt.Sprintf(p.prompts.PlannerSystem, query, formatProfileHint(profile))
	prompt += p.prompts.PlannerExamples

	raw, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		log.Error("planner model call failed, using fallback plan", "error", err)
		return p.fallbackPlan(query)
	}

	plan, err := domain.ParsePlan(raw)
	if err != nil {
		log.Warn("planner output unparseable, using fallback plan", "error", err)
		return p.fallbackPlan(query)
	}

	for i := range plan.Steps {
		if plan.Steps[i].Capability == "" {
			plan.Steps[i].Capability = DefaultCapability
		}
	}

	log.Info("plan created", "steps", len(plan.Steps), "is_simple", plan.IsSimple)
	return plan
}

// fallbackPlan is the deterministic single-step plan used whenever the
// model output cannot be trusted.
func (p *Planner) fallbackPlan(query string) *domain.Plan {
	return &domain.Plan{
		Steps: []domain.PlanStep{
			{
				Step:       1,
				Task:       query,
				Capability: DefaultCapability,
				Status:     domain.StepPending,
			},
		},
		Reasoning: "planning failed, falling back to a single-step plan",
		IsSimple:  true,
	}
}

func formatProfileHint(profile *domain.UserProfile) string {
	if profile == nil {
		return "none"
	}

	var b strings.Builder
	if recent := profile.RecentQueries(5); len(recent) > 0 {
		b.WriteString("recent queries: ")
		b.WriteString(strings.Join(recent, "; "))
	}
	for key, value := range profile.Preferences {
		fmt.Fprintf(&b, "\npreference %s: %s", key, value)
	}
	if b.Len() == 0 {
		return "none"
	}
	return b.String()
}
