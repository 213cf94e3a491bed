package agentflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
	"github.com/quaysidelabs/quayside-agent/internal/observability"
)

// DefaultMaxRetries is the retry budget used when no explicit budget is
// configured.
const DefaultMaxRetries = 3

// Reflector scores the latest step's result and decides whether the run
// should retry, advance or stop. Like the Planner it never fails: model
// or parse errors degrade to a default pass-through so forward progress
// is never blocked.
type Reflector struct {
	llm     domain.LLMClient
	prompts *PromptSet
}

func NewReflector(llm domain.LLMClient, prompts *PromptSet) *Reflector {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Reflector{llm: llm, prompts: prompts}
}

// Reflect assesses the step at stepIndex (0-based) against the original
// query and the whole plan.
func (r *Reflector) Reflect(ctx context.Context, query string, plan *domain.Plan, stepIndex int, latest *domain.PlanStep) *domain.ReflectionResult {
	log := observability.LoggerFromContext(ctx).With("component", "reflector")

	prompt := fmt.Sprintf(
		r.prompts.ReflectorSystem,
		query,
		formatPlanOutline(plan),
		stepIndex+1,
		formatStepOutcome(latest),
	)

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		log.Error("reflector model call failed, defaulting to pass", "error", err)
		return defaultPassReflection("assessment unavailable, defaulting to pass")
	}

	ref, err := domain.ParseReflection(raw)
	if err != nil {
		log.Warn("reflector output unparseable, defaulting to pass", "error", err)
		return defaultPassReflection("assessment unparseable, defaulting to pass")
	}

	log.Info("reflection complete",
		"quality_score", ref.QualityScore,
		"is_complete", ref.IsComplete,
		"should_retry", ref.ShouldRetry)
	return ref
}

// ShouldContinue is the continue/stop decision table, first match wins:
//
//  1. complete with quality >= 0.8            -> stop
//  2. retry requested and budget remains      -> continue
//  3. quality < 0.5 and budget remains        -> continue
//  4. otherwise                               -> stop
func (r *Reflector) ShouldContinue(ref *domain.ReflectionResult, maxRetries, retryCount int) bool {
	if ref.IsComplete && ref.QualityScore >= 0.8 {
		return false
	}
	if ref.ShouldRetry && retryCount < maxRetries {
		return true
	}
	if ref.QualityScore < 0.5 && retryCount < maxRetries {
		return true
	}
	return false
}

func defaultPassReflection(summary string) *domain.ReflectionResult {
	return &domain.ReflectionResult{
		IsComplete:        true,
		QualityScore:      0.7,
		CompletenessScore: 0.7,
		AccuracyScore:     0.7,
		ConsistencyScore:  0.7,
		ShouldRetry:       false,
		Summary:           summary,
	}
}

func formatPlanOutline(plan *domain.Plan) string {
	type outlineStep struct {
		Step       int    `json:"step"`
		Task       string `json:"task"`
		Capability string `json:"capability"`
		Status     string `json:"status"`
	}

	outline := make([]outlineStep, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		outline = append(outline, outlineStep{
			Step:       step.Step,
			Task:       step.Task,
			Capability: step.Capability,
			Status:     string(step.Status),
		})
	}

	data, err := json.Marshal(outline)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func formatStepOutcome(step *domain.PlanStep) string {
	if step == nil {
		return "no result"
	}
	if step.Err != "" {
		return fmt.Sprintf("step %d (%s) FAILED: %s", step.Step, step.Capability, step.Err)
	}
	return fmt.Sprintf("step %d (%s) result: %s", step.Step, step.Capability, step.Result)
}
