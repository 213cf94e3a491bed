package agentflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/app/capability"
	"github.com/quaysidelabs/quayside-agent/internal/domain"
	"github.com/quaysidelabs/quayside-agent/internal/observability"
)

// ErrDependencyUnsatisfied marks a step whose prerequisites did not
// complete. The step's capability is never invoked in that case.
var ErrDependencyUnsatisfied = errors.New("dependency unsatisfied")

// Router selects the next ready step and dispatches it to its
// capability. Execution is strictly by increasing index; independent
// steps are not reordered.
type Router struct {
	registry *capability.Registry
	timeout  time.Duration
}

func NewRouter(registry *capability.Registry, timeout time.Duration) *Router {
	return &Router{registry: registry, timeout: timeout}
}

// NextReady returns the step at cursor when all of its dependencies
// have completed, nil when the cursor is past the last step, and
// ErrDependencyUnsatisfied when a prerequisite is missing.
func (r *Router) NextReady(plan *domain.Plan, cursor int) (*domain.PlanStep, error) {
	if cursor >= len(plan.Steps) {
		return nil, nil
	}

	step := &plan.Steps[cursor]
	for _, dep := range step.DependsOn {
		if plan.Steps[dep-1].Status != domain.StepCompleted {
			return step, fmt.Errorf("step %d: prerequisite step %d is %s: %w",
				step.Step, dep, plan.Steps[dep-1].Status, ErrDependencyUnsatisfied)
		}
	}
	return step, nil
}

// Dispatch invokes the step's capability synchronously with a per-call
// timeout. On failure the step is marked failed and the error is
// captured on it; the failure is surfaced to the Reflector, never
// raised.
func (r *Router) Dispatch(ctx context.Context, plan *domain.Plan, step *domain.PlanStep) {
	log := observability.LoggerFromContext(ctx).With(
		"component", "router",
		"step", step.Step,
		"capability", step.Capability,
	)

	executor, err := r.registry.Resolve(step.Capability)
	if err != nil {
		step.Status = domain.StepFailed
		step.Err = err.Error()
		log.Error("no executor for step", "error", err)
		return
	}

	step.Status = domain.StepRunning
	log.Info("dispatching step", "task", step.Task)

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := executor.Invoke(callCtx, step.Task, r.buildParams(plan, step))
	elapsed := time.Since(start)

	if err != nil {
		step.Status = domain.StepFailed
		step.Err = err.Error()
		log.Error("step failed", "error", err, "elapsed_ms", elapsed.Milliseconds())
		return
	}

	step.Status = domain.StepCompleted
	step.Result = result
	log.Info("step completed", "elapsed_ms", elapsed.Milliseconds())
}

// buildParams copies the step's parameter hints and injects the results
// of its completed dependencies under "dependency_results".
func (r *Router) buildParams(plan *domain.Plan, step *domain.PlanStep) map[string]any {
	params := make(map[string]any, len(step.Params)+1)
	for key, value := range step.Params {
		params[key] = value
	}

	if len(step.DependsOn) > 0 {
		results := make([]string, 0, len(step.DependsOn))
		for _, dep := range step.DependsOn {
			results = append(results, plan.Steps[dep-1].Result)
		}
		params["dependency_results"] = results
	}
	return params
}
