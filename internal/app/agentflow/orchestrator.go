package agentflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
	"github.com/quaysidelabs/quayside-agent/internal/observability"
)

// NoAnswerSentinel is returned when a run produced no results at all.
const NoAnswerSentinel = "Sorry, I could not produce an answer for this query."

// ContextSource assembles the layered request context. It never fails;
// unavailable layers come back empty.
type ContextSource interface {
	Build(ctx context.Context, query string, userID domain.UserID, sessionID domain.SessionID) *domain.ContextLayers
}

// RunResult is the orchestrator's public outcome. Run never panics or
// returns an error value; all failure is captured here.
type RunResult struct {
	Answer        string                   `json:"answer"`
	StepsExecuted int                      `json:"steps_executed"`
	Reflection    *domain.ReflectionResult `json:"final_reflection,omitempty"`
	Success       bool                     `json:"success"`
	Err           string                   `json:"error,omitempty"`
}

// Deps are the orchestrator's collaborators, injected by the
// composition root.
type Deps struct {
	Context   ContextSource
	Planner   *Planner
	Reflector *Reflector
	Router    *Router
	Sessions  domain.SessionMemory
	Profiles  domain.ProfileMemory
}

// Orchestrator drives one request through the state machine
// BuildContext -> Plan -> {Route -> Execute -> Reflect}* -> Finalize.
// Runs are strictly sequential; concurrent requests each get their own
// RunState and share only the memory stores.
type Orchestrator struct {
	deps       Deps
	maxRetries int
	runTimeout time.Duration
	now        func() time.Time
}

func NewOrchestrator(deps Deps, maxRetries int, runTimeout time.Duration) *Orchestrator {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Orchestrator{
		deps:       deps,
		maxRetries: maxRetries,
		runTimeout: runTimeout,
		now:        time.Now,
	}
}

// Run executes one request end to end. A panic escaping the state
// machine is recovered at this boundary and reported as a failed
// result, never rethrown.
func (o *Orchestrator) Run(ctx context.Context, query string, userID domain.UserID, sessionID domain.SessionID) (res RunResult) {
	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Error("orchestrator panic", "panic", r)
			res = RunResult{
				Answer:  NoAnswerSentinel,
				Success: false,
				Err:     fmt.Sprintf("orchestrator failure: %v", r),
			}
		}
	}()

	if sessionID == "" {
		sessionID = "default"
	}

	if o.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"user_id", userID,
	)
	log.Info("run started", "query", query)

	rs := newRunState(query, userID, sessionID)
	state := StateBuildContext
	var runErr error

	for state != StateTerminal {
		// Cooperative cancellation check at every transition.
		if err := ctx.Err(); err != nil && state != StateFinalize {
			log.Warn("run deadline reached, finalizing with partial results", "state", state)
			runErr = err
			state = StateFinalize
			continue
		}

		switch state {
		case StateBuildContext:
			rs.Context = o.deps.Context.Build(ctx, query, userID, sessionID)
			state = StatePlan

		case StatePlan:
			rs.Plan = o.deps.Planner.CreatePlan(ctx, query, o.loadProfile(ctx, userID))
			state = StateRoute

		case StateRoute:
			step, err := o.deps.Router.NextReady(rs.Plan, rs.Cursor)
			switch {
			case step == nil:
				state = StateFinalize
			case err != nil:
				// Prerequisite failed; the step can never run. Record
				// the failure and surface it to the reflector.
				step.Status = domain.StepFailed
				step.Err = err.Error()
				rs.Cursor++
				rs.recordOutcome(step)
				state = StateReflect
			default:
				state = StateExecute
			}

		case StateExecute:
			step := &rs.Plan.Steps[rs.Cursor]
			o.deps.Router.Dispatch(ctx, rs.Plan, step)
			rs.Cursor++
			rs.recordOutcome(step)
			state = StateReflect

		case StateReflect:
			state = o.reflect(ctx, rs)

		case StateFinalize:
			if err := o.finalize(ctx, rs); err != nil {
				log.Error("finalize persistence failed", "error", err)
				runErr = err
			}
			state = StateTerminal
		}
	}

	res = RunResult{
		Answer:        rs.FinalAnswer,
		StepsExecuted: rs.StepsExecuted,
		Reflection:    rs.Reflection,
		Success:       runErr == nil,
	}
	if runErr != nil {
		res.Err = runErr.Error()
	}

	log.Info("run finished",
		"steps_executed", res.StepsExecuted,
		"success", res.Success,
		"retries", rs.RetryCount,
		"errors", rs.ErrorCount)
	return res
}

// reflect scores the latest outcome and picks the next state. A retry
// request with remaining budget rolls the cursor back so the same step
// executes again; a plain continue advances to the next step.
func (o *Orchestrator) reflect(ctx context.Context, rs *RunState) State {
	latest := rs.lastExecuted()
	ref := o.deps.Reflector.Reflect(ctx, rs.Query, rs.Plan, rs.Cursor-1, latest)
	rs.Reflection = ref

	if !o.deps.Reflector.ShouldContinue(ref, o.maxRetries, rs.RetryCount) {
		return StateFinalize
	}

	if ref.ShouldRetry && rs.Cursor > 0 {
		rs.RetryCount++
		rs.Cursor--
		rs.dropLastOutcome()
		step := &rs.Plan.Steps[rs.Cursor]
		step.Status = domain.StepPending
		step.Result = ""
		step.Err = ""
		observability.LoggerFromContext(ctx).Info("retrying step",
			"step", step.Step,
			"retry", rs.RetryCount,
			"max_retries", o.maxRetries)
		return StateRoute
	}

	if rs.Cursor < len(rs.Plan.Steps) {
		return StateRoute
	}
	return StateFinalize
}

// finalize composes the final answer from the transcript and persists
// the (query, answer) pair to session and profile memory.
func (o *Orchestrator) finalize(ctx context.Context, rs *RunState) error {
	rs.FinalAnswer = composeAnswer(rs.Results)

	now := o.now()
	messages := []*domain.Message{
		{
			ID:        domain.MessageID(uuid.NewString()),
			SessionID: rs.SessionID,
			Role:      domain.RoleUser,
			Content:   rs.Query,
			CreatedAt: now,
		},
		{
			ID:        domain.MessageID(uuid.NewString()),
			SessionID: rs.SessionID,
			Role:      domain.RoleAssistant,
			Content:   rs.FinalAnswer,
			CreatedAt: now,
		},
	}

	// Persistence runs outside the run deadline so a timed-out run
	// still leaves a transcript.
	persistCtx := context.WithoutCancel(ctx)
	for _, msg := range messages {
		if err := o.deps.Sessions.AppendMessage(persistCtx, msg); err != nil {
			return fmt.Errorf("appending transcript: %w", err)
		}
	}

	if rs.UserID == "" {
		return nil
	}

	profile := o.loadProfile(persistCtx, rs.UserID)
	if profile == nil {
		profile = domain.NewUserProfile(rs.UserID, now)
	}
	profile.RecordQuery(rs.Query, queryCategory(rs.Context), now)
	if err := o.deps.Profiles.SaveProfile(persistCtx, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// loadProfile fetches the user's profile, treating absence as nil.
func (o *Orchestrator) loadProfile(ctx context.Context, userID domain.UserID) *domain.UserProfile {
	if userID == "" {
		return nil
	}
	profile, err := o.deps.Profiles.Profile(ctx, userID)
	if err != nil {
		return nil
	}
	return profile
}

// composeAnswer applies the finalize rules: zero results -> sentinel,
// one result -> verbatim, several -> enumerated concatenation.
func composeAnswer(results []StepResult) string {
	rendered := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != "" {
			rendered = append(rendered, fmt.Sprintf(
				"Step %d (%s) could not be completed: %s", res.Step, res.Task, res.Err))
			continue
		}
		if res.Answer != "" {
			rendered = append(rendered, res.Answer)
		}
	}

	switch len(rendered) {
	case 0:
		return NoAnswerSentinel
	case 1:
		return rendered[0]
	}

	var b strings.Builder
	b.WriteString("Combined findings:\n")
	for i, answer := range rendered {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, answer)
	}
	return strings.TrimSpace(b.String())
}

func queryCategory(layers *domain.ContextLayers) string {
	if layers == nil || len(layers.Domain.Entities.DocumentTypes) == 0 {
		return ""
	}
	return layers.Domain.Entities.DocumentTypes[0]
}
