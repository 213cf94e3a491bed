package agentflow

import (
	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// State names one node of the orchestration state machine.
type State string

const (
	StateBuildContext State = "build_context"
	StatePlan         State = "plan"
	StateRoute        State = "route"
	StateExecute      State = "execute"
	StateReflect      State = "reflect"
	StateFinalize     State = "finalize"
	StateTerminal     State = "terminal"
)

// StepResult is one executed step's outcome kept on the run transcript.
type StepResult struct {
	Step       int    `json:"step"`
	Capability string `json:"capability"`
	Task       string `json:"task"`
	Answer     string `json:"answer,omitempty"`
	Err        string `json:"error,omitempty"`
}

// RunState is the orchestrator's per-request working memory. It lives
// for exactly one run and is mutated only by the orchestrator.
type RunState struct {
	Query     string
	UserID    domain.UserID
	SessionID domain.SessionID

	Context *domain.ContextLayers
	Plan    *domain.Plan

	Cursor        int
	Results       []StepResult
	RetryCount    int
	ErrorCount    int
	StepsExecuted int

	Reflection  *domain.ReflectionResult
	FinalAnswer string
}

func newRunState(query string, userID domain.UserID, sessionID domain.SessionID) *RunState {
	return &RunState{
		Query:     query,
		UserID:    userID,
		SessionID: sessionID,
	}
}

// lastExecuted returns the most recently executed step, or nil before
// the first execution.
func (rs *RunState) lastExecuted() *domain.PlanStep {
	if rs.Plan == nil || rs.Cursor == 0 || rs.Cursor > len(rs.Plan.Steps) {
		return nil
	}
	return &rs.Plan.Steps[rs.Cursor-1]
}

// dropLastOutcome removes the newest transcript entry. A retry
// supersedes the attempt it rolls back; only the final attempt of a
// step may reach Finalize.
func (rs *RunState) dropLastOutcome() {
	if n := len(rs.Results); n > 0 {
		rs.Results = rs.Results[:n-1]
	}
}

// recordOutcome appends the step's outcome to the transcript.
func (rs *RunState) recordOutcome(step *domain.PlanStep) {
	rs.Results = append(rs.Results, StepResult{
		Step:       step.Step,
		Capability: step.Capability,
		Task:       step.Task,
		Answer:     step.Result,
		Err:        step.Err,
	})
	rs.StepsExecuted++
	if step.Err != "" {
		rs.ErrorCount++
	}
}
