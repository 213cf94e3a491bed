package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StepStatus is the lifecycle state of a plan step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// PlanStep is one unit of planned work. Step numbers are 1-based and
// DependsOn refers to those numbers. Status, Result and Err are runtime
// state mutated in place by the orchestrator; everything else is
// immutable once the plan is parsed.
type PlanStep struct {
	Step       int            `json:"step"`
	Task       string         `json:"task"`
	Capability string         `json:"capability"`
	Params     map[string]any `json:"params,omitempty"`
	DependsOn  []int          `json:"depends_on,omitempty"`

	Status StepStatus `json:"-"`
	Result string     `json:"-"`
	Err    string     `json:"-"`
}

// Plan is the dependency-annotated set of steps produced once per
// request.
type Plan struct {
	Steps              []PlanStep `json:"steps"`
	Reasoning          string     `json:"reasoning"`
	IsSimple           bool       `json:"is_simple"`
	EstimatedTotalTime float64    `json:"estimated_total_time,omitempty"`
}

// ParseError reports why a model payload could not be turned into a
// valid Plan or ReflectionResult.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParsePlan decodes a model-produced plan payload. The payload may be
// wrapped in a markdown code fence; the fence is stripped before
// decoding. The decoded plan is validated: at least one step, in-range
// acyclic dependencies, non-empty tasks.
func ParsePlan(raw string) (*Plan, error) {
	cleaned := StripCodeFence(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, &ParseError{What: "plan", Err: err}
	}

	if err := plan.validate(); err != nil {
		return nil, &ParseError{What: "plan", Err: err}
	}

	for i := range plan.Steps {
		plan.Steps[i].Status = StepPending
	}
	return &plan, nil
}

func (p *Plan) validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}

	for i := range p.Steps {
		step := &p.Steps[i]
		if step.Step == 0 {
			step.Step = i + 1
		}
		if step.Step != i+1 {
			return fmt.Errorf("step %d out of order (expected %d)", step.Step, i+1)
		}
		if strings.TrimSpace(step.Task) == "" {
			return fmt.Errorf("step %d has an empty task", step.Step)
		}
		for _, dep := range step.DependsOn {
			if dep < 1 || dep > len(p.Steps) {
				return fmt.Errorf("step %d depends on unknown step %d", step.Step, dep)
			}
			if dep == step.Step {
				return fmt.Errorf("step %d depends on itself", step.Step)
			}
		}
	}

	if cycle := p.findCycle(); cycle != 0 {
		return fmt.Errorf("dependency cycle through step %d", cycle)
	}
	return nil
}

// findCycle returns the number of a step on a dependency cycle, or 0.
func (p *Plan) findCycle() int {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]int, len(p.Steps)+1)

	var visit func(n int) bool
	visit = func(n int) bool {
		state[n] = visiting
		for _, dep := range p.Steps[n-1].DependsOn {
			switch state[dep] {
			case visiting:
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		state[n] = done
		return false
	}

	for n := 1; n <= len(p.Steps); n++ {
		if state[n] == unvisited && visit(n) {
			return n
		}
	}
	return 0
}

// StripCodeFence removes a surrounding markdown code fence (``` or
// ```json) from a model payload, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
