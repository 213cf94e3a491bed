package agentflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const plannerSystemPrompt = `You are a task-planning expert. Break the user's query about Hong Kong
exchange announcements into an executable plan.

Available capabilities:
1. document - announcement analysis: retrieve filings, placings, rights
   issues, IPOs and consolidations; extract and compare terms.
2. market - market data (quotes, historical prices, indicators).
3. financial - financial statement analysis.
4. news - news retrieval and sentiment.
5. synthesize - merge the results of earlier steps into one answer.

Planning rules:
1. A simple query (single data source, no comparison) becomes a
   single-step plan with "is_simple": true.
2. A complex query (several sources, or a comparison) is decomposed
   into steps; later steps list the step numbers they depend on in
   "depends_on".
3. Every task description must be concrete and self-contained.
4. Stock codes use the XXXXX.hk format, dates use YYYY-MM-DD.

User query: %s

User history (may be empty):
%s

Respond with a JSON object only:
{"steps": [{"step": 1, "task": "...", "capability": "document",
"params": {}, "depends_on": []}], "reasoning": "...", "is_simple": true}`

const plannerExamples = `

Examples:

Query: recent placing announcements for Tencent
Plan: {"steps": [{"step": 1, "task": "Retrieve recent placing announcements for Tencent (00700.hk)", "capability": "document", "params": {"stock_code": "00700.hk", "limit": 5}, "depends_on": []}], "reasoning": "Single-instrument lookup against structured placing data.", "is_simple": true}

Query: compare the latest placings of Tencent and Alibaba
Plan: {"steps": [{"step": 1, "task": "Retrieve the latest placing announcement for Tencent (00700.hk)", "capability": "document", "params": {"stock_code": "00700.hk", "limit": 3}, "depends_on": []}, {"step": 2, "task": "Retrieve the latest placing announcement for Alibaba (09988.hk)", "capability": "document", "params": {"stock_code": "09988.hk", "limit": 3}, "depends_on": []}, {"step": 3, "task": "Compare the two placings on price, discount and placing ratio", "capability": "synthesize", "params": {"dimensions": ["placing price", "discount", "ratio"]}, "depends_on": [1, 2]}], "reasoning": "Comparison needs both retrievals before the synthesis step.", "is_simple": false}`

const reflectorSystemPrompt = `You are a result-quality assessor. Judge whether the latest step result
answers its task well enough.

Scoring dimensions, each in [0, 1]:
1. completeness - does the result cover everything the task asked for?
2. accuracy - are dates, amounts and references plausible?
3. consistency - does the result contradict earlier results?

Original query: %s
Plan: %s
Current step: %d
Latest result: %s

Respond with a JSON object only, following this schema exactly:
{"is_complete": bool, "quality_score": number, "completeness_score": number,
"accuracy_score": number, "consistency_score": number,
"missing_info": [string], "suggested_actions": [string],
"should_retry": bool, "summary": string}`

// PromptSet holds the instruction templates the Planner and Reflector
// format. Templates can be overridden from a YAML file; anything absent
// from the file keeps its built-in default.
type PromptSet struct {
	PlannerSystem   string `yaml:"planner_system_prompt"`
	PlannerExamples string `yaml:"planner_few_shot_examples"`
	ReflectorSystem string `yaml:"reflector_system_prompt"`
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() *PromptSet {
	return &PromptSet{
		PlannerSystem:   plannerSystemPrompt,
		PlannerExamples: plannerExamples,
		ReflectorSystem: reflectorSystemPrompt,
	}
}

// LoadPrompts reads template overrides from a YAML file. An empty path
// returns the defaults.
func LoadPrompts(path string) (*PromptSet, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}

	var overrides PromptSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing prompts file: %w", err)
	}

	if overrides.PlannerSystem != "" {
		prompts.PlannerSystem = overrides.PlannerSystem
	}
	if overrides.PlannerExamples != "" {
		prompts.PlannerExamples = overrides.PlannerExamples
	}
	if overrides.ReflectorSystem != "" {
		prompts.ReflectorSystem = overrides.ReflectorSystem
	}
	return prompts, nil
}
