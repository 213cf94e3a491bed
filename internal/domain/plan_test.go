package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

func TestParsePlanStripsCodeFence(t *testing.T) {
	raw := "```json\n" + `{
		"steps": [
			{"step": 1, "task": "retrieve placing announcements for 00700.hk", "capability": "document"}
		],
		"reasoning": "single lookup",
		"is_simple": true
	}` + "\n```"

	plan, err := domain.ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "document", plan.Steps[0].Capability)
	assert.Equal(t, domain.StepPending, plan.Steps[0].Status)
	assert.True(t, plan.IsSimple)
}

func TestParsePlanRejectsInvalidJSON(t *testing.T) {
	_, err := domain.ParsePlan("not json")
	require.Error(t, err)

	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "plan", parseErr.What)
}

func TestParsePlanRejectsEmptySteps(t *testing.T) {
	_, err := domain.ParsePlan(`{"steps": [], "reasoning": "", "is_simple": true}`)
	require.Error(t, err)
}

func TestParsePlanRejectsUnknownDependency(t *testing.T) {
	_, err := domain.ParsePlan(`{
		"steps": [{"step": 1, "task": "t", "capability": "document", "depends_on": [4]}],
		"reasoning": "", "is_simple": true
	}`)
	require.Error(t, err)
}

func TestParsePlanRejectsDependencyCycle(t *testing.T) {
	_, err := domain.ParsePlan(`{
		"steps": [
			{"step": 1, "task": "a", "capability": "document", "depends_on": [2]},
			{"step": 2, "task": "b", "capability": "document", "depends_on": [1]}
		],
		"reasoning": "", "is_simple": false
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestParsePlanFillsMissingStepNumbers(t *testing.T) {
	plan, err := domain.ParsePlan(`{
		"steps": [
			{"task": "a", "capability": "document"},
			{"task": "b", "capability": "document", "depends_on": [1]}
		],
		"reasoning": "", "is_simple": false
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Steps[0].Step)
	assert.Equal(t, 2, plan.Steps[1].Step)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, domain.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, domain.StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, domain.StripCodeFence(`{"a":1}`))
}
