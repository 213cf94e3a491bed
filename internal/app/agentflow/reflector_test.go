package agentflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

func singleStepPlan() *domain.Plan {
	return &domain.Plan{
		Steps: []domain.PlanStep{
			{Step: 1, Task: "t", Capability: "document", Status: domain.StepCompleted, Result: "r"},
		},
		IsSimple: true,
	}
}

func TestReflectDefaultsToPassOnModelError(t *testing.T) {
	llm := &fakeLLM{reflectFn: func() (string, error) {
		return "", errors.New("model unavailable")
	}}
	reflector := NewReflector(llm, nil)

	plan := singleStepPlan()
	ref := reflector.Reflect(context.Background(), "q", plan, 0, &plan.Steps[0])

	require.NotNil(t, ref)
	assert.True(t, ref.IsComplete)
	assert.InDelta(t, 0.7, ref.QualityScore, 1e-9)
	assert.False(t, ref.ShouldRetry)
}

func TestReflectDefaultsToPassOnGarbageOutput(t *testing.T) {
	llm := &fakeLLM{reflectFn: func() (string, error) {
		return "quality: good enough I guess", nil
	}}
	reflector := NewReflector(llm, nil)

	plan := singleStepPlan()
	ref := reflector.Reflect(context.Background(), "q", plan, 0, &plan.Steps[0])

	assert.True(t, ref.IsComplete)
	assert.False(t, ref.ShouldRetry)
}

func TestReflectParsesModelAssessment(t *testing.T) {
	llm := &fakeLLM{reflectFn: func() (string, error) {
		return `{"is_complete": false, "quality_score": 0.4, "should_retry": true, "summary": "thin result"}`, nil
	}}
	reflector := NewReflector(llm, nil)

	plan := singleStepPlan()
	ref := reflector.Reflect(context.Background(), "q", plan, 0, &plan.Steps[0])

	assert.False(t, ref.IsComplete)
	assert.True(t, ref.ShouldRetry)
	assert.InDelta(t, 0.4, ref.QualityScore, 1e-9)
}

func TestShouldContinueDecisionTable(t *testing.T) {
	reflector := NewReflector(&fakeLLM{}, nil)

	cases := []struct {
		name       string
		ref        domain.ReflectionResult
		retryCount int
		want       bool
	}{
		{
			name: "complete with high quality stops",
			ref:  domain.ReflectionResult{IsComplete: true, QualityScore: 0.9},
			want: false,
		},
		{
			name: "completeness wins over retry request",
			ref:  domain.ReflectionResult{IsComplete: true, QualityScore: 0.85, ShouldRetry: true},
			want: false,
		},
		{
			name: "retry requested with budget continues",
			ref:  domain.ReflectionResult{IsComplete: false, QualityScore: 0.6, ShouldRetry: true},
			want: true,
		},
		{
			name:       "retry requested with budget exhausted stops",
			ref:        domain.ReflectionResult{IsComplete: false, QualityScore: 0.6, ShouldRetry: true},
			retryCount: 3,
			want:       false,
		},
		{
			name: "low quality with budget continues",
			ref:  domain.ReflectionResult{IsComplete: false, QualityScore: 0.3},
			want: true,
		},
		{
			name:       "low quality with budget exhausted stops",
			ref:        domain.ReflectionResult{IsComplete: false, QualityScore: 0.3},
			retryCount: 3,
			want:       false,
		},
		{
			name: "middling quality without retry stops",
			ref:  domain.ReflectionResult{IsComplete: false, QualityScore: 0.6},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reflector.ShouldContinue(&tc.ref, DefaultMaxRetries, tc.retryCount)
			assert.Equal(t, tc.want, got)
		})
	}
}
