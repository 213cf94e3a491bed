package agentflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

const passReflection = `{"is_complete": true, "quality_score": 0.9, "should_retry": false, "summary": "ok"}`

func simplePlanJSON(task string) string {
	return `{"steps": [{"step": 1, "task": "` + task + `", "capability": "document", "depends_on": []}], "is_simple": true}`
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	sessions     *recordingSessions
	profiles     *recordingProfiles
	document     *fakeCapability
	synthesize   *fakeCapability
}

func newFixture(llm *fakeLLM, maxRetries int) *orchestratorFixture {
	f := &orchestratorFixture{
		sessions:   &recordingSessions{},
		profiles:   newRecordingProfiles(),
		document:   &fakeCapability{name: "document"},
		synthesize: &fakeCapability{name: "synthesize"},
	}

	f.orchestrator = NewOrchestrator(Deps{
		Context:   emptyContext{},
		Planner:   NewPlanner(llm, nil),
		Reflector: NewReflector(llm, nil),
		Router:    NewRouter(testRegistry(f.document, f.synthesize), time.Second),
		Sessions:  f.sessions,
		Profiles:  f.profiles,
	}, maxRetries, 0)
	return f
}

func TestRunSingleStepHappyPath(t *testing.T) {
	llm := &fakeLLM{
		planFn:    func() (string, error) { return simplePlanJSON("answer the query"), nil },
		reflectFn: func() (string, error) { return passReflection, nil },
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "recent tencent placings", "u1", "s1")

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.StepsExecuted)
	assert.Equal(t, "result of answer the query", res.Answer)
	require.NotNil(t, res.Reflection)
	assert.True(t, res.Reflection.IsComplete)
}

func TestRunPersistsTranscriptAndProfile(t *testing.T) {
	llm := &fakeLLM{
		planFn:    func() (string, error) { return simplePlanJSON("answer the query"), nil },
		reflectFn: func() (string, error) { return passReflection, nil },
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "recent tencent placings", "u1", "s1")
	require.True(t, res.Success)

	require.Len(t, f.sessions.messages, 2)
	assert.Equal(t, domain.RoleUser, f.sessions.messages[0].Role)
	assert.Equal(t, "recent tencent placings", f.sessions.messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, f.sessions.messages[1].Role)
	assert.Equal(t, res.Answer, f.sessions.messages[1].Content)

	profile, err := f.profiles.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.InteractionCount)
	require.Len(t, profile.QueryHistory, 1)
	assert.Equal(t, "recent tencent placings", profile.QueryHistory[0].Query)
}

func TestRunWithoutUserSkipsProfile(t *testing.T) {
	llm := &fakeLLM{
		planFn:    func() (string, error) { return simplePlanJSON("t"), nil },
		reflectFn: func() (string, error) { return passReflection, nil },
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")
	require.True(t, res.Success)

	_, err := f.profiles.Profile(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRunDefaultsSessionID(t *testing.T) {
	llm := &fakeLLM{
		planFn:    func() (string, error) { return simplePlanJSON("t"), nil },
		reflectFn: func() (string, error) { return passReflection, nil },
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "q", "", "")
	require.True(t, res.Success)

	require.Len(t, f.sessions.messages, 2)
	assert.Equal(t, domain.SessionID("default"), f.sessions.messages[0].SessionID)
}

func TestRunCombinesMultiStepFindings(t *testing.T) {
	llm := &fakeLLM{
		planFn: func() (string, error) {
			return `{
  "steps": [
    {"step": 1, "task": "fetch tencent", "capability": "document", "depends_on": []},
    {"step": 2, "task": "fetch alibaba", "capability": "document", "depends_on": []}
  ],
  "is_simple": false
}`, nil
		},
	}
	reflections := []string{
		`{"is_complete": false, "quality_score": 0.4, "should_retry": false}`,
		passReflection,
	}
	llm.reflectFn = func() (string, error) {
		next := reflections[0]
		if len(reflections) > 1 {
			reflections = reflections[1:]
		}
		return next, nil
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "compare tencent and alibaba", "", "s1")

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.StepsExecuted)
	assert.Contains(t, res.Answer, "Combined findings:")
	assert.Contains(t, res.Answer, "result of fetch tencent")
	assert.Contains(t, res.Answer, "result of fetch alibaba")
}

func TestRunRetryReExecutesSameStep(t *testing.T) {
	llm := &fakeLLM{
		planFn: func() (string, error) { return simplePlanJSON("flaky step"), nil },
		reflectFn: func() (string, error) {
			return `{"is_complete": false, "quality_score": 0.2, "should_retry": true}`, nil
		},
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")

	// One initial execution plus the full retry budget, then a hard stop.
	assert.Equal(t, 4, f.document.invocations)
	assert.Equal(t, 4, res.StepsExecuted)
	assert.True(t, res.Success)
}

func TestRunRetrySupersedesFailedAttempt(t *testing.T) {
	reflections := []string{
		`{"is_complete": false, "quality_score": 0.2, "should_retry": true}`,
		passReflection,
	}
	llm := &fakeLLM{
		planFn: func() (string, error) { return simplePlanJSON("fetch filings"), nil },
		reflectFn: func() (string, error) {
			next := reflections[0]
			if len(reflections) > 1 {
				reflections = reflections[1:]
			}
			return next, nil
		},
	}
	f := newFixture(llm, 3)

	failed := false
	f.document.invoke = func(ctx context.Context, task string, params map[string]any) (string, error) {
		if !failed {
			failed = true
			return "", errors.New("transient source error")
		}
		return "clean retry result", nil
	}

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")

	// The failed first attempt is superseded by its retry: the single
	// surviving result comes back verbatim, never wrapped in a combined
	// answer carrying the stale failure.
	assert.Equal(t, "clean retry result", res.Answer)
	assert.NotContains(t, res.Answer, "could not be completed")
	assert.Equal(t, 2, res.StepsExecuted)
	assert.True(t, res.Success)
}

func TestRunSurfacesFailedStepInAnswer(t *testing.T) {
	llm := &fakeLLM{
		planFn: func() (string, error) { return simplePlanJSON("fetch filings"), nil },
		reflectFn: func() (string, error) {
			return `{"is_complete": false, "quality_score": 0.9, "should_retry": false}`, nil
		},
	}
	f := newFixture(llm, 3)
	f.document.invoke = func(ctx context.Context, task string, params map[string]any) (string, error) {
		return "", errors.New("source unreachable")
	}

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.StepsExecuted)
	assert.Contains(t, res.Answer, "could not be completed")
	assert.Contains(t, res.Answer, "source unreachable")
}

func TestRunSkipsStepWithFailedDependency(t *testing.T) {
	llm := &fakeLLM{
		planFn: func() (string, error) {
			return `{
  "steps": [
    {"step": 1, "task": "fetch filings", "capability": "document", "depends_on": []},
    {"step": 2, "task": "summarize", "capability": "synthesize", "depends_on": [1]}
  ],
  "is_simple": false
}`, nil
		},
		reflectFn: func() (string, error) {
			return `{"is_complete": false, "quality_score": 0.9, "should_retry": false}`, nil
		},
	}
	f := newFixture(llm, 3)
	f.document.invoke = func(ctx context.Context, task string, params map[string]any) (string, error) {
		return "", errors.New("source unreachable")
	}

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")

	// The synthesize capability must never run on a failed prerequisite.
	assert.Equal(t, 0, f.synthesize.invocations)
	assert.True(t, res.Success)
}

func TestRunRecoversFromPanic(t *testing.T) {
	llm := &fakeLLM{}
	f := newFixture(llm, 3)
	f.orchestrator.deps.Context = panickingContext{}

	res := f.orchestrator.Run(context.Background(), "q", "", "s1")

	assert.False(t, res.Success)
	assert.Equal(t, NoAnswerSentinel, res.Answer)
	assert.Contains(t, res.Err, "orchestrator failure")
}

func TestRunReturnsSentinelWhenNothingExecuted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeLLM{
		planFn:    func() (string, error) { return simplePlanJSON("t"), nil },
		reflectFn: func() (string, error) { return passReflection, nil },
	}
	f := newFixture(llm, 3)

	res := f.orchestrator.Run(ctx, "q", "", "s1")

	assert.False(t, res.Success)
	assert.Equal(t, NoAnswerSentinel, res.Answer)
	assert.Equal(t, 0, res.StepsExecuted)
	// A timed-out run still leaves a transcript.
	require.Len(t, f.sessions.messages, 2)
}
