package agentflow

import (
	"context"
	"strings"
	"sync"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// fakeLLM scripts the model: planFn answers planning prompts, reflectFn
// answers assessment prompts, everything else gets a canned answer.
type fakeLLM struct {
	planFn    func() (string, error)
	reflectFn func() (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "task-planning expert") && f.planFn != nil:
		return f.planFn()
	case strings.Contains(prompt, "result-quality assessor") && f.reflectFn != nil:
		return f.reflectFn()
	}
	return "canned answer", nil
}

// fakeCapability records its invocations.
type fakeCapability struct {
	name   string
	invoke func(ctx context.Context, task string, params map[string]any) (string, error)

	mu          sync.Mutex
	invocations int
	lastParams  map[string]any
}

func (f *fakeCapability) Name() string { return f.name }

func (f *fakeCapability) Invoke(ctx context.Context, task string, params map[string]any) (string, error) {
	f.mu.Lock()
	f.invocations++
	f.lastParams = params
	f.mu.Unlock()

	if f.invoke != nil {
		return f.invoke(ctx, task, params)
	}
	return "result of " + task, nil
}

// emptyContext satisfies ContextSource without touching any store.
type emptyContext struct{}

func (emptyContext) Build(ctx context.Context, query string, userID domain.UserID, sessionID domain.SessionID) *domain.ContextLayers {
	return &domain.ContextLayers{Query: query, UserID: userID, SessionID: sessionID}
}

// panickingContext simulates a collaborator blowing up mid-run.
type panickingContext struct{}

func (panickingContext) Build(ctx context.Context, query string, userID domain.UserID, sessionID domain.SessionID) *domain.ContextLayers {
	panic("context builder exploded")
}

// recordingSessions keeps appended messages in order.
type recordingSessions struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (s *recordingSessions) AppendMessage(ctx context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *recordingSessions) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// recordingProfiles keeps saved profiles by user id.
type recordingProfiles struct {
	mu       sync.Mutex
	profiles map[domain.UserID]domain.UserProfile
}

func newRecordingProfiles() *recordingProfiles {
	return &recordingProfiles{profiles: make(map[domain.UserID]domain.UserProfile)}
}

func (p *recordingProfiles) Profile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := profile
	return &copied, nil
}

func (p *recordingProfiles) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.UserID] = *profile
	return nil
}
