package domain

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// LLMClient is the single opaque model capability: prompt in, text out.
// Only the Planner and the Reflector call it. Calls may fail
// transiently; callers recover locally.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Capability is an external, named unit of execution invoked with a
// task description and parameter hints. The core is agnostic to what a
// capability does internally.
type Capability interface {
	Name() string
	Invoke(ctx context.Context, task string, params map[string]any) (string, error)
}

// SessionMemory is the short-term store: a capacity-bounded,
// oldest-evicted-first message history per session. Implementations
// must serialize mutation per session id.
type SessionMemory interface {
	AppendMessage(ctx context.Context, msg *Message) error
	History(ctx context.Context, sessionID SessionID, limit int) ([]Message, error)
}

// ProfileMemory is the long-term store: one profile per user id.
// Implementations must serialize mutation per user id. Profile returns
// ErrProfileNotFound for users the store has never seen.
type ProfileMemory interface {
	Profile(ctx context.Context, userID UserID) (*UserProfile, error)
	SaveProfile(ctx context.Context, profile *UserProfile) error
}

// DomainLookup resolves an identifier into a short read-only summary.
// A missing identifier yields (nil, nil): absence is not an error.
type DomainLookup interface {
	LookupInstrument(ctx context.Context, code string) (*InstrumentSummary, error)
}

// FreshnessSource reports, per data category, when the freshest record
// was produced.
type FreshnessSource interface {
	LatestByCategory(ctx context.Context) (map[DataCategory]Timestamp, error)
}
