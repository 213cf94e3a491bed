package domain

import "time"

// MaxQueryHistory caps the per-user query history; appends beyond the
// cap drop the oldest record.
const MaxQueryHistory = 100

// QueryRecord is one entry in a user's long-term query history.
type QueryRecord struct {
	Query    string    `json:"query"`
	Category string    `json:"category,omitempty"`
	At       time.Time `json:"at"`
}

// UserProfile is the long-lived per-user memory: opaque preferences, a
// capped newest-last query history and derived aggregates. Profiles are
// never deleted in-process.
type UserProfile struct {
	UserID           UserID            `json:"user_id"`
	Preferences      map[string]string `json:"preferences,omitempty"`
	QueryHistory     []QueryRecord     `json:"query_history,omitempty"`
	InteractionCount int               `json:"interaction_count"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewUserProfile returns an empty profile for a user.
func NewUserProfile(userID UserID, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		Preferences: make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordQuery appends a query record (newest-last), enforces the
// history cap and bumps the interaction count.
func (p *UserProfile) RecordQuery(query, category string, now time.Time) {
	p.QueryHistory = append(p.QueryHistory, QueryRecord{
		Query:    query,
		Category: category,
		At:       now,
	})
	if len(p.QueryHistory) > MaxQueryHistory {
		p.QueryHistory = p.QueryHistory[len(p.QueryHistory)-MaxQueryHistory:]
	}
	p.InteractionCount++
	p.UpdatedAt = now
}

// RecentQueries returns up to limit most recent queries, oldest first.
func (p *UserProfile) RecentQueries(limit int) []string {
	history := p.QueryHistory
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]string, 0, len(history))
	for _, rec := range history {
		out = append(out, rec.Query)
	}
	return out
}
