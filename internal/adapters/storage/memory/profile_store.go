package memory

import (
	"context"
	"sync"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// profileEntry owns one user's profile with its own lock, so mutation
// is serialized per user id.
type profileEntry struct {
	mu      sync.Mutex
	profile domain.UserProfile
}

// ProfileStore is the in-process ProfileMemory. Profiles are never
// deleted.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]*profileEntry
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[domain.UserID]*profileEntry),
	}
}

// Profile returns a copy of the stored profile, or ErrProfileNotFound.
func (s *ProfileStore) Profile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	s.mu.RLock()
	entry, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	copied := entry.profile
	copied.Preferences = make(map[string]string, len(entry.profile.Preferences))
	for key, value := range entry.profile.Preferences {
		copied.Preferences[key] = value
	}
	copied.QueryHistory = make([]domain.QueryRecord, len(entry.profile.QueryHistory))
	copy(copied.QueryHistory, entry.profile.QueryHistory)
	return &copied, nil
}

// SaveProfile stores the profile, creating the entry on first save.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.RLock()
	entry, ok := s.profiles[profile.UserID]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		if entry, ok = s.profiles[profile.UserID]; !ok {
			entry = &profileEntry{}
			s.profiles[profile.UserID] = entry
		}
		s.mu.Unlock()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.profile = *profile
	return nil
}
