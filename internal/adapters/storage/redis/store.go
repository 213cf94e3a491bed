// Package redis implements SessionMemory and ProfileMemory on Redis.
// Session histories are bounded lists (LPUSH + LTRIM keeps the newest
// N); profiles are JSON blobs. Single-key commands give the per-key
// serialization the stores require.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// MaxMessages bounds each session's history.
	MaxMessages int
}

// Store implements both memory ports on one Redis client.
type Store struct {
	rdb         *redis.Client
	maxMessages int
}

// NewStore connects to Redis and validates the connection.
func NewStore(cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	maxMessages := cfg.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &Store{rdb: rdb, maxMessages: maxMessages}, nil
}

func sessionKey(id domain.SessionID) string {
	return "quayside:session:" + string(id)
}

func profileKey(id domain.UserID) string {
	return "quayside:profile:" + string(id)
}

type messageDoc struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendMessage pushes the message to the head of the session list and
// trims the list to the cap, evicting the oldest.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		ID:        string(msg.ID),
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	key := sessionKey(msg.SessionID)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.maxMessages)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append message: %w", err)
	}
	return nil
}

// History returns up to limit most recent messages, oldest first.
func (s *Store) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > s.maxMessages {
		limit = s.maxMessages
	}

	raw, err := s.rdb.LRange(ctx, sessionKey(sessionID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	// LRange returns newest-first; reverse to oldest-first.
	out := make([]domain.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var doc messageDoc
		if err := json.Unmarshal([]byte(raw[i]), &doc); err != nil {
			return nil, fmt.Errorf("decoding message: %w", err)
		}
		out = append(out, domain.Message{
			ID:        domain.MessageID(doc.ID),
			SessionID: sessionID,
			Role:      domain.Role(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// Profile fetches and decodes the profile blob.
func (s *Store) Profile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	data, err := s.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("redis get profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile encodes and stores the profile blob.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.rdb.Set(ctx, profileKey(profile.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis save profile: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
