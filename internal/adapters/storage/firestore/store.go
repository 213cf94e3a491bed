// Package firestore implements SessionMemory and ProfileMemory on
// Cloud Firestore: one document per message under a session, one
// document per user profile. The message cap is enforced on read; old
// messages beyond the cap are deleted opportunistically on append.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

type Store struct {
	client      *firestore.Client
	maxMessages int
}

// NewStore creates a Firestore-backed store for the given project.
func NewStore(ctx context.Context, projectID string, maxMessages int) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for the Firestore store")
	}
	if maxMessages <= 0 {
		maxMessages = 20
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Store{client: client, maxMessages: maxMessages}, nil
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.client.Collection("sessions").Doc(string(sessionID)).Collection("messages")
}

func (s *Store) profileDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("profiles").Doc(string(userID))
}

type messageDoc struct {
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"created_at"`
}

type queryRecordDoc struct {
	Query    string    `firestore:"query"`
	Category string    `firestore:"category"`
	At       time.Time `firestore:"at"`
}

type profileDoc struct {
	Preferences      map[string]string `firestore:"preferences"`
	QueryHistory     []queryRecordDoc  `firestore:"query_history"`
	InteractionCount int               `firestore:"interaction_count"`
	CreatedAt        time.Time         `firestore:"created_at"`
	UpdatedAt        time.Time         `firestore:"updated_at"`
}

// AppendMessage stores the message and trims history beyond the cap.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}

	if _, err := s.messagesCol(msg.SessionID).Doc(string(msg.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}

	// Evict oldest messages past the cap. Best effort: a failed trim
	// only delays eviction until the next append.
	iter := s.messagesCol(msg.SessionID).
		OrderBy("created_at", firestore.Desc).
		Offset(s.maxMessages).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			break
		}
		_, _ = snap.Ref.Delete(ctx)
	}
	return nil
}

// History returns up to limit most recent messages, oldest first.
func (s *Store) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > s.maxMessages {
		limit = s.maxMessages
	}

	iter := s.messagesCol(sessionID).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var newestFirst []domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore History: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		newestFirst = append(newestFirst, domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			SessionID: sessionID,
			Role:      domain.Role(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}

	if len(newestFirst) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	out := make([]domain.Message, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}
	return out, nil
}

// Profile fetches the user's profile document.
func (s *Store) Profile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	snap, err := s.profileDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("firestore Profile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode profileDoc: %w", err)
	}

	profile := &domain.UserProfile{
		UserID:           userID,
		Preferences:      doc.Preferences,
		InteractionCount: doc.InteractionCount,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	for _, rec := range doc.QueryHistory {
		profile.QueryHistory = append(profile.QueryHistory, domain.QueryRecord{
			Query:    rec.Query,
			Category: rec.Category,
			At:       rec.At,
		})
	}
	return profile, nil
}

// SaveProfile writes the whole profile document.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	doc := profileDoc{
		Preferences:      profile.Preferences,
		InteractionCount: profile.InteractionCount,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}
	for _, rec := range profile.QueryHistory {
		doc.QueryHistory = append(doc.QueryHistory, queryRecordDoc{
			Query:    rec.Query,
			Category: rec.Category,
			At:       rec.At,
		})
	}

	if _, err := s.profileDoc(profile.UserID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveProfile: %w", err)
	}
	return nil
}
