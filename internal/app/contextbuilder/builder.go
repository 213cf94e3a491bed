package contextbuilder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
	"github.com/quaysidelabs/quayside-agent/internal/observability"
)

// maxInstrumentLookups bounds how many identifiers the domain layer
// resolves per request.
const maxInstrumentLookups = 3

// recentMessageCount is how many messages the conversation layer keeps.
const recentMessageCount = 5

// Options toggles individual layers. The zero value builds everything.
type Options struct {
	SkipHistory bool
	SkipProfile bool
	SkipDomain  bool
}

// Builder assembles the layered request context from the memory stores
// and the read-only domain collaborators. Layers build independently: a
// failure in one layer is logged and yields an empty layer, never
// aborting the others. No side effects beyond reads and logs.
type Builder struct {
	sessions  domain.SessionMemory
	profiles  domain.ProfileMemory
	lookup    domain.DomainLookup
	freshness domain.FreshnessSource
	opts      Options
	now       func() time.Time
}

func NewBuilder(
	sessions domain.SessionMemory,
	profiles domain.ProfileMemory,
	lookup domain.DomainLookup,
	freshness domain.FreshnessSource,
	opts Options,
) *Builder {
	return &Builder{
		sessions:  sessions,
		profiles:  profiles,
		lookup:    lookup,
		freshness: freshness,
		opts:      opts,
		now:       time.Now,
	}
}

// Build assembles a fresh ContextLayers for one request.
func (b *Builder) Build(ctx context.Context, query string, userID domain.UserID, sessionID domain.SessionID) *domain.ContextLayers {
	log := observability.LoggerFromContext(ctx).With("component", "context_builder")
	now := b.now()

	layers := &domain.ContextLayers{
		Query:     query,
		UserID:    userID,
		SessionID: sessionID,
		BuiltAt:   now,
	}

	if !b.opts.SkipHistory && sessionID != "" {
		layers.Conversation = b.conversationLayer(ctx, log, sessionID)
	}
	if !b.opts.SkipProfile && userID != "" {
		layers.UserProfile = b.profileLayer(ctx, log, userID)
	}
	if !b.opts.SkipDomain {
		layers.Domain = b.domainLayer(ctx, log, query)
	}
	layers.Relevance = b.relevanceLayer(ctx, log, query, now)

	log.Info("context built",
		"messages", layers.Conversation.MessageCount,
		"stock_codes", len(layers.Domain.Entities.StockCodes),
		"time_window", layers.Relevance.TimeWindow.Label)
	return layers
}

func (b *Builder) conversationLayer(ctx context.Context, log *slog.Logger, sessionID domain.SessionID) domain.ConversationLayer {
	history, err := b.sessions.History(ctx, sessionID, 0)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		log.Warn("conversation layer unavailable", "error", err)
		return domain.ConversationLayer{}
	}

	recent := history
	if len(recent) > recentMessageCount {
		recent = recent[len(recent)-recentMessageCount:]
	}
	return domain.ConversationLayer{
		RecentMessages: recent,
		MessageCount:   len(history),
	}
}

func (b *Builder) profileLayer(ctx context.Context, log *slog.Logger, userID domain.UserID) domain.ProfileLayer {
	layer := domain.ProfileLayer{UserID: userID}

	profile, err := b.profiles.Profile(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			log.Warn("profile layer unavailable", "error", err)
		}
		return layer
	}

	layer.Preferences = profile.Preferences
	layer.RecentQueries = profile.RecentQueries(3)
	layer.InteractionCount = profile.InteractionCount
	return layer
}

func (b *Builder) domainLayer(ctx context.Context, log *slog.Logger, query string) domain.DomainLayer {
	layer := domain.DomainLayer{
		Entities: extractEntities(query),
		Market:   "hkex",
	}

	if b.lookup == nil {
		return layer
	}

	codes := layer.Entities.StockCodes
	if len(codes) > maxInstrumentLookups {
		codes = codes[:maxInstrumentLookups]
	}
	for _, code := range codes {
		summary, err := b.lookup.LookupInstrument(ctx, code)
		if err != nil {
			log.Debug("instrument lookup failed", "code", code, "error", err)
			continue
		}
		if summary != nil {
			layer.Instruments = append(layer.Instruments, *summary)
		}
	}
	return layer
}

func (b *Builder) relevanceLayer(ctx context.Context, log *slog.Logger, query string, now time.Time) domain.RelevanceLayer {
	layer := domain.RelevanceLayer{
		TimeWindow: suggestTimeWindow(query, now),
	}

	if b.freshness == nil {
		return layer
	}

	latest, err := b.freshness.LatestByCategory(ctx)
	if err != nil {
		log.Warn("freshness unavailable", "error", err)
		return layer
	}

	layer.Freshness = make(map[domain.DataCategory]domain.DataFreshness, len(latest))
	for category, latestDate := range latest {
		layer.Freshness[category] = domain.DataFreshness{
			LatestDate: latestDate,
			DaysAgo:    int(now.Sub(latestDate).Hours() / 24),
		}
	}
	return layer
}
