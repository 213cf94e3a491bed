package domain

import "time"

// ContextLayers is the layered context assembled once per request. It
// is immutable after Build and owned solely by that request.
type ContextLayers struct {
	Query     string
	UserID    UserID
	SessionID SessionID
	BuiltAt   time.Time

	Conversation ConversationLayer
	UserProfile  ProfileLayer
	Domain       DomainLayer
	Relevance    RelevanceLayer
}

// ConversationLayer summarizes the recent session history.
type ConversationLayer struct {
	RecentMessages []Message
	MessageCount   int
}

// ProfileLayer is the read-only slice of the user profile a request
// needs.
type ProfileLayer struct {
	UserID           UserID
	Preferences      map[string]string
	RecentQueries    []string
	InteractionCount int
}

// ExtractedEntities holds the typed entities found in the query by
// lexical matching.
type ExtractedEntities struct {
	StockCodes     []string
	CompanyNames   []string
	DocumentTypes  []string
	TimeReferences []string
}

// InstrumentSummary is a best-effort read-only summary for one
// identifier; absence of a summary is not an error.
type InstrumentSummary struct {
	Code          string
	Name          string
	DocumentCount int
}

// DomainLayer carries extracted entities and resolved instrument
// summaries.
type DomainLayer struct {
	Entities    ExtractedEntities
	Instruments []InstrumentSummary
	Market      string
}

// DataFreshness reports the age of the freshest record in a category.
type DataFreshness struct {
	LatestDate time.Time
	DaysAgo    int
}

// TimeWindow is the suggested query window derived from relative-time
// phrases.
type TimeWindow struct {
	Start time.Time
	End   time.Time
	Label string
}

// RelevanceLayer carries freshness per data category and the suggested
// time window.
type RelevanceLayer struct {
	Freshness  map[DataCategory]DataFreshness
	TimeWindow TimeWindow
}
