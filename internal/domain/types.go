package domain

import "time"

type SessionID string
type UserID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DataCategory names one of the structured data sources the agent can
// reason about. Data freshness is reported per category.
type DataCategory string

const (
	CategoryDocuments      DataCategory = "documents"
	CategoryPlacings       DataCategory = "placings"
	CategoryIPOs           DataCategory = "ipos"
	CategoryRightsIssues   DataCategory = "rights_issues"
	CategoryConsolidations DataCategory = "consolidations"
)

type Timestamp = time.Time
