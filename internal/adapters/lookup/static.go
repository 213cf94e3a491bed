// Package lookup provides the read-only domain collaborators used by
// the context builder: best-effort instrument summaries and
// per-category data freshness. The static implementation backs local
// mode and tests; a database-backed one would satisfy the same ports.
package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Static serves instrument summaries and freshness from in-process
// tables.
type Static struct {
	mu          sync.RWMutex
	instruments map[string]domain.InstrumentSummary
	freshness   map[domain.DataCategory]time.Time
}

// NewStatic creates a static lookup seeded with a handful of well-known
// listings.
func NewStatic() *Static {
	now := time.Now()
	return &Static{
		instruments: map[string]domain.InstrumentSummary{
			"00700.hk": {Code: "00700.hk", Name: "Tencent Holdings", DocumentCount: 412},
			"09988.hk": {Code: "09988.hk", Name: "Alibaba Group", DocumentCount: 287},
			"01810.hk": {Code: "01810.hk", Name: "Xiaomi Corporation", DocumentCount: 198},
			"03690.hk": {Code: "03690.hk", Name: "Meituan", DocumentCount: 175},
		},
		freshness: map[domain.DataCategory]time.Time{
			domain.CategoryDocuments: now.AddDate(0, 0, -1),
			domain.CategoryPlacings:  now.AddDate(0, 0, -3),
			domain.CategoryIPOs:      now.AddDate(0, 0, -7),
		},
	}
}

// AddInstrument seeds or replaces a summary.
func (s *Static) AddInstrument(summary domain.InstrumentSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruments[summary.Code] = summary
}

// SetFreshness sets the latest-record timestamp for a category.
func (s *Static) SetFreshness(category domain.DataCategory, latest time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freshness[category] = latest
}

// LookupInstrument implements domain.DomainLookup. Unknown codes return
// (nil, nil): absence is not an error.
func (s *Static) LookupInstrument(ctx context.Context, code string) (*domain.InstrumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := strings.ToLower(code)
	if !strings.HasSuffix(normalized, ".hk") {
		normalized += ".hk"
	}

	summary, ok := s.instruments[normalized]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

// LatestByCategory implements domain.FreshnessSource.
func (s *Static) LatestByCategory(ctx context.Context) (map[domain.DataCategory]domain.Timestamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.DataCategory]domain.Timestamp, len(s.freshness))
	for category, latest := range s.freshness {
		out[category] = latest
	}
	return out, nil
}
