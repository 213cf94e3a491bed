package contextbuilder

import (
	"strings"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// defaultWindowDays is the suggested window when the query carries no
// relative-time phrase.
const defaultWindowDays = 90

// suggestTimeWindow maps relative-time phrases to concrete windows.
// First match wins; the mapping is explicit rather than inferred.
func suggestTimeWindow(query string, now time.Time) domain.TimeWindow {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "recent") || strings.Contains(lower, "lately"):
		return domain.TimeWindow{
			Start: now.AddDate(0, 0, -30),
			End:   now,
			Label: "last 30 days",
		}
	case strings.Contains(lower, "today"):
		return domain.TimeWindow{
			Start: now.Truncate(24 * time.Hour),
			End:   now,
			Label: "today",
		}
	case strings.Contains(lower, "this month"):
		return domain.TimeWindow{
			Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
			End:   now,
			Label: "this month",
		}
	case strings.Contains(lower, "last month"):
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return domain.TimeWindow{
			Start: firstOfThis.AddDate(0, -1, 0),
			End:   firstOfThis.Add(-time.Second),
			Label: "last month",
		}
	case strings.Contains(lower, "this year"):
		return domain.TimeWindow{
			Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()),
			End:   now,
			Label: "year to date",
		}
	case strings.Contains(lower, "last year"):
		return domain.TimeWindow{
			Start: time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location()),
			End:   time.Date(now.Year()-1, 12, 31, 23, 59, 59, 0, now.Location()),
			Label: "last year",
		}
	}

	return domain.TimeWindow{
		Start: now.AddDate(0, 0, -defaultWindowDays),
		End:   now,
		Label: "default 90 days",
	}
}
