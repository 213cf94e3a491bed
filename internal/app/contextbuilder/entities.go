package contextbuilder

import (
	"regexp"
	"strings"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// stockCodePattern matches 5-digit HKEX codes with an optional .hk
// suffix, e.g. "00700" or "00700.hk".
var stockCodePattern = regexp.MustCompile(`\b\d{5}(?:\.hk)?\b`)

// knownCompanies maps lowercase company names to their listing codes.
// Lexical matching only; this is deliberately not NLP.
var knownCompanies = map[string]string{
	"tencent": "00700.hk",
	"alibaba": "09988.hk",
	"xiaomi":  "01810.hk",
	"meituan": "03690.hk",
	"jd.com":  "09618.hk",
	"byd":     "01211.hk",
}

// documentTypeKeywords are the announcement categories the planner can
// target.
var documentTypeKeywords = []string{
	"placing",
	"rights issue",
	"consolidation",
	"ipo",
	"listing",
	"announcement",
	"results",
}

// timePhrases are the relative-time phrases the relevance layer maps to
// concrete windows.
var timePhrases = []string{
	"recent",
	"lately",
	"today",
	"this week",
	"this month",
	"last month",
	"this year",
	"last year",
}

// extractEntities pulls typed entities out of the query by lexical
// matching.
func extractEntities(query string) domain.ExtractedEntities {
	lower := strings.ToLower(query)

	entities := domain.ExtractedEntities{
		StockCodes: stockCodePattern.FindAllString(lower, -1),
	}

	for name, code := range knownCompanies {
		if strings.Contains(lower, name) {
			entities.CompanyNames = append(entities.CompanyNames, name)
			if !containsString(entities.StockCodes, code) {
				entities.StockCodes = append(entities.StockCodes, code)
			}
		}
	}

	for _, keyword := range documentTypeKeywords {
		if strings.Contains(lower, keyword) {
			entities.DocumentTypes = append(entities.DocumentTypes, keyword)
		}
	}

	for _, phrase := range timePhrases {
		if strings.Contains(lower, phrase) {
			entities.TimeReferences = append(entities.TimeReferences, phrase)
		}
	}

	return entities
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
