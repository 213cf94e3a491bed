package domain

import "encoding/json"

// ReflectionResult is the Reflector's assessment of a single executed
// step. The consistency component is part of the schema the model is
// asked to fill; the composite quality score is taken from the model
// verbatim and never recomputed locally.
type ReflectionResult struct {
	IsComplete        bool     `json:"is_complete"`
	QualityScore      float64  `json:"quality_score"`
	CompletenessScore float64  `json:"completeness_score"`
	AccuracyScore     float64  `json:"accuracy_score"`
	ConsistencyScore  float64  `json:"consistency_score"`
	MissingInfo       []string `json:"missing_info,omitempty"`
	SuggestedActions  []string `json:"suggested_actions,omitempty"`
	ShouldRetry       bool     `json:"should_retry"`
	Summary           string   `json:"summary"`
}

// ParseReflection decodes a model-produced reflection payload,
// tolerating a surrounding code fence.
func ParseReflection(raw string) (*ReflectionResult, error) {
	cleaned := StripCodeFence(raw)

	var ref ReflectionResult
	if err := json.Unmarshal([]byte(cleaned), &ref); err != nil {
		return nil, &ParseError{What: "reflection", Err: err}
	}
	return &ref, nil
}
