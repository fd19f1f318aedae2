package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/llm"
)

// Classifier is the narrow interface to the external intent classification
// service. It returns raw text expected to contain one JSON-shaped object
// matching the IntentAnalysis fields; the analyzer owns all parsing and
// validation so the rest of the pipeline is testable with a stub.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Analyzer calls the classifier, repairs and validates its structured
// output, and normalizes it into an IntentAnalysis record.
type Analyzer struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewAnalyzer creates an intent analyzer.
func NewAnalyzer(classifier Classifier, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: classifier, logger: logger}
}

// rawAnalysis mirrors the classifier's wire shape before validation.
type rawAnalysis struct {
	PrimaryIntent    string         `json:"primary_intent"`
	SecondaryIntents []string       `json:"secondary_intents"`
	Entities         map[string]any `json:"entities"`
	Confidence       float64        `json:"confidence"`
	Urgency          string         `json:"urgency"`
	Complexity       string         `json:"complexity"`
}

// Analyze classifies user text into a validated IntentAnalysis.
// It returns a *ClassificationError when the service is unreachable, the
// response contains no parseable object, or the primary intent is missing
// or outside the enumerated set. It never guesses an intent.
func (a *Analyzer) Analyze(ctx context.Context, userText string) (*IntentAnalysis, error) {
	content, err := a.classifier.Classify(ctx, userText)
	if err != nil {
		return nil, NewClassificationError("classification service unreachable", err)
	}

	extracted := llm.ExtractJSON(content)
	if extracted == "" {
		a.logger.Debug("No JSON object in classifier output", "content_length", len(content))
		return nil, NewClassificationError("no parseable object in classifier output", nil)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(extracted), &raw); err != nil {
		return nil, NewClassificationError("malformed classifier output", err)
	}

	intent := ParseIntent(strings.TrimSpace(strings.ToLower(raw.PrimaryIntent)))
	if intent == "" {
		return nil, NewClassificationError(
			fmt.Sprintf("unrecognized primary intent %q", raw.PrimaryIntent), nil)
	}

	analysis := &IntentAnalysis{
		PrimaryIntent:    intent,
		SecondaryIntents: raw.SecondaryIntents,
		Entities:         normalizeEntities(raw.Entities),
		Confidence:       clampConfidence(raw.Confidence),
		Urgency:          ParseUrgency(raw.Urgency),
		Complexity:       ParseComplexity(raw.Complexity),
	}

	a.logger.Info("Classified intent",
		"intent", analysis.PrimaryIntent,
		"confidence", analysis.Confidence,
		"entities", len(analysis.Entities))

	return analysis, nil
}

// normalizeEntities converts the raw entity map into typed values, mapping
// sentinel "empty" strings and JSON null to the explicit absent value.
func normalizeEntities(raw map[string]any) map[string]capability.Value {
	if len(raw) == 0 {
		return nil
	}

	entities := make(map[string]capability.Value, len(raw))
	for key, val := range raw {
		v := capability.FromAny(val)
		if s, ok := v.AsString(); ok && isEmptySentinel(s) {
			v = capability.Absent()
		}
		entities[key] = v
	}
	return entities
}

// isEmptySentinel reports whether a string is one of the classifier's
// conventional "no value" markers.
func isEmptySentinel(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "null", "none":
		return true
	}
	return false
}

// clampConfidence bounds confidence to [0,1]. Out-of-range values come from
// sloppy classifier output and are clamped rather than rejected.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
