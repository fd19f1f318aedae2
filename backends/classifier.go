package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// KeywordClassifier is a deterministic stand-in for the LLM intent
// classifier. It emits the same JSON contract the analyzer parses, so the
// whole pipeline runs offline. Rules are checked in order; the first match
// wins.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the stub classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// keywordRule maps trigger phrases to an intent.
type keywordRule struct {
	intent   string
	triggers []string
}

// rules are ordered most-specific first: "file a claim" must win over the
// bare "claim" match that routes to claim_status.
var rules = []keywordRule{
	{"claim_filing", []string{"file a claim", "file my claim", "report an accident", "submit a claim"}},
	{"claim_status", []string{"claim status", "status of my claim", "my claim", "claim"}},
	{"billing_question", []string{"bill", "payment", "invoice", "charge", "premium due"}},
	{"quote_request", []string{"quote", "how much would", "price for"}},
	{"policy_inquiry", []string{"policy", "coverage", "deductible", "what am i covered"}},
}

// coveragePattern extracts a coverage type mention for quote requests.
var coveragePattern = regexp.MustCompile(`\b(auto|car|home|house|life)\b`)

// coverageAliases normalizes colloquial coverage words.
var coverageAliases = map[string]string{
	"car":   "auto",
	"house": "home",
}

// Classify implements pipeline.Classifier deterministically.
func (k *KeywordClassifier) Classify(_ context.Context, text string) (string, error) {
	lower := strings.ToLower(text)

	intent := "general_inquiry"
	for _, rule := range rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				intent = rule.intent
				break
			}
		}
		if intent != "general_inquiry" {
			break
		}
	}

	entities := map[string]any{}
	if m := coveragePattern.FindString(lower); m != "" {
		if alias, ok := coverageAliases[m]; ok {
			m = alias
		}
		entities["coverage_type"] = m
	}
	if strings.Contains(lower, "accident") || strings.Contains(lower, "crash") {
		entities["incident_type"] = "collision"
	}

	payload, err := json.Marshal(map[string]any{
		"primary_intent": intent,
		"entities":       entities,
		"confidence":     0.95,
		"urgency":        "medium",
		"complexity":     "simple",
	})
	if err != nil {
		return "", fmt.Errorf("marshal stub classification: %w", err)
	}
	return string(payload), nil
}
