package backends

import (
	"context"
	"encoding/json"
	"testing"
)

func classify(t *testing.T, text string) map[string]any {
	t.Helper()
	raw, err := NewKeywordClassifier().Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("Classify(%q): %v", text, err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, raw)
	}
	return parsed
}

func TestKeywordClassifier_IntentRouting(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I want to file a claim for my accident", "claim_filing"},
		{"what is the status of my claim", "claim_status"},
		{"why is my bill so high this month", "billing_question"},
		{"can I get a quote for home insurance", "quote_request"},
		{"what does my policy cover", "policy_inquiry"},
		{"hello there", "general_inquiry"},
	}
	for _, tt := range tests {
		parsed := classify(t, tt.text)
		if got := parsed["primary_intent"]; got != tt.want {
			t.Errorf("Classify(%q) intent = %v, want %s", tt.text, got, tt.want)
		}
	}
}

func TestKeywordClassifier_FilingWinsOverStatus(t *testing.T) {
	// "file a claim" contains the bare "claim" trigger too; ordering must
	// route it to filing.
	parsed := classify(t, "I need to file a claim")
	if got := parsed["primary_intent"]; got != "claim_filing" {
		t.Errorf("intent = %v, want claim_filing", got)
	}
}

func TestKeywordClassifier_CoverageAliases(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"quote for my car please", "auto"},
		{"quote for my house", "home"},
		{"how much would life insurance cost", "life"},
	}
	for _, tt := range tests {
		parsed := classify(t, tt.text)
		entities, _ := parsed["entities"].(map[string]any)
		if got := entities["coverage_type"]; got != tt.want {
			t.Errorf("Classify(%q) coverage_type = %v, want %s", tt.text, got, tt.want)
		}
	}
}

func TestKeywordClassifier_IncidentEntity(t *testing.T) {
	parsed := classify(t, "I need to file a claim, I was in a crash")
	entities, _ := parsed["entities"].(map[string]any)
	if got := entities["incident_type"]; got != "collision" {
		t.Errorf("incident_type = %v, want collision", got)
	}
}

func TestKeywordClassifier_Contract(t *testing.T) {
	parsed := classify(t, "hello")
	if got := parsed["confidence"]; got != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got)
	}
	if got := parsed["urgency"]; got != "medium" {
		t.Errorf("urgency = %v, want medium", got)
	}
	if got := parsed["complexity"]; got != "simple" {
		t.Errorf("complexity = %v, want simple", got)
	}
	if _, ok := parsed["entities"].(map[string]any); !ok {
		t.Errorf("entities should be an object, got %T", parsed["entities"])
	}
}
