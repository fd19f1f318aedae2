package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt contracts for the two language services. The classification
// contract pins the exact output shape the analyzer parses; changing the
// field list here requires a matching change in rawAnalysis.

const classificationSystemPrompt = `You are the intent classifier for an insurance customer assistant.
Classify the customer's message and respond with a single JSON object, nothing else:

{
  "primary_intent": one of "claim_filing", "claim_status", "policy_inquiry", "billing_question", "quote_request", "general_inquiry",
  "secondary_intents": optional array of additional applicable intents,
  "entities": object of extracted values such as "incident_date", "incident_type", "damage_description", "coverage_type", "policy_number"; use null when a value is not present,
  "confidence": number between 0 and 1,
  "urgency": one of "low", "medium", "high",
  "complexity": one of "simple", "moderate", "complex"
}

Do not invent entity values the customer did not state.`

const generationSystemPrompt = `You are a helpful, precise insurance customer assistant.
Write a short response for the customer based only on the structured context you are given.
Lead with the status line, weave in the retrieved details, and close with the next steps.
Do not invent facts that are not in the context. Do not mention internal systems or errors.`

// BuildClassificationMessages assembles the classifier chat for user text.
func BuildClassificationMessages(userText string) (system, user string) {
	return classificationSystemPrompt, userText
}

// BuildGenerationMessages assembles the generator chat for a turn context.
func BuildGenerationMessages(gc GenerationContext) (system, user string, err error) {
	payload, err := json.Marshal(gc)
	if err != nil {
		return "", "", fmt.Errorf("marshal generation context: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Customer message:\n")
	sb.WriteString(gc.UserText)
	sb.WriteString("\n\nStructured context:\n")
	sb.Write(payload)

	return generationSystemPrompt, sb.String(), nil
}
