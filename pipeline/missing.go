package pipeline

import (
	"fmt"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Required-field and question tables for the missing-information detector.
// The tables are fixed and enumerable on purpose: which fields gate which
// intents is an auditable business rule, not something inferred per turn.

// fieldCustomerID is satisfied by an authenticated customer identifier
// supplied by the hosting layer, not by entity extraction.
const fieldCustomerID = "customer_id"

// requiredFields maps each intent to the fields it cannot proceed without.
var requiredFields = map[Intent][]string{
	IntentClaimFiling:     {fieldCustomerID, "incident_details"},
	IntentClaimStatus:     {fieldCustomerID},
	IntentPolicyInquiry:   {fieldCustomerID},
	IntentBillingQuestion: {fieldCustomerID},
	IntentQuoteRequest:    {"coverage_type"},
	IntentGeneralInquiry:  {},
}

// equivalentEntityKeys lists entity keys that satisfy a required field when
// any one of them is present. A field with no entry is satisfied only by an
// entity under its own name.
var equivalentEntityKeys = map[string][]string{
	"incident_details": {"incident_date", "incident_type", "damage_description"},
	"coverage_type":    {"coverage_type", "insurance_type", "policy_type"},
}

// clarifyingQuestions maps field names to canned clarifying questions.
var clarifyingQuestions = map[string]string{
	fieldCustomerID:    "Could you confirm your customer ID so I can look up your account?",
	"incident_details": "Could you tell me what happened? The date of the incident and a short description of the damage would help me file your claim.",
	"coverage_type":    "What type of coverage are you interested in — for example auto, home, or life insurance?",
	"policy_number":    "Could you provide your policy number?",
}

// MissingInfoDetector determines which required fields are absent for an
// intent and produces clarifying questions for them. All lookups are pure
// and deterministic.
type MissingInfoDetector struct{}

// NewMissingInfoDetector creates a detector.
func NewMissingInfoDetector() *MissingInfoDetector {
	return &MissingInfoDetector{}
}

// Detect returns the required fields that are absent for the intent.
// customerID satisfies the customer_id field directly; any other field is
// satisfied by a non-absent entity under its own name or one of its
// equivalent keys.
func (d *MissingInfoDetector) Detect(intent Intent, entities map[string]capability.Value, customerID string) []string {
	var missing []string
	for _, field := range requiredFields[intent] {
		if field == fieldCustomerID && customerID != "" {
			continue
		}
		if entityPresent(entities, field) {
			continue
		}
		missing = append(missing, field)
	}
	return missing
}

// entityPresent checks the field's own key and its equivalents.
func entityPresent(entities map[string]capability.Value, field string) bool {
	keys := equivalentEntityKeys[field]
	if len(keys) == 0 {
		keys = []string{field}
	}
	for _, key := range keys {
		if v, ok := entities[key]; ok && !v.IsAbsent() {
			return true
		}
	}
	return false
}

// QuestionsFor renders one clarifying question per missing field. The
// lookup is total: unknown field names get a generic question rather than
// an error.
func (d *MissingInfoDetector) QuestionsFor(missing []string, _ Intent) []string {
	questions := make([]string, 0, len(missing))
	for _, field := range missing {
		if q, ok := clarifyingQuestions[field]; ok {
			questions = append(questions, q)
			continue
		}
		questions = append(questions,
			fmt.Sprintf("I need additional information about %s to help with your request.", field))
	}
	return questions
}
