package pipeline

import (
	"testing"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

func TestDetect_CustomerIDSatisfiedByHostingLayer(t *testing.T) {
	d := NewMissingInfoDetector()

	missing := d.Detect(IntentClaimStatus, nil, "CUST-1")
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}

	missing = d.Detect(IntentClaimStatus, nil, "")
	if len(missing) != 1 || missing[0] != "customer_id" {
		t.Errorf("missing = %v, want [customer_id]", missing)
	}
}

func TestDetect_EquivalentEntityKeys(t *testing.T) {
	d := NewMissingInfoDetector()

	// incident_details is satisfied by any of its equivalent keys.
	entities := map[string]capability.Value{
		"incident_date": capability.String("2026-08-01"),
	}
	missing := d.Detect(IntentClaimFiling, entities, "CUST-1")
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}

	// coverage_type accepts insurance_type as an alias.
	entities = map[string]capability.Value{
		"insurance_type": capability.String("auto"),
	}
	missing = d.Detect(IntentQuoteRequest, entities, "")
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}

func TestDetect_AbsentEntityDoesNotSatisfy(t *testing.T) {
	d := NewMissingInfoDetector()

	entities := map[string]capability.Value{
		"coverage_type": capability.Absent(),
	}
	missing := d.Detect(IntentQuoteRequest, entities, "")
	if len(missing) != 1 || missing[0] != "coverage_type" {
		t.Errorf("missing = %v, want [coverage_type]", missing)
	}
}

func TestDetect_GeneralInquiryNeedsNothing(t *testing.T) {
	d := NewMissingInfoDetector()
	if missing := d.Detect(IntentGeneralInquiry, nil, ""); len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}

func TestDetect_ClaimFilingNeedsBoth(t *testing.T) {
	d := NewMissingInfoDetector()
	missing := d.Detect(IntentClaimFiling, nil, "")
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want two fields", missing)
	}
}

func TestQuestionsFor_TotalLookup(t *testing.T) {
	d := NewMissingInfoDetector()

	questions := d.QuestionsFor([]string{"customer_id", "coverage_type"}, IntentQuoteRequest)
	if len(questions) != 2 {
		t.Fatalf("questions = %v", questions)
	}
	for _, q := range questions {
		if q == "" {
			t.Error("empty question")
		}
	}

	// Unknown field names get a generic question rather than an error.
	questions = d.QuestionsFor([]string{"favorite_color"}, IntentGeneralInquiry)
	if len(questions) != 1 || questions[0] == "" {
		t.Errorf("questions = %v", questions)
	}
}
