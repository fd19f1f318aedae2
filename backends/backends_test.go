package backends

import (
	"context"
	"strings"
	"testing"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

func custParams(id string) map[string]capability.Value {
	return map[string]capability.Value{"customer_id": capability.String(id)}
}

func TestCustomerService_FetchCustomerData(t *testing.T) {
	p := NewCustomerService()

	resp, err := p.Invoke(context.Background(), "fetch_customer_data", custParams("CUST-1"))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if name, _ := resp.Data["name"].AsString(); name != "Maria Alvarez" {
		t.Errorf("name = %q, want Maria Alvarez", name)
	}
	if tier, _ := resp.Data["tier"].AsString(); tier != "gold" {
		t.Errorf("tier = %q, want gold", tier)
	}
}

func TestCustomerService_UnknownCustomer(t *testing.T) {
	p := NewCustomerService()

	resp, err := p.Invoke(context.Background(), "fetch_customer_data", custParams("CUST-404"))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Success {
		t.Fatal("expected failure for unknown customer")
	}
	if !strings.Contains(resp.Error, "CUST-404") {
		t.Errorf("error %q should name the customer", resp.Error)
	}
}

func TestCustomerService_MissingCustomerID(t *testing.T) {
	p := NewCustomerService()

	resp, err := p.Invoke(context.Background(), "fetch_customer_data", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Success {
		t.Fatal("expected failure without customer_id")
	}
	if !strings.Contains(resp.Error, "customer_id") {
		t.Errorf("error %q should name the missing parameter", resp.Error)
	}
}

func TestPolicyService_Actions(t *testing.T) {
	p := NewPolicyService()

	resp, err := p.Invoke(context.Background(), "fetch_policy_details", custParams("CUST-1"))
	if err != nil || !resp.Success {
		t.Fatalf("fetch_policy_details: err=%v resp=%+v", err, resp)
	}
	if num, _ := resp.Data["policy_number"].AsString(); num != "POL-88421" {
		t.Errorf("policy_number = %q, want POL-88421", num)
	}
	if prem, _ := resp.Data["monthly_premium"].AsNumber(); prem != 128.40 {
		t.Errorf("monthly_premium = %v, want 128.40", prem)
	}

	resp, err = p.Invoke(context.Background(), "calculate_current_benefits", custParams("CUST-1"))
	if err != nil || !resp.Success {
		t.Fatalf("calculate_current_benefits: err=%v resp=%+v", err, resp)
	}
	if disc, _ := resp.Data["policy_renewal_discount"].AsBool(); !disc {
		t.Error("gold tier should carry the renewal discount")
	}

	resp, _ = p.Invoke(context.Background(), "cancel_policy", custParams("CUST-1"))
	if resp.Success {
		t.Error("unsupported action should fail")
	}
}

func TestClaimsService_History(t *testing.T) {
	p := NewClaimsService()

	resp, err := p.Invoke(context.Background(), "get_claims_history", custParams("CUST-1"))
	if err != nil || !resp.Success {
		t.Fatalf("get_claims_history: err=%v resp=%+v", err, resp)
	}
	count, _ := resp.Data["claims_count"].AsNumber()
	if count != 2 {
		t.Fatalf("claims_count = %v, want 2", count)
	}
	claims, ok := resp.Data["claims"].AsList()
	if !ok || len(claims) != 2 {
		t.Fatalf("claims list = %v", resp.Data["claims"])
	}
	first, _ := claims[0].AsMap()
	if id, _ := first["claim_id"].AsString(); id != "CLM-2041" {
		t.Errorf("first claim_id = %q, want CLM-2041", id)
	}

	// CUST-2 has no claims on file; the call still succeeds.
	resp, err = p.Invoke(context.Background(), "get_claims_history", custParams("CUST-2"))
	if err != nil || !resp.Success {
		t.Fatalf("CUST-2 history: err=%v resp=%+v", err, resp)
	}
	if count, _ := resp.Data["claims_count"].AsNumber(); count != 0 {
		t.Errorf("CUST-2 claims_count = %v, want 0", count)
	}
}

func TestClaimsService_CreateClaimRecord(t *testing.T) {
	p := NewClaimsService()

	resp, err := p.Invoke(context.Background(), "create_claim_record", custParams("CUST-1"))
	if err != nil || !resp.Success {
		t.Fatalf("create_claim_record: err=%v resp=%+v", err, resp)
	}
	id, _ := resp.Data["claim_id"].AsString()
	if !strings.HasPrefix(id, "CLM-") {
		t.Errorf("claim_id = %q, want CLM- prefix", id)
	}
	if status, _ := resp.Data["claim_status"].AsString(); status != "received" {
		t.Errorf("claim_status = %q, want received", status)
	}
}

func TestBillingService_History(t *testing.T) {
	p := NewBillingService()

	resp, err := p.Invoke(context.Background(), "get_billing_history", custParams("CUST-2"))
	if err != nil || !resp.Success {
		t.Fatalf("get_billing_history: err=%v resp=%+v", err, resp)
	}
	if due, _ := resp.Data["billing_amount_due"].AsNumber(); due != 0 {
		t.Errorf("billing_amount_due = %v, want 0", due)
	}
	if date, _ := resp.Data["billing_due_date"].AsString(); date != "2026-10-01" {
		t.Errorf("billing_due_date = %q", date)
	}
}

func TestQuoteService_Rates(t *testing.T) {
	p := NewQuoteService()

	for coverage, want := range map[string]float64{"auto": 118, "home": 92, "life": 64} {
		resp, err := p.Invoke(context.Background(), "generate_insurance_quote", map[string]capability.Value{
			"coverage_type": capability.String(coverage),
		})
		if err != nil || !resp.Success {
			t.Fatalf("%s quote: err=%v resp=%+v", coverage, err, resp)
		}
		if prem, _ := resp.Data["monthly_premium"].AsNumber(); prem != want {
			t.Errorf("%s premium = %v, want %v", coverage, prem, want)
		}
		if id, _ := resp.Data["quote_id"].AsString(); !strings.HasPrefix(id, "QT-") {
			t.Errorf("%s quote_id = %q, want QT- prefix", coverage, id)
		}
	}
}

func TestQuoteService_RequiresCoverageType(t *testing.T) {
	p := NewQuoteService()

	resp, _ := p.Invoke(context.Background(), "generate_insurance_quote", nil)
	if resp.Success {
		t.Fatal("expected failure without coverage_type")
	}

	resp, _ = p.Invoke(context.Background(), "generate_insurance_quote", map[string]capability.Value{
		"coverage_type": capability.String("pet"),
	})
	if resp.Success {
		t.Fatal("expected failure for unrated coverage type")
	}
	if !strings.Contains(resp.Error, "pet") {
		t.Errorf("error %q should name the coverage type", resp.Error)
	}
}

func TestKnowledgeService_Search(t *testing.T) {
	p := NewKnowledgeService()

	resp, err := p.Invoke(context.Background(), "search_knowledge_base", nil)
	if err != nil || !resp.Success {
		t.Fatalf("search_knowledge_base: err=%v resp=%+v", err, resp)
	}
	if article, _ := resp.Data["article"].AsString(); article == "" {
		t.Error("article should not be empty")
	}
}

func TestRegisterAll(t *testing.T) {
	reg := capability.NewRegistry()
	RegisterAll(reg)

	want := []string{
		"billing-service", "claims-service", "customer-service",
		"knowledge-service", "policy-service", "quote-service",
	}
	got := reg.List()
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
