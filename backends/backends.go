// Package backends provides in-memory capability providers with
// deterministic fixture data. They stand in for the real customer, policy,
// claims, billing and quote services so the CLI and tests run
// self-contained, and they double as reference implementations of the
// provider contract.
package backends

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/pipeline"
)

// customerRecord is one fixture account shared by all services.
type customerRecord struct {
	name         string
	tier         string
	since        string
	policyNumber string
	coverageType string
	premium      float64
	deductible   float64
	amountDue    float64
	dueDate      string
	claims       []map[string]capability.Value
}

// fixtures keys fixture accounts by customer ID.
var fixtures = map[string]customerRecord{
	"CUST-1": {
		name:         "Maria Alvarez",
		tier:         "gold",
		since:        "2018-03-12",
		policyNumber: "POL-88421",
		coverageType: "auto",
		premium:      128.40,
		deductible:   500,
		amountDue:    128.40,
		dueDate:      "2026-09-15",
		claims: []map[string]capability.Value{
			{
				"claim_id": capability.String("CLM-2041"),
				"status":   capability.String("approved"),
				"filed_on": capability.String("2026-05-02"),
				"amount":   capability.Number(1840),
			},
			{
				"claim_id": capability.String("CLM-2188"),
				"status":   capability.String("in_review"),
				"filed_on": capability.String("2026-08-11"),
				"amount":   capability.Number(960),
			},
		},
	},
	"CUST-2": {
		name:         "Devon Park",
		tier:         "standard",
		since:        "2023-11-01",
		policyNumber: "POL-90133",
		coverageType: "home",
		premium:      86.10,
		deductible:   1000,
		amountDue:    0,
		dueDate:      "2026-10-01",
	},
}

// quoteRates maps coverage types to baseline monthly premiums.
var quoteRates = map[string]float64{
	"auto": 118,
	"home": 92,
	"life": 64,
}

// lookupCustomer resolves the customer_id parameter against the fixtures.
func lookupCustomer(params map[string]capability.Value) (customerRecord, string, error) {
	id, ok := params["customer_id"].AsString()
	if !ok || id == "" {
		return customerRecord{}, "", fmt.Errorf("customer_id parameter is required")
	}
	rec, ok := fixtures[id]
	if !ok {
		return customerRecord{}, id, fmt.Errorf("customer %s not found", id)
	}
	return rec, id, nil
}

// NewCustomerService creates the customer-service provider.
func NewCustomerService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderCustomer,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			if action != "fetch_customer_data" {
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
			rec, id, err := lookupCustomer(params)
			if err != nil {
				return capability.Fail(err.Error()), nil
			}
			return capability.OK(map[string]capability.Value{
				"customer_id":    capability.String(id),
				"name":           capability.String(rec.name),
				"tier":           capability.String(rec.tier),
				"customer_since": capability.String(rec.since),
			}), nil
		},
	}
}

// NewPolicyService creates the policy-service provider.
func NewPolicyService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderPolicy,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			rec, _, err := lookupCustomer(params)
			if err != nil {
				return capability.Fail(err.Error()), nil
			}
			switch action {
			case "fetch_policy_details":
				return capability.OK(map[string]capability.Value{
					"policy_number":   capability.String(rec.policyNumber),
					"policy_coverage": capability.String(rec.coverageType),
					"monthly_premium": capability.Number(rec.premium),
					"deductible":      capability.Number(rec.deductible),
				}), nil
			case "calculate_current_benefits":
				// Benefits derive from the policy terms; the detailed terms
				// also arrive via previous_results under sequential plans.
				return capability.OK(map[string]capability.Value{
					"policy_deductible_remaining": capability.Number(rec.deductible),
					"policy_renewal_discount":     capability.Bool(rec.tier == "gold"),
				}), nil
			default:
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
		},
	}
}

// NewClaimsService creates the claims-service provider.
func NewClaimsService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderClaims,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			rec, _, err := lookupCustomer(params)
			if err != nil {
				return capability.Fail(err.Error()), nil
			}
			switch action {
			case "get_claims_history":
				items := make([]capability.Value, 0, len(rec.claims))
				for _, c := range rec.claims {
					items = append(items, capability.Map(c))
				}
				return capability.OK(map[string]capability.Value{
					"claims":       capability.List(items...),
					"claims_count": capability.Number(float64(len(rec.claims))),
				}), nil
			case "create_claim_record":
				return capability.OK(map[string]capability.Value{
					"claim_id":     capability.String(fmt.Sprintf("CLM-%s", uuid.New().String()[:8])),
					"claim_status": capability.String("received"),
				}), nil
			default:
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
		},
	}
}

// NewBillingService creates the billing-service provider.
func NewBillingService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderBilling,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			if action != "get_billing_history" {
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
			rec, _, err := lookupCustomer(params)
			if err != nil {
				return capability.Fail(err.Error()), nil
			}
			return capability.OK(map[string]capability.Value{
				"billing_amount_due": capability.Number(rec.amountDue),
				"billing_due_date":   capability.String(rec.dueDate),
				"billing_monthly":    capability.Number(rec.premium),
			}), nil
		},
	}
}

// NewQuoteService creates the quote-service provider. Quotes need no
// account, only a coverage type.
func NewQuoteService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderQuote,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			if action != "generate_insurance_quote" {
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
			coverage, ok := params["coverage_type"].AsString()
			if !ok || coverage == "" {
				return capability.Fail("coverage_type parameter is required"), nil
			}
			rate, ok := quoteRates[coverage]
			if !ok {
				return capability.Fail(fmt.Sprintf("no rates for coverage type %s", coverage)), nil
			}
			return capability.OK(map[string]capability.Value{
				"quote_id":        capability.String(fmt.Sprintf("QT-%s", uuid.New().String()[:8])),
				"quote_coverage":  capability.String(coverage),
				"monthly_premium": capability.Number(rate),
				"valid_days":      capability.Number(30),
			}), nil
		},
	}
}

// NewKnowledgeService creates the knowledge-service provider used by
// general inquiries.
func NewKnowledgeService() capability.Provider {
	return &capability.Func{
		ProviderName: pipeline.ProviderKnowledge,
		Handler: func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			if action != "search_knowledge_base" {
				return capability.Fail(fmt.Sprintf("unsupported action %s", action)), nil
			}
			return capability.OK(map[string]capability.Value{
				"article": capability.String("You can manage policies, claims, billing and quotes through this assistant. Ask about any of them to get started."),
			}), nil
		},
	}
}

// RegisterAll registers every fixture provider on the registry.
func RegisterAll(reg *capability.Registry) {
	reg.Register(NewCustomerService())
	reg.Register(NewPolicyService())
	reg.Register(NewClaimsService())
	reg.Register(NewBillingService())
	reg.Register(NewQuoteService())
	reg.Register(NewKnowledgeService())
}
