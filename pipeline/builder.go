package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Provider names the plan templates address. The hosting layer registers
// providers under these names in the capability registry.
const (
	ProviderCustomer  = "customer-service"
	ProviderPolicy    = "policy-service"
	ProviderClaims    = "claims-service"
	ProviderBilling   = "billing-service"
	ProviderQuote     = "quote-service"
	ProviderKnowledge = "knowledge-service"
)

const (
	defaultStepTimeout = 10 * time.Second

	// maxPlanTimeout bounds the summed step timeouts.
	maxPlanTimeout = 60 * time.Second
)

// PlanBuilder maps a validated intent to an ordered list of steps against
// named capability providers. Templates are intentionally static and
// enumerable rather than synthesized per request: the mapping from intent
// to side-effecting backend calls stays auditable, which matters in a
// regulated domain. New intents require a new template, not new planning
// logic.
type PlanBuilder struct {
	detector *MissingInfoDetector
	logger   *slog.Logger
}

// NewPlanBuilder creates a plan builder.
func NewPlanBuilder(detector *MissingInfoDetector, logger *slog.Logger) *PlanBuilder {
	if detector == nil {
		detector = NewMissingInfoDetector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanBuilder{detector: detector, logger: logger}
}

// stepSpec is one row of a plan template before IDs and shared parameters
// are attached.
type stepSpec struct {
	provider       string
	action         string
	expectedOutput string
}

// template bundles a step list with its coordination type.
type template struct {
	planType     PlanType
	coordination Coordination
	steps        []stepSpec
}

// planTemplates is the fixed dispatch table from intent to step template.
// Steps under sequential coordination may read prior-step output through
// the executor's running context; parallel and simple steps must not.
var planTemplates = map[Intent]template{
	IntentClaimStatus: {
		planType:     PlanSequentialExecution,
		coordination: CoordinationSequential,
		steps: []stepSpec{
			{ProviderCustomer, "fetch_customer_data", "customer profile and active policies"},
			{ProviderClaims, "get_claims_history", "claims with current status"},
		},
	},
	IntentPolicyInquiry: {
		planType:     PlanSequentialExecution,
		coordination: CoordinationSequential,
		steps: []stepSpec{
			{ProviderCustomer, "fetch_customer_data", "customer profile and active policies"},
			{ProviderPolicy, "fetch_policy_details", "coverage terms and limits"},
			{ProviderPolicy, "calculate_current_benefits", "benefit summary derived from policy details"},
		},
	},
	IntentClaimFiling: {
		planType:     PlanSequentialExecution,
		coordination: CoordinationSequential,
		steps: []stepSpec{
			{ProviderCustomer, "fetch_customer_data", "customer profile and active policies"},
			{ProviderPolicy, "fetch_policy_details", "coverage terms for claim validation"},
			{ProviderClaims, "create_claim_record", "new claim ID and intake status"},
		},
	},
	IntentBillingQuestion: {
		planType:     PlanParallelExecution,
		coordination: CoordinationParallel,
		steps: []stepSpec{
			{ProviderCustomer, "fetch_customer_data", "customer profile"},
			{ProviderBilling, "get_billing_history", "invoices and payment status"},
		},
	},
	IntentQuoteRequest: {
		planType:     PlanSimpleExecution,
		coordination: CoordinationSimple,
		steps: []stepSpec{
			{ProviderQuote, "generate_insurance_quote", "premium estimate for the requested coverage"},
		},
	},
}

// generalTemplate is the fallback for general_inquiry and any future intent
// without a dedicated template.
var generalTemplate = template{
	planType:     PlanSimpleExecution,
	coordination: CoordinationSimple,
	steps: []stepSpec{
		{ProviderKnowledge, "search_knowledge_base", "relevant help articles"},
	},
}

// Build derives an execution plan from a validated intent analysis.
// When required information is missing it returns an information-gathering
// plan carrying clarifying questions and no steps; otherwise it returns a
// ready-to-execute plan with steps and no questions. Build is
// deterministic: identical inputs yield structurally identical plans.
func (b *PlanBuilder) Build(analysis *IntentAnalysis, userText, customerID string) *ExecutionPlan {
	missing := b.detector.Detect(analysis.PrimaryIntent, analysis.Entities, customerID)
	if len(missing) > 0 {
		b.logger.Info("Plan pending information",
			"intent", analysis.PrimaryIntent,
			"missing", missing)
		return &ExecutionPlan{
			PlanType:           PlanInformationGathering,
			PrimaryIntent:      analysis.PrimaryIntent,
			Complexity:         analysis.Complexity,
			MissingInformation: missing,
			QuestionsToAsk:     b.detector.QuestionsFor(missing, analysis.PrimaryIntent),
			Coordination:       CoordinationSimple,
			Status:             PlanStatusPendingInformation,
		}
	}

	tmpl, ok := planTemplates[analysis.PrimaryIntent]
	if !ok {
		tmpl = generalTemplate
	}

	params := b.baseParameters(analysis, userText, customerID)
	steps := make([]Step, 0, len(tmpl.steps))
	var total time.Duration
	for i, spec := range tmpl.steps {
		steps = append(steps, Step{
			StepID:         fmt.Sprintf("step-%d", i+1),
			Provider:       spec.provider,
			Action:         spec.action,
			Parameters:     params,
			ExpectedOutput: spec.expectedOutput,
			Timeout:        defaultStepTimeout,
		})
		total += defaultStepTimeout
	}
	if total > maxPlanTimeout {
		total = maxPlanTimeout
	}

	b.logger.Info("Built execution plan",
		"intent", analysis.PrimaryIntent,
		"plan_type", tmpl.planType,
		"steps", len(steps),
		"coordination", tmpl.coordination)

	return &ExecutionPlan{
		PlanType:      tmpl.planType,
		PrimaryIntent: analysis.PrimaryIntent,
		Complexity:    analysis.Complexity,
		Steps:         steps,
		Coordination:  tmpl.coordination,
		Status:        PlanStatusReadyToExecute,
		Timeout:       total,
	}
}

// baseParameters assembles the shared step parameters: the customer
// identifier, the raw user text, and every non-absent extracted entity.
// The returned map is shared across steps and treated as read-only; the
// executor copies it before merging per-step context.
func (b *PlanBuilder) baseParameters(analysis *IntentAnalysis, userText, customerID string) map[string]capability.Value {
	params := make(map[string]capability.Value, len(analysis.Entities)+2)
	for key, val := range analysis.Entities {
		if !val.IsAbsent() {
			params[key] = val
		}
	}
	if customerID != "" {
		params[fieldCustomerID] = capability.String(customerID)
	}
	params["user_text"] = capability.String(userText)
	return params
}
