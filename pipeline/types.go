// Package pipeline implements the request orchestration core of the
// insurance assistant: it turns a free-text customer message into a
// classified intent, a multi-step execution plan against named capability
// providers, a fault-tolerant execution of that plan, an aggregation of the
// heterogeneous step results, and a composed natural-language response.
package pipeline

import (
	"time"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Intent is the canonical category of what the customer wants.
type Intent string

const (
	IntentClaimFiling     Intent = "claim_filing"
	IntentClaimStatus     Intent = "claim_status"
	IntentPolicyInquiry   Intent = "policy_inquiry"
	IntentBillingQuestion Intent = "billing_question"
	IntentQuoteRequest    Intent = "quote_request"
	IntentGeneralInquiry  Intent = "general_inquiry"
)

// IsValid checks whether the intent is one of the enumerated values.
func (i Intent) IsValid() bool {
	switch i {
	case IntentClaimFiling, IntentClaimStatus, IntentPolicyInquiry,
		IntentBillingQuestion, IntentQuoteRequest, IntentGeneralInquiry:
		return true
	}
	return false
}

// String returns the string representation of the intent.
func (i Intent) String() string { return string(i) }

// ParseIntent converts a string to an Intent, returning empty for values
// outside the enumerated set. Classifier output outside the set is rejected
// by the analyzer, never coerced.
func ParseIntent(s string) Intent {
	in := Intent(s)
	if in.IsValid() {
		return in
	}
	return ""
}

// Urgency grades how time-sensitive the customer's request is.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency converts a string to an Urgency, defaulting to medium for
// unrecognized values. Urgency is advisory; a bad value must not fail a turn.
func ParseUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(s)
	}
	return UrgencyMedium
}

// Complexity grades how involved fulfilling the request is expected to be.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ParseComplexity converts a string to a Complexity, defaulting to simple.
func ParseComplexity(s string) Complexity {
	switch Complexity(s) {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return Complexity(s)
	}
	return ComplexitySimple
}

// IntentAnalysis is the normalized result of classifying user text.
// It is produced once per turn and never mutated afterwards.
type IntentAnalysis struct {
	PrimaryIntent    Intent                      `json:"primary_intent"`
	SecondaryIntents []string                    `json:"secondary_intents,omitempty"`
	Entities         map[string]capability.Value `json:"entities,omitempty"`
	Confidence       float64                     `json:"confidence"`
	Urgency          Urgency                     `json:"urgency"`
	Complexity       Complexity                  `json:"complexity"`
}

// PlanType describes the overall shape of an execution plan.
type PlanType string

const (
	PlanInformationGathering PlanType = "information_gathering"
	PlanSequentialExecution  PlanType = "sequential_execution"
	PlanParallelExecution    PlanType = "parallel_execution"
	PlanSimpleExecution      PlanType = "simple_execution"
)

// Coordination describes how a plan's steps are scheduled.
type Coordination string

const (
	CoordinationSequential Coordination = "sequential"
	CoordinationParallel   Coordination = "parallel"
	CoordinationSimple     Coordination = "simple"
)

// PlanStatus describes whether a plan is executable.
type PlanStatus string

const (
	PlanStatusPendingInformation PlanStatus = "pending_information"
	PlanStatusReadyToExecute     PlanStatus = "ready_to_execute"
)

// Step is one planned invocation of a capability provider. Steps are
// created by the plan builder, consumed exactly once by the executor, and
// never mutated after creation.
type Step struct {
	StepID         string                      `json:"step_id"`
	Provider       string                      `json:"provider"`
	Action         string                      `json:"action"`
	Parameters     map[string]capability.Value `json:"parameters,omitempty"`
	ExpectedOutput string                      `json:"expected_output,omitempty"`
	Timeout        time.Duration               `json:"timeout"`
}

// ExecutionPlan is an immutable description of the work for one user turn.
// A plan is either an information-gathering plan (no steps, has questions)
// or an execution plan (steps, no questions) — never both.
type ExecutionPlan struct {
	PlanType           PlanType      `json:"plan_type"`
	PrimaryIntent      Intent        `json:"primary_intent"`
	Complexity         Complexity    `json:"complexity"`
	Steps              []Step        `json:"steps,omitempty"`
	MissingInformation []string      `json:"missing_information,omitempty"`
	QuestionsToAsk     []string      `json:"questions_to_ask,omitempty"`
	Coordination       Coordination  `json:"coordination"`
	Status             PlanStatus    `json:"status"`
	Timeout            time.Duration `json:"timeout"`
}

// StepResult is the outcome of executing one Step. Exactly one of
// Data/Error is populated, gated by Success.
type StepResult struct {
	StepID    string                      `json:"step_id"`
	Provider  string                      `json:"provider"`
	Action    string                      `json:"action"`
	Success   bool                        `json:"success"`
	Data      map[string]capability.Value `json:"data,omitempty"`
	Error     string                      `json:"error,omitempty"`
	Timestamp time.Time                   `json:"timestamp"`
}

// ExecutionMetadata summarizes an execution for the aggregate record.
type ExecutionMetadata struct {
	TotalSteps      int           `json:"total_steps"`
	SuccessfulSteps int           `json:"successful_steps"`
	FailedSteps     int           `json:"failed_steps"`
	ExecutionTime   time.Duration `json:"execution_time"`
}

// AggregatedData buckets heterogeneous step outputs into domain categories.
// It is owned exclusively by one pipeline invocation.
type AggregatedData struct {
	CustomerData map[string]capability.Value `json:"customer_data,omitempty"`
	PolicyData   map[string]capability.Value `json:"policy_data,omitempty"`
	ClaimsData   map[string]capability.Value `json:"claims_data,omitempty"`
	BillingData  map[string]capability.Value `json:"billing_data,omitempty"`
	QuoteData    map[string]capability.Value `json:"quote_data,omitempty"`
	GeneralData  map[string]capability.Value `json:"general_data,omitempty"`
	Metadata     ExecutionMetadata           `json:"metadata"`
}

// ExecStatus is the derived status of the whole execution phase.
type ExecStatus string

const (
	// ExecStatusCompleted means at least one step was attempted, regardless
	// of how many failed. A plan where every step failed still reports
	// completed; the success/failure mix lives in the metadata.
	ExecStatusCompleted ExecStatus = "completed"

	// ExecStatusFailed means the plan carried no steps to attempt.
	ExecStatusFailed ExecStatus = "failed"

	// ExecStatusError means an unexpected crash escaped step execution
	// entirely, as opposed to a structured provider failure.
	ExecStatusError ExecStatus = "error"

	// ExecStatusPendingInformation means the plan was an information
	// gathering plan and nothing was executed.
	ExecStatusPendingInformation ExecStatus = "pending_information"
)

// ExecutionOutcome wraps the whole execution phase for one plan.
type ExecutionOutcome struct {
	ExecutionStatus ExecStatus      `json:"execution_status"`
	StepResults     []StepResult    `json:"step_results,omitempty"`
	AggregatedData  *AggregatedData `json:"aggregated_data,omitempty"`
	Coordination    Coordination    `json:"coordination_type"`
	TotalSteps      int             `json:"total_steps"`
	SuccessfulSteps int             `json:"successful_steps"`

	// ErrorDetail carries the internal error text when ExecutionStatus is
	// error. It is surfaced in the trace only, never to the end user.
	ErrorDetail string `json:"error_detail,omitempty"`

	// QuestionsToAsk carries the clarifying questions when the status is
	// pending_information.
	QuestionsToAsk []string `json:"questions_to_ask,omitempty"`
}

// Trace is the structured record of one turn, consumed by downstream
// observability tooling. Every turn populates a trace, including error paths.
type Trace struct {
	TurnID           string            `json:"turn_id"`
	IntentAnalysis   *IntentAnalysis   `json:"intent_analysis,omitempty"`
	ExecutionPlan    *ExecutionPlan    `json:"execution_plan,omitempty"`
	ExecutionOutcome *ExecutionOutcome `json:"execution_outcome,omitempty"`
	Error            string            `json:"error,omitempty"`
	StartedAt        time.Time         `json:"started_at"`
	Duration         time.Duration     `json:"duration"`
}

// TurnResult is what the hosting layer receives for one user turn.
type TurnResult struct {
	Response   string  `json:"response"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Trace      *Trace  `json:"trace"`
}
