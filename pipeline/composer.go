package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Generator is the narrow interface to the external text generation
// service. It receives the structured turn context and returns prose. It
// may fail; the composer always has a deterministic fallback.
type Generator interface {
	Generate(ctx context.Context, gc GenerationContext) (string, error)
}

// GenerationContext is the structured input handed to the generator.
type GenerationContext struct {
	Intent     Intent          `json:"intent"`
	UserText   string          `json:"user_text"`
	Aggregated *AggregatedData `json:"aggregated_data,omitempty"`

	// Derived summary fields the fallback template concatenates directly
	// and the generator is asked to elaborate on.
	StatusLine     string   `json:"status_line"`
	DetailedView   string   `json:"detailed_view,omitempty"`
	AccountSummary string   `json:"account_summary,omitempty"`
	NextSteps      []string `json:"next_steps,omitempty"`
}

// intentLabels render intents in customer-facing language.
var intentLabels = map[Intent]string{
	IntentClaimFiling:     "filing a claim",
	IntentClaimStatus:     "checking your claim status",
	IntentPolicyInquiry:   "your policy details",
	IntentBillingQuestion: "your billing question",
	IntentQuoteRequest:    "an insurance quote",
	IntentGeneralInquiry:  "your question",
}

// nextStepsByIntent lists the canned follow-up suggestions per intent.
var nextStepsByIntent = map[Intent][]string{
	IntentClaimFiling:     {"Keep photos and receipts related to the incident", "An adjuster will contact you within 2 business days"},
	IntentClaimStatus:     {"Reply here if you want details on a specific claim"},
	IntentPolicyInquiry:   {"Ask me about a specific coverage if you want the fine print"},
	IntentBillingQuestion: {"Let me know if you want to set up automatic payments"},
	IntentQuoteRequest:    {"Share your preferred deductible to refine this estimate"},
}

// Composer renders the final response string for a turn: clarifying
// questions, a generated (or templated) answer, or a recoverable-error
// message. It can never fail to produce some response.
type Composer struct {
	generator Generator
	logger    *slog.Logger
}

// NewComposer creates a response composer. generator may be nil, in which
// case the deterministic template is always used.
func NewComposer(generator Generator, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{generator: generator, logger: logger}
}

// Compose renders the response for an executed (or short-circuited) turn.
func (c *Composer) Compose(ctx context.Context, analysis *IntentAnalysis, outcome *ExecutionOutcome, userText string) string {
	switch outcome.ExecutionStatus {
	case ExecStatusPendingInformation:
		return c.composeQuestions(analysis.PrimaryIntent, outcome.QuestionsToAsk)
	case ExecStatusError:
		// The raw error stays in the trace; the customer gets a generic
		// recoverable message.
		return c.composeErrorResponse(analysis.PrimaryIntent)
	default:
		return c.composeAnswer(ctx, analysis, outcome, userText)
	}
}

// composeQuestions acknowledges the intent and asks for what's missing.
func (c *Composer) composeQuestions(intent Intent, questions []string) string {
	label := intentLabel(intent)

	var sb strings.Builder
	fmt.Fprintf(&sb, "I can help you with %s. ", label)

	switch len(questions) {
	case 0:
		sb.WriteString("Could you share a few more details so I can proceed?")
	case 1:
		sb.WriteString(questions[0])
	default:
		sb.WriteString("First I need a few details:\n")
		for _, q := range questions {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// composeErrorResponse renders the recoverable-error branch.
func (c *Composer) composeErrorResponse(intent Intent) string {
	return fmt.Sprintf(
		"I ran into a technical issue while working on %s. Your request was not lost — please try again in a moment, or contact support if this keeps happening.",
		intentLabel(intent))
}

// composeAnswer renders the completed/failed branch: it derives the summary
// fields, asks the generator for prose, and falls back to a deterministic
// template when generation fails.
func (c *Composer) composeAnswer(ctx context.Context, analysis *IntentAnalysis, outcome *ExecutionOutcome, userText string) string {
	gc := c.deriveContext(analysis, outcome, userText)

	if c.generator != nil {
		text, err := c.generator.Generate(ctx, gc)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			c.logger.Warn("Text generation failed, using fallback template",
				"intent", analysis.PrimaryIntent,
				"error", err)
		}
	}

	return renderFallback(gc)
}

// deriveContext computes the summary fields the generator and the fallback
// template share.
func (c *Composer) deriveContext(analysis *IntentAnalysis, outcome *ExecutionOutcome, userText string) GenerationContext {
	gc := GenerationContext{
		Intent:     analysis.PrimaryIntent,
		UserText:   userText,
		Aggregated: outcome.AggregatedData,
		NextSteps:  nextStepsByIntent[analysis.PrimaryIntent],
	}

	failed := outcome.TotalSteps - outcome.SuccessfulSteps
	switch {
	case outcome.TotalSteps == 0:
		gc.StatusLine = fmt.Sprintf("I looked into %s but couldn't retrieve anything yet.", intentLabel(analysis.PrimaryIntent))
	case failed == 0:
		gc.StatusLine = fmt.Sprintf("Here's what I found about %s.", intentLabel(analysis.PrimaryIntent))
	default:
		gc.StatusLine = fmt.Sprintf(
			"Here's what I could retrieve about %s — %d of %d lookups didn't complete, so this may be partial.",
			intentLabel(analysis.PrimaryIntent), failed, outcome.TotalSteps)
	}

	if outcome.AggregatedData != nil {
		gc.DetailedView = renderBuckets(outcome.AggregatedData)
		gc.AccountSummary = renderAccountSummary(outcome.AggregatedData)
	}

	return gc
}

// renderFallback concatenates the derived fields without free-form prose.
func renderFallback(gc GenerationContext) string {
	var sb strings.Builder
	sb.WriteString(gc.StatusLine)

	if gc.DetailedView != "" {
		sb.WriteString("\n\n")
		sb.WriteString(gc.DetailedView)
	}
	if gc.AccountSummary != "" {
		sb.WriteString("\n\n")
		sb.WriteString(gc.AccountSummary)
	}
	if len(gc.NextSteps) > 0 {
		sb.WriteString("\n\nNext steps:")
		for _, step := range gc.NextSteps {
			fmt.Fprintf(&sb, "\n- %s", step)
		}
	}
	return sb.String()
}

// renderBuckets flattens the populated data buckets into display lines.
func renderBuckets(agg *AggregatedData) string {
	sections := []struct {
		title string
		data  map[string]capability.Value
	}{
		{"Account", agg.CustomerData},
		{"Policy", agg.PolicyData},
		{"Claims", agg.ClaimsData},
		{"Billing", agg.BillingData},
		{"Quote", agg.QuoteData},
		{"Other", agg.GeneralData},
	}

	var sb strings.Builder
	for _, s := range sections {
		if len(s.data) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s:", s.title)
		for _, key := range sortedKeys(s.data) {
			fmt.Fprintf(&sb, "\n  %s: %s", prettifyKey(key), s.data[key].Text())
		}
	}
	return sb.String()
}

// renderAccountSummary produces a one-line account recap when customer
// data is present.
func renderAccountSummary(agg *AggregatedData) string {
	if len(agg.CustomerData) == 0 {
		return ""
	}
	name, _ := agg.CustomerData["name"].AsString()
	tier, _ := agg.CustomerData["tier"].AsString()
	switch {
	case name != "" && tier != "":
		return fmt.Sprintf("Account: %s (%s tier).", name, tier)
	case name != "":
		return fmt.Sprintf("Account: %s.", name)
	default:
		return ""
	}
}

// sortedKeys returns the map keys in stable order for deterministic output.
func sortedKeys(m map[string]capability.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// prettifyKey turns snake_case data keys into display labels.
func prettifyKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// intentLabel renders an intent for customer-facing text.
func intentLabel(intent Intent) string {
	if label, ok := intentLabels[intent]; ok {
		return label
	}
	return "your request"
}
