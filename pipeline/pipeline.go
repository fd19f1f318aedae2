package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Pipeline wires the orchestration components into the single entry point
// the hosting layer calls. All per-turn state (plan, step results,
// aggregated data, trace) is owned by one HandleTurn invocation; the
// capability registry is the only shared value and is read-only during a
// turn.
type Pipeline struct {
	analyzer   *Analyzer
	builder    *PlanBuilder
	executor   *Executor
	aggregator *Aggregator
	composer   *Composer
	registry   *capability.Registry
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New assembles a pipeline from its two external language services and the
// capability registry. generator may be nil to always use the deterministic
// response template.
func New(classifier Classifier, generator Generator, registry *capability.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	detector := NewMissingInfoDetector()
	p.analyzer = NewAnalyzer(classifier, p.logger)
	p.builder = NewPlanBuilder(detector, p.logger)
	p.executor = NewExecutor(p.logger, p.metrics)
	p.aggregator = NewAggregator()
	p.composer = NewComposer(generator, p.logger)

	return p
}

// HandleTurn processes one user turn end to end: classify, plan, execute,
// aggregate, compose. The returned TurnResult always carries a populated
// trace, including on the classification-error path, where the error is
// also returned so the hosting layer can render its own "I couldn't
// understand that" message.
func (p *Pipeline) HandleTurn(ctx context.Context, userText, customerID string) (*TurnResult, error) {
	start := time.Now()
	trace := &Trace{
		TurnID:    fmt.Sprintf("turn-%s", uuid.New().String()[:8]),
		StartedAt: start.UTC(),
	}

	logger := p.logger.With("turn_id", trace.TurnID)
	logger.Info("Handling turn", "customer_id", customerID, "text_length", len(userText))

	analysis, err := p.analyzer.Analyze(ctx, userText)
	if err != nil {
		trace.Error = err.Error()
		trace.Duration = time.Since(start)
		p.metrics.ObserveClassificationFailure()
		logger.Warn("Turn failed at classification", "error", err)
		return &TurnResult{Trace: trace}, err
	}
	trace.IntentAnalysis = analysis

	plan := p.builder.Build(analysis, userText, customerID)
	trace.ExecutionPlan = plan

	outcome := p.executor.Execute(ctx, p.registry, plan)
	outcome.AggregatedData = p.aggregator.Aggregate(outcome.StepResults, time.Since(start))
	trace.ExecutionOutcome = outcome

	response := p.composer.Compose(ctx, analysis, outcome, userText)

	trace.Duration = time.Since(start)
	p.metrics.ObserveTurn(analysis.PrimaryIntent, outcome.ExecutionStatus, trace.Duration)
	logger.Info("Turn complete",
		"intent", analysis.PrimaryIntent,
		"status", outcome.ExecutionStatus,
		"steps", outcome.TotalSteps,
		"successful_steps", outcome.SuccessfulSteps,
		"duration", trace.Duration)

	return &TurnResult{
		Response:   response,
		Intent:     analysis.PrimaryIntent.String(),
		Confidence: analysis.Confidence,
		Trace:      trace,
	}, nil
}
