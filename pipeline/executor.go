package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// contextKey is the parameter key under which sequential steps receive the
// accumulated results of the steps before them.
const contextKey = "previous_results"

// completedMeansAttempted documents the execution-status rule: a plan
// reports completed whenever at least one step was attempted, regardless of
// how many steps failed. A plan where every step failed is still
// "completed"; the success/failure mix lives in the outcome counters. This
// mirrors the documented product behavior and is asserted by tests — do not
// change it to mean "all steps succeeded" without changing the callers that
// render success claims from it.
const completedMeansAttempted = true

// Executor runs a plan's steps against a capability registry. The registry
// is passed at call time, never held: it is shared and read-only during a
// turn, while every other piece of executor state is per-call.
type Executor struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewExecutor creates a plan executor.
func NewExecutor(logger *slog.Logger, metrics *Metrics) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger, metrics: metrics}
}

// Execute runs the plan and derives the execution status.
// Individual step failures never abort the plan: the failed result is
// recorded and execution continues with whatever context was accumulated
// before the failure. Only a crash escaping step execution entirely turns
// the outcome status to error.
func (e *Executor) Execute(ctx context.Context, reg *capability.Registry, plan *ExecutionPlan) *ExecutionOutcome {
	if plan.Status == PlanStatusPendingInformation {
		return &ExecutionOutcome{
			ExecutionStatus: ExecStatusPendingInformation,
			Coordination:    plan.Coordination,
			QuestionsToAsk:  plan.QuestionsToAsk,
		}
	}

	if len(plan.Steps) == 0 {
		return &ExecutionOutcome{
			ExecutionStatus: ExecStatusFailed,
			Coordination:    plan.Coordination,
		}
	}

	var (
		results []StepResult
		crash   error
	)
	switch plan.Coordination {
	case CoordinationParallel:
		results, crash = e.runParallel(ctx, reg, plan.Steps)
	default:
		// Sequential is also the shape of "simple" plans.
		results, crash = e.runSequential(ctx, reg, plan.Steps)
	}

	outcome := &ExecutionOutcome{
		StepResults:  results,
		Coordination: plan.Coordination,
		TotalSteps:   len(results),
	}
	for _, r := range results {
		if r.Success {
			outcome.SuccessfulSteps++
		}
	}

	switch {
	case crash != nil:
		outcome.ExecutionStatus = ExecStatusError
		outcome.ErrorDetail = crash.Error()
	case len(results) > 0 && completedMeansAttempted:
		outcome.ExecutionStatus = ExecStatusCompleted
	default:
		outcome.ExecutionStatus = ExecStatusFailed
	}

	return outcome
}

// runSequential executes steps one at a time in declared order, threading
// a growing context of prior results into each subsequent step.
func (e *Executor) runSequential(ctx context.Context, reg *capability.Registry, steps []Step) (results []StepResult, crash error) {
	for _, step := range steps {
		params := step.Parameters
		if len(results) > 0 {
			params = withContext(params, results)
		}

		result, err := e.runStep(ctx, reg, step, params)
		if err != nil {
			// The crash aborts remaining steps but keeps prior results for
			// aggregation, consistent with the partial-failure policy.
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// runParallel fans independent steps out concurrently and joins them before
// returning. Parallel steps never receive prior-step context; only
// sequential coordination may thread results. Each step carries its own
// timeout, so a hung step cannot block its siblings past its deadline.
func (e *Executor) runParallel(ctx context.Context, reg *capability.Registry, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, len(steps))

	var mu sync.Mutex
	var crash error

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range steps {
		i, step := i, step
		g.Go(func() error {
			result, err := e.runStep(gctx, reg, step, step.Parameters)
			if err != nil {
				mu.Lock()
				if crash == nil {
					crash = err
				}
				mu.Unlock()
				// Do not fail the group: sibling results are still usable.
				result = failedResult(step, "aborted by execution crash")
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	// Drop zero-value slots if a crash prevented a step from reporting.
	attempted := results[:0]
	for _, r := range results {
		if r.StepID != "" {
			attempted = append(attempted, r)
		}
	}
	return attempted, crash
}

// runStep invokes one step with its own deadline and converts every
// structured failure into a failed StepResult. The error return is reserved
// for crashes (panics) escaping the provider.
func (e *Executor) runStep(ctx context.Context, reg *capability.Registry, step Step, params map[string]capability.Value) (result StepResult, crash error) {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			crash = &PlanExecutionError{StepID: step.StepID, err: fmt.Errorf("provider panic: %v", r)}
			e.logger.Error("Provider invocation crashed",
				"step", step.StepID,
				"provider", step.Provider,
				"action", step.Action,
				"panic", r)
		}
	}()

	start := time.Now()
	resp, err := reg.Invoke(stepCtx, step.Provider, step.Action, params)

	switch {
	case err != nil:
		result = failedResult(step, err.Error())
	case resp.Success:
		result = StepResult{
			StepID:    step.StepID,
			Provider:  step.Provider,
			Action:    step.Action,
			Success:   true,
			Data:      resp.Data,
			Timestamp: time.Now().UTC(),
		}
	default:
		result = failedResult(step, resp.Error)
	}

	e.observeStep(step, result, time.Since(start))
	return result, nil
}

// observeStep records step metrics and logs the outcome.
func (e *Executor) observeStep(step Step, result StepResult, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveStep(step.Provider, step.Action, result.Success, elapsed)
	}
	if result.Success {
		e.logger.Debug("Step succeeded",
			"step", step.StepID,
			"provider", step.Provider,
			"action", step.Action,
			"elapsed", elapsed)
		return
	}
	e.logger.Warn("Step failed, continuing plan",
		"step", step.StepID,
		"provider", step.Provider,
		"action", step.Action,
		"error", result.Error,
		"elapsed", elapsed)
}

// failedResult builds the failed StepResult for a step.
func failedResult(step Step, message string) StepResult {
	return StepResult{
		StepID:    step.StepID,
		Provider:  step.Provider,
		Action:    step.Action,
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	}
}

// withContext copies the step parameters and attaches the accumulated prior
// results under the previous_results key. The original map is shared across
// steps and must not be mutated.
func withContext(params map[string]capability.Value, prior []StepResult) map[string]capability.Value {
	merged := make(map[string]capability.Value, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}

	items := make([]capability.Value, 0, len(prior))
	for _, r := range prior {
		entry := map[string]capability.Value{
			"step_id": capability.String(r.StepID),
			"action":  capability.String(r.Action),
			"success": capability.Bool(r.Success),
		}
		if r.Success {
			entry["data"] = capability.Map(r.Data)
		} else {
			entry["error"] = capability.String(r.Error)
		}
		items = append(items, capability.Map(entry))
	}
	merged[contextKey] = capability.List(items...)
	return merged
}
