package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// testProvider builds a Func provider with a fixed behavior per action.
func testProvider(name string, handler func(ctx context.Context, action string, params map[string]capability.Value) (*capability.Response, error)) capability.Provider {
	return &capability.Func{ProviderName: name, Handler: handler}
}

func okProvider(name string, data map[string]capability.Value) capability.Provider {
	return testProvider(name, func(_ context.Context, _ string, _ map[string]capability.Value) (*capability.Response, error) {
		return capability.OK(data), nil
	})
}

func failProvider(name, message string) capability.Provider {
	return testProvider(name, func(_ context.Context, _ string, _ map[string]capability.Value) (*capability.Response, error) {
		return capability.Fail(message), nil
	})
}

func panicProvider(name string) capability.Provider {
	return testProvider(name, func(_ context.Context, _ string, _ map[string]capability.Value) (*capability.Response, error) {
		panic("backend exploded")
	})
}

func sequentialPlan(steps ...Step) *ExecutionPlan {
	return &ExecutionPlan{
		PlanType:      PlanSequentialExecution,
		PrimaryIntent: IntentClaimStatus,
		Steps:         steps,
		Coordination:  CoordinationSequential,
		Status:        PlanStatusReadyToExecute,
	}
}

func step(id, provider, action string) Step {
	return Step{
		StepID:   id,
		Provider: provider,
		Action:   action,
		Timeout:  time.Second,
	}
}

func TestExecute_PartialFailureContinues(t *testing.T) {
	reg := capability.NewRegistry()
	reg.Register(okProvider("customer-service", map[string]capability.Value{"name": capability.String("Maria")}))
	reg.Register(failProvider("claims-service", "backend unavailable"))
	reg.Register(okProvider("billing-service", map[string]capability.Value{"balance": capability.Number(42)}))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, sequentialPlan(
		step("step-1", "customer-service", "fetch_customer_data"),
		step("step-2", "claims-service", "get_claims_history"),
		step("step-3", "billing-service", "get_billing_history"),
	))

	assert.Equal(t, ExecStatusCompleted, outcome.ExecutionStatus)
	require.Len(t, outcome.StepResults, 3, "a failing step must not halt the plan")
	assert.Equal(t, 3, outcome.TotalSteps)
	assert.Equal(t, 2, outcome.SuccessfulSteps)

	failed := outcome.StepResults[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "backend unavailable", failed.Error)
	assert.Nil(t, failed.Data, "failed results carry no data")

	succeeded := outcome.StepResults[0]
	assert.True(t, succeeded.Success)
	assert.Empty(t, succeeded.Error, "successful results carry no error")
}

func TestExecute_AllStepsFailedIsStillCompleted(t *testing.T) {
	reg := capability.NewRegistry()
	reg.Register(failProvider("customer-service", "down"))
	reg.Register(failProvider("claims-service", "down"))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, sequentialPlan(
		step("step-1", "customer-service", "fetch_customer_data"),
		step("step-2", "claims-service", "get_claims_history"),
	))

	// Completed means attempted, not succeeded.
	assert.Equal(t, ExecStatusCompleted, outcome.ExecutionStatus)
	assert.Equal(t, 0, outcome.SuccessfulSteps)
	assert.Equal(t, 2, outcome.TotalSteps)
}

func TestExecute_UnknownProviderIsAFailedStep(t *testing.T) {
	reg := capability.NewRegistry()

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, sequentialPlan(
		step("step-1", "ghost-service", "do_thing"),
	))

	require.Len(t, outcome.StepResults, 1)
	assert.False(t, outcome.StepResults[0].Success)
	assert.Contains(t, outcome.StepResults[0].Error, "not available")
}

func TestExecute_PendingInformationShortCircuits(t *testing.T) {
	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), capability.NewRegistry(), &ExecutionPlan{
		PlanType:       PlanInformationGathering,
		Status:         PlanStatusPendingInformation,
		QuestionsToAsk: []string{"Could you confirm your customer ID?"},
		Coordination:   CoordinationSimple,
	})

	assert.Equal(t, ExecStatusPendingInformation, outcome.ExecutionStatus)
	assert.Empty(t, outcome.StepResults)
	assert.Equal(t, []string{"Could you confirm your customer ID?"}, outcome.QuestionsToAsk)
}

func TestExecute_EmptyPlanIsFailed(t *testing.T) {
	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), capability.NewRegistry(), sequentialPlan())

	assert.Equal(t, ExecStatusFailed, outcome.ExecutionStatus)
}

func TestExecute_CrashKeepsPriorResults(t *testing.T) {
	reg := capability.NewRegistry()
	reg.Register(okProvider("customer-service", map[string]capability.Value{"name": capability.String("Maria")}))
	reg.Register(panicProvider("claims-service"))
	reg.Register(okProvider("billing-service", nil))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, sequentialPlan(
		step("step-1", "customer-service", "fetch_customer_data"),
		step("step-2", "claims-service", "get_claims_history"),
		step("step-3", "billing-service", "get_billing_history"),
	))

	assert.Equal(t, ExecStatusError, outcome.ExecutionStatus)
	assert.Contains(t, outcome.ErrorDetail, "step-2")
	// The crash aborts remaining steps but keeps what already succeeded.
	require.Len(t, outcome.StepResults, 1)
	assert.Equal(t, "step-1", outcome.StepResults[0].StepID)
}

func TestExecute_SequentialThreadsPreviousResults(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]map[string]capability.Value)

	record := func(name string) capability.Provider {
		return testProvider(name, func(_ context.Context, action string, params map[string]capability.Value) (*capability.Response, error) {
			mu.Lock()
			seen[name] = params
			mu.Unlock()
			return capability.OK(map[string]capability.Value{"from": capability.String(name)}), nil
		})
	}

	reg := capability.NewRegistry()
	reg.Register(record("customer-service"))
	reg.Register(record("claims-service"))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, sequentialPlan(
		step("step-1", "customer-service", "fetch_customer_data"),
		step("step-2", "claims-service", "get_claims_history"),
	))
	require.Equal(t, ExecStatusCompleted, outcome.ExecutionStatus)

	// First step sees no accumulated context.
	_, hasContext := seen["customer-service"]["previous_results"]
	assert.False(t, hasContext)

	// Second step sees the first step's result.
	prior, hasContext := seen["claims-service"]["previous_results"]
	require.True(t, hasContext)
	items, ok := prior.AsList()
	require.True(t, ok)
	require.Len(t, items, 1)

	entry, _ := items[0].AsMap()
	stepID, _ := entry["step_id"].AsString()
	assert.Equal(t, "step-1", stepID)
}

func TestExecute_ParallelStepsGetNoContext(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]map[string]capability.Value)

	record := func(name string) capability.Provider {
		return testProvider(name, func(_ context.Context, _ string, params map[string]capability.Value) (*capability.Response, error) {
			mu.Lock()
			seen[name] = params
			mu.Unlock()
			return capability.OK(nil), nil
		})
	}

	reg := capability.NewRegistry()
	reg.Register(record("customer-service"))
	reg.Register(record("billing-service"))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, &ExecutionPlan{
		PlanType:     PlanParallelExecution,
		Coordination: CoordinationParallel,
		Status:       PlanStatusReadyToExecute,
		Steps: []Step{
			step("step-1", "customer-service", "fetch_customer_data"),
			step("step-2", "billing-service", "get_billing_history"),
		},
	})

	assert.Equal(t, ExecStatusCompleted, outcome.ExecutionStatus)
	assert.Len(t, outcome.StepResults, 2)
	for name, params := range seen {
		if _, ok := params["previous_results"]; ok {
			t.Errorf("parallel step %s received prior-step context", name)
		}
	}
}

func TestExecute_ParallelCrashDoesNotSinkSiblings(t *testing.T) {
	reg := capability.NewRegistry()
	reg.Register(panicProvider("customer-service"))
	reg.Register(okProvider("billing-service", map[string]capability.Value{"balance": capability.Number(10)}))

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, &ExecutionPlan{
		PlanType:     PlanParallelExecution,
		Coordination: CoordinationParallel,
		Status:       PlanStatusReadyToExecute,
		Steps: []Step{
			step("step-1", "customer-service", "fetch_customer_data"),
			step("step-2", "billing-service", "get_billing_history"),
		},
	})

	assert.Equal(t, ExecStatusError, outcome.ExecutionStatus)
	require.Len(t, outcome.StepResults, 2)

	var sawSuccess bool
	for _, r := range outcome.StepResults {
		if r.StepID == "step-2" && r.Success {
			sawSuccess = true
		}
	}
	assert.True(t, sawSuccess, "the sibling of a crashing step still completes")
}

func TestExecute_StepTimeoutBecomesFailedResult(t *testing.T) {
	reg := capability.NewRegistry()
	reg.Register(testProvider("customer-service", func(ctx context.Context, _ string, _ map[string]capability.Value) (*capability.Response, error) {
		select {
		case <-ctx.Done():
			return capability.Fail("lookup timed out"), nil
		case <-time.After(5 * time.Second):
			return capability.OK(nil), nil
		}
	}))

	plan := sequentialPlan(Step{
		StepID:   "step-1",
		Provider: "customer-service",
		Action:   "fetch_customer_data",
		Timeout:  20 * time.Millisecond,
	})

	e := NewExecutor(nil, nil)
	outcome := e.Execute(context.Background(), reg, plan)

	assert.Equal(t, ExecStatusCompleted, outcome.ExecutionStatus)
	require.Len(t, outcome.StepResults, 1)
	assert.False(t, outcome.StepResults[0].Success)
}
