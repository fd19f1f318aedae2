package pipeline

import (
	"strings"
	"time"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
)

// Aggregator buckets heterogeneous step outputs into named domain
// categories plus execution metadata. Routing is a fixed substring match on
// the step's action name; the table order matters because the first match
// wins ("claim" before "billing" is irrelevant today, but the order is part
// of the documented behavior).
type Aggregator struct{}

// NewAggregator creates a result aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// bucketFor returns the destination bucket for an action name.
func bucketFor(agg *AggregatedData, action string) *map[string]capability.Value {
	switch {
	case strings.Contains(action, "customer"):
		return &agg.CustomerData
	case strings.Contains(action, "policy"):
		return &agg.PolicyData
	case strings.Contains(action, "claim"):
		return &agg.ClaimsData
	case strings.Contains(action, "billing"):
		return &agg.BillingData
	case strings.Contains(action, "quote"):
		return &agg.QuoteData
	default:
		return &agg.GeneralData
	}
}

// Aggregate merges successful step results into domain buckets.
// Failed results are counted in the metadata but contribute no data. The
// merge is shallow, last write wins on key collision; nested structures are
// not deep-merged. Metadata is always populated regardless of bucket
// contents.
func (a *Aggregator) Aggregate(results []StepResult, executionTime time.Duration) *AggregatedData {
	agg := &AggregatedData{
		Metadata: ExecutionMetadata{
			TotalSteps:    len(results),
			ExecutionTime: executionTime,
		},
	}

	for _, r := range results {
		if !r.Success {
			agg.Metadata.FailedSteps++
			continue
		}
		agg.Metadata.SuccessfulSteps++

		bucket := bucketFor(agg, r.Action)
		*bucket = capability.MergeValueMaps(*bucket, r.Data)
	}

	return agg
}
