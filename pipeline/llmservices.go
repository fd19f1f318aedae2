package pipeline

import (
	"context"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/llm"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/model"
)

// LLM-backed implementations of the Classifier and Generator contracts.
// These are the only places the pipeline touches the llm client; everything
// downstream of the interfaces runs identically against deterministic stubs.

// classificationTemperature keeps classifier output stable across retries.
var classificationTemperature = 0.0

// LLMClassifier adapts an llm.Completer to the Classifier interface.
type LLMClassifier struct {
	client llm.Completer
}

// NewLLMClassifier creates a classifier backed by the LLM client.
func NewLLMClassifier(client llm.Completer) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Classify implements Classifier. It returns the raw completion text; the
// analyzer owns parsing and validation.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (string, error) {
	system, user := BuildClassificationMessages(text)
	resp, err := c.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityClassification.String(),
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: &classificationTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// LLMGenerator adapts an llm.Completer to the Generator interface.
type LLMGenerator struct {
	client llm.Completer
}

// NewLLMGenerator creates a generator backed by the LLM client.
func NewLLMGenerator(client llm.Completer) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, gc GenerationContext) (string, error) {
	system, user, err := BuildGenerationMessages(gc)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityGeneration.String(),
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
