// Package main implements a mock LLM server for the assistant.
// It serves OpenAI-compatible /v1/chat/completions responses, routing by the
// kind of prompt it receives: classification prompts get a canned intent
// analysis derived from the user message, generation prompts get a short
// templated answer. This eliminates the need for a real LLM during wiring
// tests, making them fast, deterministic, and offline-capable.
//
// Usage:
//
//	mock-llm -fixtures /path/to/fixtures -port 11434
//
// When a fixture directory is given, JSON files named by model (e.g.,
// "mock-classifier.json") override the built-in behavior for that model.
// Numbered files ("mock-classifier.1.json", "mock-classifier.2.json") are
// served in call order, with the base file as a repeating fallback.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// --- OpenAI-compatible types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Server ---

type server struct {
	fixtures map[string][]string // model name → ordered fixture contents
	calls    atomic.Int64

	// Per-model call counters for sequential fixture selection.
	modelCalls   map[string]*atomic.Int64
	modelCallsMu sync.Mutex
}

func newServer(fixtures map[string][]string) *server {
	return &server{
		fixtures:   fixtures,
		modelCalls: make(map[string]*atomic.Int64),
	}
}

// getModelCounter returns the call counter for a model, creating it lazily.
func (s *server) getModelCounter(model string) *atomic.Int64 {
	s.modelCallsMu.Lock()
	defer s.modelCallsMu.Unlock()
	if c, ok := s.modelCalls[model]; ok {
		return c
	}
	c := &atomic.Int64{}
	s.modelCalls[model] = c
	return c
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing fixture response files (optional)")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	if envDir := os.Getenv("MOCK_LLM_FIXTURES"); envDir != "" && *fixtureDir == "" {
		*fixtureDir = envDir
	}

	fixtures := map[string][]string{}
	if *fixtureDir != "" {
		loaded, err := loadFixtures(*fixtureDir)
		if err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
		}
		fixtures = loaded
		log.Printf("Loaded %d model(s) from %s", len(fixtures), *fixtureDir)
	} else {
		log.Printf("No fixture directory; serving built-in responses")
	}

	s := newServer(fixtures)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/v1/models", s.handleModels)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock LLM server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	log.Printf("[call %d] model=%s messages=%d", callNum, req.Model, len(req.Messages))

	content := s.resolveContent(req)

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index: 0,
				Message: chatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4, // rough estimate
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// resolveContent picks a response: fixture sequence when one is configured
// for the model, otherwise a built-in response keyed on the prompt kind.
func (s *server) resolveContent(req chatRequest) string {
	seq, ok := s.fixtures[req.Model]
	if !ok {
		stripped := strings.TrimPrefix(req.Model, "mock-")
		seq, ok = s.fixtures[stripped]
	}
	if ok {
		counter := s.getModelCounter(req.Model)
		callIndex := int(counter.Add(1) - 1)
		if callIndex < len(seq) {
			return seq[callIndex]
		}
		return seq[len(seq)-1] // repeat last fixture
	}

	system, user := splitMessages(req.Messages)
	if strings.Contains(system, "intent classifier") || strings.Contains(system, "JSON object") {
		return builtinClassification(user)
	}
	return builtinGeneration(user)
}

// splitMessages returns the concatenated system prompt and the last user
// message.
func splitMessages(messages []chatMessage) (system, user string) {
	var sys []string
	for _, m := range messages {
		switch m.Role {
		case "system":
			sys = append(sys, m.Content)
		case "user":
			user = m.Content
		}
	}
	return strings.Join(sys, "\n"), user
}

// builtinClassification derives an intent analysis from keywords in the user
// message, mirroring what a cooperative classifier model would return.
func builtinClassification(user string) string {
	lower := strings.ToLower(user)

	intent := "general_inquiry"
	entities := map[string]any{}
	switch {
	case strings.Contains(lower, "file") && strings.Contains(lower, "claim"):
		intent = "claim_filing"
	case strings.Contains(lower, "claim"):
		intent = "claim_status"
	case strings.Contains(lower, "bill") || strings.Contains(lower, "payment"):
		intent = "billing_question"
	case strings.Contains(lower, "quote"):
		intent = "quote_request"
		for _, ct := range []string{"auto", "home", "life"} {
			if strings.Contains(lower, ct) {
				entities["coverage_type"] = ct
			}
		}
	case strings.Contains(lower, "policy") || strings.Contains(lower, "coverage") || strings.Contains(lower, "deductible"):
		intent = "policy_inquiry"
	}

	if id := customerIDRe.FindString(user); id != "" {
		entities["customer_id"] = id
	}

	analysis := map[string]any{
		"primary_intent": intent,
		"urgency":        "medium",
		"complexity":     "simple",
		"entities":       entities,
		"confidence":     0.9,
	}
	data, _ := json.Marshal(analysis)
	// Wrap in a fence the way chat models tend to.
	return "```json\n" + string(data) + "\n```"
}

var customerIDRe = regexp.MustCompile(`CUST-\d+`)

// builtinGeneration returns a short canned answer.
func builtinGeneration(user string) string {
	return fmt.Sprintf("Thanks for reaching out. Here is what I found regarding your request: %s. Let me know if you need anything else.",
		strings.TrimSpace(user))
}

// handleModels returns the list of available mock models (OpenAI-compatible).
func (s *server) handleModels(w http.ResponseWriter, _ *http.Request) {
	type modelEntry struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	}
	models := []modelEntry{
		{ID: "mock-classifier", Object: "model", OwnedBy: "mock-llm"},
		{ID: "mock-generator", Object: "model", OwnedBy: "mock-llm"},
	}
	for name := range s.fixtures {
		models = append(models, modelEntry{ID: name, Object: "model", OwnedBy: "mock-llm"})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   models,
	})
}

// handleStats returns call counts for test assertions.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.modelCallsMu.Lock()
	callsByModel := make(map[string]int64, len(s.modelCalls))
	for model, counter := range s.modelCalls {
		callsByModel[model] = counter.Load()
	}
	s.modelCallsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":    s.calls.Load(),
		"calls_by_model": callsByModel,
	})
}

// numberedFileRe matches files like "mock-classifier.1.json".
var numberedFileRe = regexp.MustCompile(`^(.+)\.(\d+)\.json$`)

// loadFixtures reads JSON files from dir and returns a map of model→content
// sequence. Numbered files come first in numeric order, with the base
// model.json file appended as the repeating fallback.
func loadFixtures(dir string) (map[string][]string, error) {
	baseFiles := make(map[string]string)
	numberedFiles := make(map[string]map[int]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("invalid JSON in %s", path)
		}
		content := string(data)

		if matches := numberedFileRe.FindStringSubmatch(info.Name()); matches != nil {
			model := matches[1]
			index, _ := strconv.Atoi(matches[2])
			if numberedFiles[model] == nil {
				numberedFiles[model] = make(map[int]string)
			}
			numberedFiles[model][index] = content
			return nil
		}

		model := strings.TrimSuffix(info.Name(), ".json")
		baseFiles[model] = content
		return nil
	})
	if err != nil {
		return nil, err
	}

	fixtures := make(map[string][]string)
	allModels := make(map[string]bool)
	for m := range baseFiles {
		allModels[m] = true
	}
	for m := range numberedFiles {
		allModels[m] = true
	}

	for model := range allModels {
		var seq []string
		if numbered, ok := numberedFiles[model]; ok {
			indices := make([]int, 0, len(numbered))
			for idx := range numbered {
				indices = append(indices, idx)
			}
			sort.Ints(indices)
			for _, idx := range indices {
				seq = append(seq, numbered[idx])
			}
		}
		if base, ok := baseFiles[model]; ok {
			seq = append(seq, base)
		}
		if len(seq) > 0 {
			fixtures[model] = seq
		}
	}

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixture files found in %s", dir)
	}
	return fixtures, nil
}
