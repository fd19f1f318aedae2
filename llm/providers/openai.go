package providers

import (
	"net/http"
	"os"
	"strings"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/llm"
)

// Environment variables consulted for OpenAI-compatible endpoints.
const (
	openAIKeyEnv         = "OPENAI_API_KEY"
	openRouterSiteEnv    = "OPENROUTER_SITE_URL"
	openRouterSiteTitle  = "OPENROUTER_SITE_NAME"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIProvider targets OpenAI or OpenRouter. It shares the chat
// completions wire format with OllamaProvider but carries bearer auth and
// the hosted default URL.
type OpenAIProvider struct {
	OllamaProvider
}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

// Name returns the provider identifier.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL constructs the chat completions endpoint, accepting base URLs
// that already include the path.
func (o *OpenAIProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders adds bearer auth and the OpenRouter attribution headers when
// the corresponding environment variables are set.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	if key := os.Getenv(openAIKeyEnv); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if site := os.Getenv(openRouterSiteEnv); site != "" {
		req.Header.Set("HTTP-Referer", site)
	}
	if title := os.Getenv(openRouterSiteTitle); title != "" {
		req.Header.Set("X-Title", title)
	}
}
