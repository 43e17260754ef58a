// Package llm is the provider gateway: one uniform capability to send a text
// or text+image prompt to whichever model endpoint is configured. It carries
// no business logic; prompt construction and response validation belong to
// callers.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Provider types. openai, openrouter and lmstudio all speak the
// chat-completions dialect and share one client.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderLMStudio   = "lmstudio"
	ProviderOllama     = "ollama"
	ProviderGoogle     = "google"
)

// Provider is the active endpoint configuration. It is persisted as user
// data (settings table) and threaded explicitly into every call site so
// tests can substitute a fake gateway.
type Provider struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model"`
	IsLocal  bool   `json:"isLocal"`
}

// Request is one completion call. Image plus MediaType switch the call onto
// the provider's vision pathway. Model overrides the provider default for
// this call only.
type Request struct {
	System    string
	Prompt    string
	Image     []byte
	MediaType string
	Model     string
}

// Client completes prompts against one configured provider.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var httpClient = &http.Client{Timeout: 120 * time.Second}

// New builds a client for the given provider configuration.
func New(p Provider) (Client, error) {
	switch p.Type {
	case ProviderAnthropic:
		return &anthropicClient{provider: p}, nil
	case ProviderOpenAI, ProviderOpenRouter, ProviderLMStudio:
		return &openaiClient{provider: p}, nil
	case ProviderOllama:
		return &ollamaClient{provider: p}, nil
	case ProviderGoogle:
		return &googleClient{provider: p}, nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider type %q", p.Type)
	}
}

func (r Request) model(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}

// TestConnection performs a one-token round trip against the provider,
// surfacing auth/network problems before the user commits to it.
func TestConnection(ctx context.Context, p Provider) error {
	client, err := New(p)
	if err != nil {
		return err
	}
	_, err = client.Complete(ctx, Request{Prompt: "Say hello"})
	return err
}
