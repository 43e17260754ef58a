package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Static model lists for providers that have no usable listing endpoint.
var (
	anthropicModels = []string{
		"claude-sonnet-4-20250514",
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
	}
	googleModels = []string{
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
)

// openrouter exposes thousands of models; cap the list so the settings UI
// stays usable.
const openRouterModelLimit = 20

// ListModels asks the provider which models it serves. Anthropic and Google
// return curated static lists.
func ListModels(ctx context.Context, providerType, endpoint, apiKey string) ([]string, error) {
	switch providerType {
	case ProviderAnthropic:
		return anthropicModels, nil
	case ProviderGoogle:
		return googleModels, nil
	case ProviderOllama:
		return listOllamaModels(ctx, endpoint)
	case ProviderLMStudio:
		return listOpenAIModels(ctx, providerType, endpoint, "", nil, 0)
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, &Error{Kind: KindAuth, Provider: providerType, Message: "API key required"}
		}
		gptOnly := func(id string) bool { return strings.HasPrefix(id, "gpt-") }
		return listOpenAIModels(ctx, providerType, endpoint, apiKey, gptOnly, 0)
	case ProviderOpenRouter:
		if apiKey == "" {
			return nil, &Error{Kind: KindAuth, Provider: providerType, Message: "API key required"}
		}
		return listOpenAIModels(ctx, providerType, endpoint, apiKey, nil, openRouterModelLimit)
	default:
		return nil, fmt.Errorf("llm: unsupported provider type %q", providerType)
	}
}

func listOllamaModels(ctx context.Context, endpoint string) ([]string, error) {
	url := strings.TrimRight(endpoint, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, netErr(ProviderOllama, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, netErr(ProviderOllama, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(ProviderOllama, resp.StatusCode, "")
	}

	var decoded struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &Error{Kind: KindMalformed, Provider: ProviderOllama, Err: err}
	}
	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// listOpenAIModels hits the chat-completions style GET /models endpoint.
// keep filters by id when set, limit truncates when positive.
func listOpenAIModels(ctx context.Context, providerType, endpoint, apiKey string, keep func(string) bool, limit int) ([]string, error) {
	url := strings.TrimRight(endpoint, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, netErr(providerType, err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, netErr(providerType, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(providerType, resp.StatusCode, "")
	}

	var decoded struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &Error{Kind: KindMalformed, Provider: providerType, Err: err}
	}
	names := make([]string, 0, len(decoded.Data))
	for _, m := range decoded.Data {
		if keep != nil && !keep(m.ID) {
			continue
		}
		names = append(names, m.ID)
		if limit > 0 && len(names) == limit {
			break
		}
	}
	return names, nil
}
