package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ollamaClient struct {
	provider Provider
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.Image) > 0 {
		return "", fmt.Errorf("llm ollama: vision is not supported, use a hosted provider for images")
	}

	body := ollamaGenerateRequest{
		Model:  req.model(c.provider.Model),
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm ollama: encode request: %w", err)
	}

	url := strings.TrimRight(c.provider.Endpoint, "/") + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", netErr(ProviderOllama, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", netErr(ProviderOllama, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", netErr(ProviderOllama, err)
	}

	var decoded ollamaGenerateResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
			msg = decoded.Error
		}
		return "", statusErr(ProviderOllama, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &Error{Kind: KindMalformed, Provider: ProviderOllama, Err: err}
	}
	return decoded.Response, nil
}
