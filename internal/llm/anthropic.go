package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type anthropicClient struct {
	provider Provider
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	blocks := make([]anthropicBlock, 0, 2)
	if len(req.Image) > 0 {
		// PDFs go through the document block type, raster images through image.
		blockType := "image"
		if req.MediaType == "application/pdf" {
			blockType = "document"
		}
		blocks = append(blocks, anthropicBlock{
			Type: blockType,
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: req.MediaType,
				Data:      base64.StdEncoding.EncodeToString(req.Image),
			},
		})
	}
	blocks = append(blocks, anthropicBlock{Type: "text", Text: req.Prompt})

	maxTokens := 16384
	if len(req.Image) > 0 {
		maxTokens = 4096
	}
	body := anthropicRequest{
		Model:     req.model(c.provider.Model),
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: blocks}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm anthropic: encode request: %w", err)
	}

	url := strings.TrimRight(c.provider.Endpoint, "/") + "/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", netErr(ProviderAnthropic, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.provider.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", netErr(ProviderAnthropic, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", netErr(ProviderAnthropic, err)
	}

	var decoded anthropicResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", statusErr(ProviderAnthropic, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &Error{Kind: KindMalformed, Provider: ProviderAnthropic, Err: err}
	}
	for _, block := range decoded.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &Error{Kind: KindMalformed, Provider: ProviderAnthropic, Message: "response has no text content"}
}
