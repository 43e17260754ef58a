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

// openaiClient speaks the chat-completions dialect. OpenRouter and LM Studio
// expose the same surface, so they share this implementation.
type openaiClient struct {
	provider Provider
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiImagePart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type openaiChatRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openaiMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.System})
	}

	maxTokens := 16384
	if len(req.Image) > 0 {
		maxTokens = 4096
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.MediaType, base64.StdEncoding.EncodeToString(req.Image))
		imagePart := openaiImagePart{Type: "image_url"}
		imagePart.ImageURL = &struct {
			URL string `json:"url"`
		}{URL: dataURL}
		messages = append(messages, openaiMessage{
			Role: "user",
			Content: []openaiImagePart{
				imagePart,
				{Type: "text", Text: req.Prompt},
			},
		})
	} else {
		messages = append(messages, openaiMessage{Role: "user", Content: req.Prompt})
	}

	body := openaiChatRequest{
		Model:     req.model(c.provider.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm %s: encode request: %w", c.provider.Type, err)
	}

	url := strings.TrimRight(c.provider.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", netErr(c.provider.Type, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.provider.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.provider.APIKey)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", netErr(c.provider.Type, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", netErr(c.provider.Type, err)
	}

	var decoded openaiChatResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", statusErr(c.provider.Type, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &Error{Kind: KindMalformed, Provider: c.provider.Type, Err: err}
	}
	if len(decoded.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Provider: c.provider.Type, Message: "response has no choices"}
	}
	return decoded.Choices[0].Message.Content, nil
}
