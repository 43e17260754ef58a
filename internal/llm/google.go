package llm

import (
	"context"

	"google.golang.org/genai"
)

type googleClient struct {
	provider Provider
}

func (c *googleClient) Complete(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.provider.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", netErr(ProviderGoogle, err)
	}

	parts := make([]*genai.Part, 0, 2)
	if len(req.Image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.MediaType,
				Data:     req.Image,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	var config *genai.GenerateContentConfig
	if req.System != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: req.System}},
			},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, req.model(c.provider.Model), contents, config)
	if err != nil {
		return "", netErr(ProviderGoogle, err)
	}
	text := resp.Text()
	if text == "" {
		return "", &Error{Kind: KindMalformed, Provider: ProviderGoogle, Message: "empty response from model"}
	}
	return text, nil
}
