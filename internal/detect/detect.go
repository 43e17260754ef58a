// Package detect classifies free-form chat messages as either a mention of a
// personal transaction or ordinary conversation. It is the conversational
// producer of ledger rows and applies the same normalization rules as the
// document pipelines.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/porkytheblack/yuki/internal/classify"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
)

const systemPrompt = `You detect expenses from casual conversation.

If the message mentions a personal expense or income, extract:
{
  "is_transaction": true,
  "date": "YYYY-MM-DD",
  "description": "...",
  "amount": -0.00,
  "category": "...",
  "merchant": "..." or null,
  "confidence": "high" | "medium" | "low"
}

If no transaction mentioned:
{
  "is_transaction": false
}

Output only valid JSON.`

// Detector asks the model whether a message describes a transaction.
type Detector struct {
	client llm.Client
}

func New(client llm.Client) *Detector {
	return &Detector{client: client}
}

// Detect classifies the message. A reply that cannot be decoded counts as
// "no transaction" rather than an error; casual chat must never fail the
// conversation. Amounts on positive detections are normalized to canonical
// sign: negative unless the category resolved to income.
func (d *Detector) Detect(ctx context.Context, message string, categories []string) (*domain.DetectionResult, error) {
	raw, err := d.client.Complete(ctx, llm.Request{
		System: systemPrompt,
		Prompt: fmt.Sprintf("The user said: %q", message),
	})
	if err != nil {
		return nil, err
	}

	result := decode(raw)
	if !result.IsTransaction {
		return result, nil
	}
	if result.Amount == nil || result.Description == "" {
		return &domain.DetectionResult{IsTransaction: false}, nil
	}

	known := make(map[string]bool, len(categories)+1)
	known[classify.DefaultCategoryID] = true
	for _, name := range categories {
		known[classify.CategoryID(name, nil)] = true
	}
	result.Category = classify.CategoryID(result.Category, known)

	// The model is unreliable about signs in conversation, so the sign is
	// derived from the category here, exactly once.
	signed := classify.SignedAmount(*result.Amount, result.Category != domain.IncomeCategoryID)
	result.Amount = &signed

	if result.Date == "" {
		result.Date = time.Now().Format("2006-01-02")
	}
	if result.Confidence == "" {
		result.Confidence = domain.ConfidenceLow
	}
	return result, nil
}

func decode(raw string) *domain.DetectionResult {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result domain.DetectionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start || json.Unmarshal([]byte(cleaned[start:end+1]), &result) != nil {
			return &domain.DetectionResult{IsTransaction: false}
		}
	}
	return &result
}
