package detect

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porkytheblack/yuki/internal/llm"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Complete(_ context.Context, _ llm.Request) (string, error) {
	f.calls++
	return f.response, f.err
}

var categories = []string{"Groceries", "Dining", "Income", "Other"}

func TestDetectExpense(t *testing.T) {
	client := &fakeClient{response: `{
		"is_transaction": true,
		"date": "2024-03-14",
		"description": "Lunch",
		"amount": 20,
		"category": "Dining",
		"merchant": null,
		"confidence": "high"
	}`}

	result, err := New(client).Detect(context.Background(), "I spent $20 on lunch yesterday", categories)
	require.NoError(t, err)
	assert.True(t, result.IsTransaction)
	require.NotNil(t, result.Amount)
	// Expense sign is derived from the category, whatever the model said.
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(-20)))
	assert.Equal(t, "dining", result.Category)
	assert.Contains(t, []string{"medium", "high"}, result.Confidence)
}

func TestDetectQuestionIsNotTransaction(t *testing.T) {
	client := &fakeClient{response: `{"is_transaction": false}`}

	result, err := New(client).Detect(context.Background(), "How much did I spend last month?", categories)
	require.NoError(t, err)
	assert.False(t, result.IsTransaction)
	assert.Nil(t, result.Amount)
}

func TestDetectIncomeStaysPositive(t *testing.T) {
	client := &fakeClient{response: `{
		"is_transaction": true,
		"date": "2024-03-01",
		"description": "Paycheck",
		"amount": -3000,
		"category": "Income",
		"confidence": "high"
	}`}

	result, err := New(client).Detect(context.Background(), "got paid $3000 today", categories)
	require.NoError(t, err)
	require.NotNil(t, result.Amount)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "income", result.Category)
}

func TestDetectUndecodableReplyMeansNoTransaction(t *testing.T) {
	client := &fakeClient{response: "that's a great question!"}

	result, err := New(client).Detect(context.Background(), "nice weather today", categories)
	require.NoError(t, err)
	assert.False(t, result.IsTransaction)
}

func TestDetectPositiveWithoutAmountDowngraded(t *testing.T) {
	client := &fakeClient{response: `{"is_transaction": true, "description": "something"}`}

	result, err := New(client).Detect(context.Background(), "bought a thing", categories)
	require.NoError(t, err)
	assert.False(t, result.IsTransaction)
}

func TestDetectFencedReply(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"is_transaction\": true, \"date\": \"2024-05-01\", \"description\": \"Coffee\", \"amount\": 4.5, \"category\": \"Dining\", \"confidence\": \"medium\"}\n```"}

	result, err := New(client).Detect(context.Background(), "grabbed a coffee for $4.50", categories)
	require.NoError(t, err)
	assert.True(t, result.IsTransaction)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("-4.5")))
}

func TestDetectUnknownCategoryFallsBack(t *testing.T) {
	client := &fakeClient{response: `{"is_transaction": true, "date": "2024-05-01", "description": "Thing", "amount": 10, "category": "Llama Grooming", "confidence": "low"}`}

	result, err := New(client).Detect(context.Background(), "spent $10 on llama grooming", categories)
	require.NoError(t, err)
	assert.Equal(t, "other", result.Category)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(-10)))
}
