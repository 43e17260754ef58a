package query

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porkytheblack/yuki/internal/cards"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/store"
)

// scriptedClient returns canned responses in order and records every request.
type scriptedClient struct {
	responses []string
	err       error
	requests  []llm.Request
}

func (c *scriptedClient) Complete(_ context.Context, req llm.Request) (string, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	i := len(c.requests) - 1
	if i >= len(c.responses) {
		return "", errors.New("scripted client ran out of responses")
	}
	return c.responses[i], nil
}

func newTestEngine(t *testing.T, client llm.Client) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewEngine(st, client), st
}

func seedEntry(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.CreateLedgerEntry(&domain.LedgerEntry{
		Date:        "2024-03-01",
		Description: "coffee",
		Amount:      decimal.RequireFromString("-4.5"),
		Currency:    "USD",
		CategoryID:  "dining",
		Source:      domain.SourceManual,
	}))
}

func TestValidateSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		ok   bool
	}{
		{"plain select", "SELECT * FROM ledger", true},
		{"lowercase select", "select sum(amount) from ledger", true},
		{"trailing semicolon", "SELECT date FROM ledger;", true},
		{"column named created_at", "SELECT created_at FROM ledger ORDER BY created_at", true},
		{"leading whitespace", "  \n SELECT 1", true},
		{"empty", "", false},
		{"delete", "DELETE FROM ledger", false},
		{"update disguised", "UPDATE ledger SET amount = 0", false},
		{"stacked statements", "SELECT 1; DROP TABLE ledger", false},
		{"pragma", "PRAGMA journal_mode = DELETE", false},
		{"select with embedded drop", "SELECT * FROM ledger WHERE 1=1; DROP TABLE ledger;", false},
		{"insert via cte keyword", "WITH x AS (SELECT 1) INSERT INTO ledger SELECT * FROM x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSQL(tt.sql)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsafeSQL)
			}
		})
	}
}

func TestGreetingShortCircuits(t *testing.T) {
	client := &scriptedClient{}
	engine, st := newTestEngine(t, client)

	response, err := engine.Answer(context.Background(), "hello")
	require.NoError(t, err)

	// no model call was made and the sole card is text, never a chart
	assert.Empty(t, client.requests)
	require.Len(t, response.Cards, 1)
	assert.Equal(t, cards.TypeText, response.Cards[0].Type)

	history, err := st.ListChatHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Question)
	assert.Empty(t, history[0].SQLQuery)
}

func TestGreetingVariants(t *testing.T) {
	for _, q := range []string{"Hi", "HELLO", "hey!", "thanks", "Thank you.", "what can you do?"} {
		assert.True(t, isSmallTalk(q), q)
	}
	for _, q := range []string{"how much did I spend?", "hello, how much did I spend on rent?"} {
		assert.False(t, isSmallTalk(q), q)
	}
}

func TestDataQueryHappyPath(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": true, "sql_query": "SELECT date, description, amount FROM ledger ORDER BY date DESC LIMIT 10", "query_type": "data_query"}`,
		`{"cards":[{"type":"table","content":{"title":"Recent Transactions","columns":["Date","Description","Amount"],"rows":[["2024-03-01","coffee","-4.50"]]}}]}`,
	}}
	engine, st := newTestEngine(t, client)
	seedEntry(t, st)

	response, err := engine.Answer(context.Background(), "List my recent transactions")
	require.NoError(t, err)

	require.Len(t, client.requests, 2)
	require.Len(t, response.Cards, 1)
	// never a chart as the sole card for a transaction listing
	assert.Equal(t, cards.TypeTable, response.Cards[0].Type)
	assert.Equal(t, "Recent Transactions", response.Cards[0].Table.Title)

	history, err := st.ListChatHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].SQLQuery, "SELECT date, description, amount")
	assert.Equal(t, 1, history[0].CardCount)
}

func TestUnsafeSQLBecomesErrorCard(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": true, "sql_query": "DELETE FROM ledger", "query_type": "data_query"}`,
	}}
	engine, st := newTestEngine(t, client)
	seedEntry(t, st)

	response, err := engine.Answer(context.Background(), "wipe everything")
	require.NoError(t, err)

	// the statement was never executed and only the analyze call happened
	require.Len(t, client.requests, 1)
	require.Len(t, response.Cards, 1)
	require.Equal(t, cards.TypeText, response.Cards[0].Type)
	require.NotNil(t, response.Cards[0].Text.IsError)
	assert.True(t, *response.Cards[0].Text.IsError)

	entries, listErr := st.ListLedger(store.LedgerFilter{})
	require.NoError(t, listErr)
	assert.Len(t, entries, 1)
}

func TestEmptyResultSkipsFormatting(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": true, "sql_query": "SELECT * FROM ledger WHERE category_id = 'travel'", "query_type": "data_query"}`,
	}}
	engine, _ := newTestEngine(t, client)

	response, err := engine.Answer(context.Background(), "travel spending?")
	require.NoError(t, err)

	// only the analyze call; the canned no-data card comes back directly
	assert.Len(t, client.requests, 1)
	require.Len(t, response.Cards, 1)
	assert.Equal(t, cards.TypeText, response.Cards[0].Type)
	assert.Contains(t, response.Cards[0].Text.Body, "don't have any data")
}

func TestMalformedFormatterReplyBecomesErrorCard(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": true, "sql_query": "SELECT description FROM ledger", "query_type": "data_query"}`,
		`here you go! the answer is forty-two`,
	}}
	engine, st := newTestEngine(t, client)
	seedEntry(t, st)

	response, err := engine.Answer(context.Background(), "what did I buy?")
	require.NoError(t, err)

	require.Len(t, response.Cards, 1)
	require.Equal(t, cards.TypeText, response.Cards[0].Type)
	require.NotNil(t, response.Cards[0].Text.IsError)
	assert.True(t, *response.Cards[0].Text.IsError)
}

func TestProviderFailureBecomesErrorCard(t *testing.T) {
	client := &scriptedClient{err: &llm.Error{Kind: llm.KindNetwork, Provider: "ollama"}}
	engine, _ := newTestEngine(t, client)

	response, err := engine.Answer(context.Background(), "how much did I spend?")
	require.NoError(t, err)

	require.Len(t, response.Cards, 1)
	require.Equal(t, cards.TypeText, response.Cards[0].Type)
	require.NotNil(t, response.Cards[0].Text.IsError)
	assert.True(t, *response.Cards[0].Text.IsError)
}

func TestConversationalPath(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": false, "sql_query": null, "query_type": "advice"}`,
		`{"cards":[{"type":"text","content":{"body":"Try the **50/30/20** rule."}}]}`,
	}}
	engine, _ := newTestEngine(t, client)

	response, err := engine.Answer(context.Background(), "how can I save money?")
	require.NoError(t, err)

	require.Len(t, client.requests, 2)
	assert.Equal(t, conversationalPrompt, client.requests[1].System)
	require.Len(t, response.Cards, 1)
	assert.Contains(t, response.Cards[0].Text.Body, "50/30/20")
}

func TestHistoryFlowsIntoPrompts(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"needs_data": false, "sql_query": null, "query_type": "general"}`,
		`{"cards":[{"type":"text","content":{"body":"Sure."}}]}`,
		`{"needs_data": false, "sql_query": null, "query_type": "general"}`,
		`{"cards":[{"type":"text","content":{"body":"As I said."}}]}`,
	}}
	engine, _ := newTestEngine(t, client)

	_, err := engine.Answer(context.Background(), "tell me about budgeting")
	require.NoError(t, err)
	_, err = engine.Answer(context.Background(), "say that again")
	require.NoError(t, err)

	require.Len(t, client.requests, 4)
	// the second question's analyze prompt carries the earlier turns
	assert.Contains(t, client.requests[2].Prompt, "tell me about budgeting")
	assert.Contains(t, client.requests[2].Prompt, "Previous conversation")
}
