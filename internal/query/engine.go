// Package query answers natural-language questions about the user's
// finances: one model call to turn the question into SQL, a validated
// read-only execution, and a second model call to shape the rows into
// response cards. Every failure path converges to a single error text card;
// nothing past this package ever sees a malformed response.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/porkytheblack/yuki/internal/cards"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/logger"
	"github.com/porkytheblack/yuki/internal/store"
)

// historyDepth is how many conversation turns are replayed into prompts.
const historyDepth = 10

const noDataBody = "I don't have any data matching that query yet. Try uploading some financial documents or receipts first, and then I can help you analyze your spending!"

const greetingBody = "Hey! I'm Yuki, your personal finance assistant. I can help you with:\n\n- **Tracking and analyzing spending** from your uploaded statements and receipts\n- **Answering questions** about your finances\n- **Budgeting tips** when you want them\n\nAsk me anything, like \"how much did I spend on groceries last month?\""

// Engine orchestrates the two-call question pipeline.
type Engine struct {
	store  *store.Store
	client llm.Client
}

func NewEngine(st *store.Store, client llm.Client) *Engine {
	return &Engine{store: st, client: client}
}

type analysis struct {
	NeedsData bool    `json:"needs_data"`
	SQLQuery  *string `json:"sql_query"`
	QueryType string  `json:"query_type"`
}

// Answer processes one question end to end. The returned ResponseData is
// always valid per the card protocol; provider and validation failures come
// back as a single error text card, not as an error.
func (e *Engine) Answer(ctx context.Context, question string) (cards.ResponseData, error) {
	log := logger.FromContext(ctx)

	session, err := e.store.ActiveSession()
	if err != nil {
		return cards.ResponseData{}, err
	}
	history, err := e.store.RecentMessages(session.ID, historyDepth)
	if err != nil {
		return cards.ResponseData{}, err
	}
	if err := e.store.AppendMessage(session.ID, "user", question); err != nil {
		return cards.ResponseData{}, err
	}

	// Greetings and thanks never need the model.
	if isSmallTalk(question) {
		response := cards.Text(greetingBody)
		e.record(ctx, session.ID, question, "", response)
		return response, nil
	}

	a, err := e.analyze(ctx, question, history)
	if err != nil {
		response := cards.Error(friendlyProviderError(err))
		e.record(ctx, session.ID, question, "", response)
		return response, nil
	}

	var response cards.ResponseData
	sql := ""
	if a.NeedsData {
		if a.SQLQuery != nil {
			sql = *a.SQLQuery
		}
		response = e.answerWithData(ctx, question, sql, history)
	} else {
		response = e.conversational(ctx, question, history)
	}

	log.Info().Int("cards", len(response.Cards)).Str("query_type", a.QueryType).Msg("question answered")
	e.record(ctx, session.ID, question, sql, response)
	return response, nil
}

func (e *Engine) analyze(ctx context.Context, question string, history []domain.ConversationMessage) (analysis, error) {
	raw, err := e.client.Complete(ctx, llm.Request{
		System: analyzerPrompt,
		Prompt: conversationContext(history) + question,
	})
	if err != nil {
		return analysis{}, err
	}

	cleaned := stripFences(raw)
	var a analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start || json.Unmarshal([]byte(cleaned[start:end+1]), &a) != nil {
			// undecodable analysis downgrades to plain conversation
			return analysis{QueryType: "general"}, nil
		}
	}
	return a, nil
}

func (e *Engine) answerWithData(ctx context.Context, question, sql string, history []domain.ConversationMessage) cards.ResponseData {
	log := logger.FromContext(ctx)

	if err := ValidateSQL(sql); err != nil {
		log.Warn().Str("sql", sql).Msg("rejected generated SQL")
		return cards.Error("I generated a query I'm not allowed to run against your data. Try rephrasing the question.")
	}

	result, err := e.store.RunReadOnlyQuery(sql)
	if err != nil {
		log.Error().Err(err).Str("sql", sql).Msg("query execution failed")
		return cards.Error(fmt.Sprintf("I couldn't retrieve that data: %v", err))
	}
	if result.RowCount == 0 {
		// nothing to format, skip the second model call
		return cards.Text(noDataBody)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return cards.Error("I couldn't process the query results.")
	}

	raw, err := e.client.Complete(ctx, llm.Request{
		System: formatterPrompt,
		Prompt: fmt.Sprintf("%sUser question: %s\n\nQuery results:\n%s", conversationContext(history), question, data),
	})
	if err != nil {
		return cards.Error(friendlyProviderError(err))
	}

	response, err := cards.Parse(raw)
	if err != nil {
		log.Warn().Err(err).Msg("model response failed card validation")
		return cards.Error("I got a response I couldn't render. Please try asking again.")
	}
	return response
}

func (e *Engine) conversational(ctx context.Context, question string, history []domain.ConversationMessage) cards.ResponseData {
	raw, err := e.client.Complete(ctx, llm.Request{
		System: conversationalPrompt,
		Prompt: conversationContext(history) + question,
	})
	if err != nil {
		return cards.Error(friendlyProviderError(err))
	}
	response, err := cards.Parse(raw)
	if err != nil {
		return cards.Error("I got a response I couldn't render. Please try asking again.")
	}
	return response
}

// record appends the exchange to chat history and the conversation log.
// Best-effort: a failed write must not eat an already-built answer.
func (e *Engine) record(ctx context.Context, sessionID, question, sql string, response cards.ResponseData) {
	log := logger.FromContext(ctx)

	encoded, err := json.Marshal(response)
	if err == nil {
		entry := &domain.ChatHistoryEntry{
			Question:  question,
			SQLQuery:  sql,
			Response:  datatypes.JSON(encoded),
			CardCount: len(response.Cards),
		}
		if err := e.store.AppendChatHistory(entry); err != nil {
			log.Warn().Err(err).Msg("failed to append chat history")
		}
	}

	if err := e.store.AppendMessage(sessionID, "assistant", summarize(response)); err != nil {
		log.Warn().Err(err).Msg("failed to append assistant message")
	}
}

// summarize flattens the first card into a line of conversation context.
func summarize(response cards.ResponseData) string {
	if len(response.Cards) == 0 {
		return ""
	}
	card := response.Cards[0]
	switch card.Type {
	case cards.TypeText:
		return card.Text.Body
	case cards.TypeChart:
		return fmt.Sprintf("[Chart: %s]", card.Chart.Title)
	case cards.TypeTable:
		return fmt.Sprintf("[Table: %s]", card.Table.Title)
	case cards.TypeMixed:
		return card.Mixed.Body
	}
	return ""
}

func conversationContext(history []domain.ConversationMessage) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\n")
	return b.String()
}

var smallTalk = map[string]bool{
	"hi":              true,
	"hello":           true,
	"hey":             true,
	"yo":              true,
	"thanks":          true,
	"thank you":       true,
	"good morning":    true,
	"good afternoon":  true,
	"good evening":    true,
	"help":            true,
	"what can you do": true,
}

func isSmallTalk(question string) bool {
	normalized := strings.ToLower(strings.TrimSpace(question))
	normalized = strings.TrimRight(normalized, "!?. ")
	return smallTalk[normalized]
}

func friendlyProviderError(err error) string {
	return fmt.Sprintf("I couldn't reach the language model: %v", err)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
