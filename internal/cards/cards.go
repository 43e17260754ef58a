// Package cards implements the response card protocol shared by the query
// engine and the chat surface. The UI pattern-matches on the "type" field, so
// the wire shape here is a contract, not a convenience.
package cards

import (
	"encoding/json"
	"fmt"
)

// Card types.
const (
	TypeText  = "text"
	TypeChart = "chart"
	TypeTable = "table"
	TypeMixed = "mixed"
)

// Chart types accepted by the protocol. Anything else is invalid.
var chartTypes = map[string]bool{
	"pie":  true,
	"bar":  true,
	"line": true,
	"area": true,
}

// ResponseData is the full answer to one question: 1..N cards.
type ResponseData struct {
	Cards []Card `json:"cards"`
}

// Card is a tagged union over the four content shapes. Exactly one content
// pointer is set, matching Type.
type Card struct {
	Type  string
	Text  *TextContent
	Chart *ChartContent
	Table *TableContent
	Mixed *MixedContent
}

type TextContent struct {
	Body    string `json:"body"`
	IsError *bool  `json:"is_error,omitempty"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartContent struct {
	ChartType string       `json:"chart_type"`
	Title     string       `json:"title"`
	Data      []ChartPoint `json:"data"`
	Caption   *string      `json:"caption,omitempty"`
}

type TableContent struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *string    `json:"summary,omitempty"`
}

type MixedContent struct {
	Body  string       `json:"body"`
	Chart ChartContent `json:"chart"`
}

type envelope struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON emits the {type, content} envelope the UI consumes.
func (c Card) MarshalJSON() ([]byte, error) {
	var content interface{}
	switch c.Type {
	case TypeText:
		content = c.Text
	case TypeChart:
		content = c.Chart
	case TypeTable:
		content = c.Table
	case TypeMixed:
		content = c.Mixed
	default:
		return nil, fmt.Errorf("cards: unknown card type %q", c.Type)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: c.Type, Content: raw})
}

// UnmarshalJSON decodes the envelope and the content shape matching its type.
func (c *Card) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	*c = Card{Type: env.Type}
	switch env.Type {
	case TypeText:
		c.Text = &TextContent{}
		return json.Unmarshal(env.Content, c.Text)
	case TypeChart:
		c.Chart = &ChartContent{}
		return json.Unmarshal(env.Content, c.Chart)
	case TypeTable:
		c.Table = &TableContent{}
		return json.Unmarshal(env.Content, c.Table)
	case TypeMixed:
		c.Mixed = &MixedContent{}
		return json.Unmarshal(env.Content, c.Mixed)
	default:
		return fmt.Errorf("cards: unknown card type %q", env.Type)
	}
}

// Validate checks a full response against the protocol. Model output is
// untrusted; anything that fails here must be downgraded by the caller, never
// rendered.
func (d ResponseData) Validate() error {
	if len(d.Cards) == 0 {
		return fmt.Errorf("cards: response has no cards")
	}
	for i, card := range d.Cards {
		if err := card.validate(); err != nil {
			return fmt.Errorf("cards: card %d: %w", i, err)
		}
	}
	return nil
}

func (c Card) validate() error {
	switch c.Type {
	case TypeText:
		if c.Text == nil || c.Text.Body == "" {
			return fmt.Errorf("text card has empty body")
		}
	case TypeChart:
		if c.Chart == nil {
			return fmt.Errorf("chart card has no content")
		}
		return c.Chart.validate()
	case TypeTable:
		if c.Table == nil {
			return fmt.Errorf("table card has no content")
		}
		if len(c.Table.Columns) == 0 {
			return fmt.Errorf("table card has no columns")
		}
		for i, row := range c.Table.Rows {
			if len(row) != len(c.Table.Columns) {
				return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), len(c.Table.Columns))
			}
		}
	case TypeMixed:
		if c.Mixed == nil || c.Mixed.Body == "" {
			return fmt.Errorf("mixed card has empty body")
		}
		return c.Mixed.Chart.validate()
	default:
		return fmt.Errorf("unknown card type %q", c.Type)
	}
	return nil
}

func (c ChartContent) validate() error {
	if !chartTypes[c.ChartType] {
		return fmt.Errorf("invalid chart_type %q", c.ChartType)
	}
	if c.Title == "" {
		return fmt.Errorf("chart has empty title")
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("chart has no data points")
	}
	return nil
}

// Text builds a single-card text response.
func Text(body string) ResponseData {
	return ResponseData{Cards: []Card{{Type: TypeText, Text: &TextContent{Body: body}}}}
}

// Error builds the single error text card every failure path converges to.
func Error(message string) ResponseData {
	isErr := true
	return ResponseData{Cards: []Card{{
		Type: TypeText,
		Text: &TextContent{Body: message, IsError: &isErr},
	}}}
}
