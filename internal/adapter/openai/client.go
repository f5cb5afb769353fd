// Package openai implements the language-understanding provider port using
// the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"

	"github.com/bonsai-todo/bonsai/internal/port/nlu"
	"github.com/bonsai-todo/bonsai/internal/resilience"
)

// Client implements nlu.Provider against an OpenAI-compatible endpoint.
// All calls go through a circuit breaker so a failing provider stops
// consuming the request timeout budget quickly.
type Client struct {
	api     openai.Client
	model   string
	breaker *resilience.Breaker
}

// NewClient creates a provider client. baseURL is optional; when empty the
// default OpenAI endpoint is used.
func NewClient(apiKey, baseURL, model string, breaker *resilience.Breaker) *Client {
	// The interpreter enforces its own deadline and a single attempt per
	// user message; SDK-level retries would silently stack on top of it.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if key := strings.TrimSpace(apiKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if base := strings.TrimSpace(baseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   model,
		breaker: breaker,
	}
}

// Interpret sends the prompt and parses the provider's JSON reply. The
// caller bounds the call with a context deadline; a tripped breaker or any
// transport failure surfaces as an error for the interpreter to degrade on.
func (c *Client) Interpret(ctx context.Context, p nlu.Prompt) (*nlu.Raw, error) {
	var content string
	err := c.breaker.Execute(func() error {
		resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(p.System),
				openai.UserMessage(p.User),
			},
			Temperature: openai.Float(0),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion: empty response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parseRaw(content)
}

// BreakerState reports the provider circuit state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// parseRaw extracts the structured interpretation from the model output.
// The output is untrusted: fences are stripped and fields read tolerantly,
// so a partially well-formed reply still yields usable data.
func parseRaw(content string) (*nlu.Raw, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if !gjson.Valid(s) {
		return nil, fmt.Errorf("provider returned non-JSON output")
	}

	doc := gjson.Parse(s)
	raw := &nlu.Raw{
		Action:                doc.Get("action").String(),
		Confidence:            doc.Get("confidence").Float(),
		TaskID:                doc.Get("task_id").String(),
		TaskReference:         doc.Get("task_reference").String(),
		Title:                 doc.Get("title").String(),
		DueDate:               doc.Get("due_date").String(),
		StatusFilter:          doc.Get("status_filter").String(),
		NeedsClarification:    doc.Get("needs_clarification").Bool(),
		ClarificationQuestion: doc.Get("clarification_question").String(),
	}
	return raw, nil
}
