package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zenberry/zenchat/internal/domain"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens bounds a single completion.
	DefaultMaxTokens = 600
	// DefaultTemperature keeps answers close to the supplied context.
	DefaultTemperature float32 = 0.4

	// maxToolRounds bounds capability invocation per request.
	maxToolRounds = 1
)

var (
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the API responds with no choices
	ErrEmptyCompletion = errors.New("no completion choices returned")
)

// ChatAPI defines the slice of the OpenAI API the client uses.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// ToolDefinition describes one callable capability exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolInvoker executes a named capability with raw JSON arguments.
type ToolInvoker interface {
	Definitions() []ToolDefinition
	Invoke(ctx context.Context, name string, arguments json.RawMessage) (string, error)
}

// TokenStream is a lazy, finite, non-restartable sequence of text fragments.
// Recv returns io.EOF after the final fragment.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Config holds client configuration.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Client wraps the OpenAI chat API as the chat completion engine.
type Client struct {
	api         ChatAPI
	model       string
	maxTokens   int
	temperature float32
	tools       ToolInvoker
}

// NewClient creates a new Client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new Client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	return NewClientWithAPI(openai.NewClient(cfg.APIKey), cfg)
}

// NewClientWithAPI creates a Client over a pre-built chat API. Used by tests
// and alternative transports.
func NewClientWithAPI(api ChatAPI, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	return &Client{
		api:         api,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// NewClientFromEnv creates a new Client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// WithTools enables capability function-calling for batch completions.
func (c *Client) WithTools(tools ToolInvoker) *Client {
	c.tools = tools
	return c
}

// Complete runs one synchronous chat completion over the message sequence.
// When a tool invoker is configured, a single round of capability calls is
// honored before the final completion.
func (c *Client) Complete(ctx context.Context, messages []domain.ConversationTurn) (string, error) {
	req := c.newRequest(messages, false)
	if c.tools != nil {
		req.Tools = c.toolSpecs()
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	for round := 0; round < maxToolRounds && len(choice.Message.ToolCalls) > 0; round++ {
		req.Messages = append(req.Messages, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			result := c.invokeTool(ctx, call)
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}

		// Final round answers from tool output; no further calls allowed.
		req.Tools = nil
		resp, err = c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("chat completion failed after tool round: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		choice = resp.Choices[0]
	}

	return choice.Message.Content, nil
}

// CompleteStream opens a streaming chat completion over the message sequence.
// Tool calls are not honored in streaming mode.
func (c *Client) CompleteStream(ctx context.Context, messages []domain.ConversationTurn) (TokenStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, c.newRequest(messages, true))
	if err != nil {
		return nil, fmt.Errorf("chat completion stream failed: %w", err)
	}
	return &chatStream{inner: stream}, nil
}

func (c *Client) newRequest(messages []domain.ConversationTurn, stream bool) openai.ChatCompletionRequest {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    converted,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      stream,
	}
}

func (c *Client) toolSpecs() []openai.Tool {
	defs := c.tools.Definitions()
	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return tools
}

// invokeTool never fails the completion: a broken capability degrades to an
// explanatory tool result the model can work around.
func (c *Client) invokeTool(ctx context.Context, call openai.ToolCall) string {
	result, err := c.tools.Invoke(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
	if err != nil {
		log.Printf("openai: tool %q failed: %v", call.Function.Name, err)
		return fmt.Sprintf("capability %q is unavailable right now", call.Function.Name)
	}
	return result
}

type chatStream struct {
	inner *openai.ChatCompletionStream
}

// Recv returns the next text fragment. Empty deltas are filtered out so
// callers only see content-bearing chunks; io.EOF marks the end.
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.inner.Close()
}
