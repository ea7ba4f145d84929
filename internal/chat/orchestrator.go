// Package chat coordinates one chat request end to end: policy checks, prompt
// assembly, the completion engine call, and the response quality gate.
package chat

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/zenberry/zenchat/internal/domain"
	"github.com/zenberry/zenchat/internal/openai"
	"github.com/zenberry/zenchat/internal/policy"
	"github.com/zenberry/zenchat/internal/telemetry"
)

// CompletionEngine is the external model dependency, batch and streaming.
type CompletionEngine interface {
	Complete(ctx context.Context, messages []domain.ConversationTurn) (string, error)
	CompleteStream(ctx context.Context, messages []domain.ConversationTurn) (openai.TokenStream, error)
}

// PromptBuilder assembles the grounding system prompt.
type PromptBuilder interface {
	BuildSystemPrompt(ctx context.Context, category string) string
}

// Orchestrator is the per-request coordinator. It holds no request state;
// history is supplied by the caller on every call.
type Orchestrator struct {
	policy  *policy.Policy
	prompts PromptBuilder
	engine  CompletionEngine
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(p *policy.Policy, prompts PromptBuilder, engine CompletionEngine) *Orchestrator {
	return &Orchestrator{policy: p, prompts: prompts, engine: engine}
}

// Ask answers one question synchronously. Validation failures surface as
// VALIDATION_ERROR; every other failure degrades to the generic ErrChatFailed
// with detail logged server-side only.
func (o *Orchestrator) Ask(ctx context.Context, question string, history []domain.ConversationTurn, category string) (string, error) {
	messages, err := o.prepare(ctx, question, history, category)
	if err != nil {
		return "", err
	}

	answer, err := o.engine.Complete(ctx, messages)
	if err != nil {
		log.Printf("chat: completion failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return "", domain.ErrChatFailed
	}

	if reason, ok := assessAnswer(answer); !ok {
		log.Printf("chat: low-quality response rejected (%s), serving fallback", reason)
		return FallbackAnswer, nil
	}

	return answer, nil
}

// Stream answers one question as a lazy, finite sequence of text chunks.
// Validation failures are returned before any chunk is produced; failures
// after that point surface as a single in-band apology chunk, never as an
// error past the channel boundary. No quality gate applies: gating would
// require buffering the whole response.
func (o *Orchestrator) Stream(ctx context.Context, question string, history []domain.ConversationTurn, category string) (<-chan string, error) {
	messages, err := o.prepare(ctx, question, history, category)
	if err != nil {
		return nil, err
	}

	chunks := make(chan string)

	stream, err := o.engine.CompleteStream(ctx, messages)
	if err != nil {
		log.Printf("chat: failed to open completion stream: %v", err)
		telemetry.CaptureError(ctx, err)
		go func() {
			defer close(chunks)
			select {
			case chunks <- StreamErrorChunk:
			case <-ctx.Done():
			}
		}()
		return chunks, nil
	}

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("chat: stream failed mid-response: %v", err)
				telemetry.CaptureError(ctx, err)
				select {
				case chunks <- StreamErrorChunk:
				case <-ctx.Done():
				}
				return
			}
			if chunk == "" {
				continue
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

// prepare runs sanitation, validation and prompt assembly, and builds the
// message sequence: system prompt, last six history turns, current question.
func (o *Orchestrator) prepare(ctx context.Context, question string, history []domain.ConversationTurn, category string) ([]domain.ConversationTurn, error) {
	sanitized := o.policy.Sanitize(question)
	if err := o.policy.Validate(sanitized); err != nil {
		return nil, err
	}
	if !o.policy.ValidateHistory(history) {
		return nil, domain.ErrInvalidHistory
	}

	window := domain.TrimHistory(history)

	messages := make([]domain.ConversationTurn, 0, len(window)+2)
	messages = append(messages, domain.NewConversationTurn(domain.RoleSystem, o.prompts.BuildSystemPrompt(ctx, category)))
	messages = append(messages, window...)
	messages = append(messages, domain.NewConversationTurn(domain.RoleUser, sanitized))

	return messages, nil
}
