// Package chat implements the shopping assistant: one generation round
// trip per message, grounded on the catalog and the caller's order
// history. Unlike taste inference, assistant failures are user-visible.
package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/soleshop/soleshop/plugin/ai"
)

// contextAck primes the model so the grounding document is treated as
// received data rather than a question to answer.
const contextAck = "Understood. I have the catalog and the customer's order history. Ready to help!"

// maxConcurrentChats caps in-flight generations across all users.
const maxConcurrentChats = 8

// Service answers customer messages.
type Service struct {
	generator ai.Generator
	builder   *ContextBuilder
	sem       *semaphore.Weighted
}

func NewService(generator ai.Generator, builder *ContextBuilder) *Service {
	return &Service{
		generator: generator,
		builder:   builder,
		sem:       semaphore.NewWeighted(maxConcurrentChats),
	}
}

// Reply builds the grounding context and performs one chat completion.
// Errors propagate to the caller; the handler surfaces them to the user.
func (s *Service) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("empty message")
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "failed to acquire chat slot")
	}
	defer s.sem.Release(1)

	grounding, err := s.builder.BuildContext(ctx, userID)
	if err != nil {
		return "", errors.Wrap(err, "failed to build chat context")
	}

	reply, err := s.generator.Chat(ctx, []ai.Message{
		ai.UserMessage(grounding),
		ai.AssistantMessage(contextAck),
		ai.UserMessage(message),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat generation failed")
	}
	if strings.TrimSpace(reply) == "" {
		reply = "Sorry, I didn't quite get that."
	}
	return reply, nil
}
