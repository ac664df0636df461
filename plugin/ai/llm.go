package ai

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Helper for creating system prompts.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Helper for creating assistant messages.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// Generator is the text-generation service interface.
type Generator interface {
	// Generate performs a single prompt round trip.
	Generate(ctx context.Context, prompt string) (string, error)

	// Chat performs a chat completion over a full message history.
	Chat(ctx context.Context, messages []Message) (string, error)
}

type generator struct {
	client *openai.Client
	config *Config
}

// NewGenerator creates a Generator backed by an OpenAI-compatible endpoint.
func NewGenerator(cfg *Config) (Generator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &generator{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.Chat(ctx, []Message{UserMessage(prompt)})
}

func (g *generator) Chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var result string
	err := doWithRetry(ctx, g.config.MaxRetries, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()

		resp, err := g.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model:    g.config.ChatModel,
			Messages: llmMessages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to complete chat")
	}
	return result, nil
}

// doWithRetry executes fn with exponential backoff.
func doWithRetry(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < maxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("generation request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
