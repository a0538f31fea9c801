// Package assistant sends conversation history to an OpenAI chat completion
// endpoint.
package assistant

import (
	"context"

	"council/internal/models"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// SystemPrompt is prepended to every request
const SystemPrompt = "You are a helpful AI assistant. Provide clear, concise, and helpful responses."

// ErrNoChoices is returned when the API answers without any completion
var ErrNoChoices = errors.New("no response from API")

// Completer produces the assistant's next message for a history
type Completer interface {
	Complete(ctx context.Context, history []models.Message) (string, error)
}

// Client is a Completer backed by go-openai
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// New creates a client for the given API key and model
func New(apiKey, model string) *Client {
	return &Client{
		api:       openai.NewClient(apiKey),
		model:     model,
		maxTokens: 1000,
	}
}

// NewWithConfig creates a client from a prepared go-openai configuration,
// e.g. one pointing at a different base URL.
func NewWithConfig(cfg openai.ClientConfig, model string) *Client {
	return &Client{
		api:       openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: 1000,
	}
}

// Complete implements Completer
func (c *Client) Complete(ctx context.Context, history []models.Message) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, BuildRequest(c.model, c.maxTokens, history))
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildRequest maps a conversation history onto a chat completion request
func BuildRequest(model string, maxTokens int, history []models.Message) openai.ChatCompletionRequest {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: SystemPrompt,
		},
	}

	for _, msg := range history {
		var role string
		if msg.Role == "user" {
			role = openai.ChatMessageRoleUser
		} else {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
}
