// Package autoreply drafts business replies with an OpenAI chat model.
package autoreply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"MarketChat/entity"
	"MarketChat/internal/config"
	"MarketChat/internal/lib/sl"

	"github.com/sashabaranov/go-openai"
)

type Responder struct {
	client *openai.Client
	model  string
	prompt string
	limit  int
	log    *slog.Logger
}

// NewResponder returns nil when auto replies are disabled or no key is set.
func NewResponder(conf *config.Config, log *slog.Logger) *Responder {
	if !conf.OpenAI.Enabled || conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Responder{
		client: openai.NewClient(conf.OpenAI.ApiKey),
		model:  conf.OpenAI.Model,
		prompt: conf.OpenAI.Prompt,
		limit:  conf.Chat.HistoryLimit,
		log:    log.With(sl.Module("autoreply")),
	}
}

// Reply drafts the next business message for the conversation history.
func (r *Responder) Reply(ctx context.Context, history []entity.Message) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: buildPrompt(r.prompt, history, r.limit),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	r.log.Debug("reply drafted",
		slog.Int("history", len(history)),
		slog.Int("tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}

// buildPrompt maps the last limit messages onto chat roles: the customer is
// the user, the business is the assistant.
func buildPrompt(prompt string, history []entity.Message, limit int) []openai.ChatCompletionMessage {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})
	for _, m := range history {
		content := m.Content
		if m.Image != nil {
			content = strings.TrimSpace(content + " [image attached]")
		}
		if content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch m.SenderType {
		case entity.SenderBusiness:
			role = openai.ChatMessageRoleAssistant
		case entity.SenderUser:
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	return messages
}
