package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"portfolio-backend/internal/conversation"
)

// chatCompletionClient is the slice of the OpenAI client used here.
type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIService struct {
	client chatCompletionClient
	model  string
}

func NewOpenAIService(apiKey, model string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAIService) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    openAIMessages(req),
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIMessages(req conversation.CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.PriorTurns)+2)
	if req.SystemPreamble != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPreamble,
		})
	}
	for _, t := range req.PriorTurns {
		role := openai.ChatMessageRoleUser
		if t.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.NewUserText,
	})
}
