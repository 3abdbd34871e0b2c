package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/log"
)

type GeminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(apiKey, modelName string) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// Complete replays the prior turns into a fresh chat session and sends the
// new user text.
func (s *GeminiService) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.7)
	if req.SystemPreamble != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPreamble)},
		}
	}

	cs := model.StartChat()
	cs.History = geminiHistory(req.PriorTurns)

	resp, err := cs.SendMessage(ctx, genai.Text(req.NewUserText))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warnf("Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	return extractText(resp), nil
}

// geminiHistory maps turns onto Gemini roles. Chat history has to open with
// a user turn, so the seeded greeting and any other leading model turns are
// dropped.
func geminiHistory(turns []conversation.Turn) []*genai.Content {
	start := 0
	for start < len(turns) && turns[start].Role != conversation.RoleUser {
		start++
	}

	history := make([]*genai.Content, 0, len(turns)-start)
	for _, t := range turns[start:] {
		role := "user"
		if t.Role == conversation.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
